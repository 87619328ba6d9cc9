// Package session runs one filter/sort engine per client session.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	domsession "github.com/kailas-cloud/itemfilter/internal/domain/session"
	"github.com/kailas-cloud/itemfilter/internal/domain/sorting"
	"github.com/kailas-cloud/itemfilter/internal/domain/view"
	"github.com/kailas-cloud/itemfilter/internal/engine"
	"github.com/kailas-cloud/itemfilter/internal/metrics"
)

// DefaultView is the view name used when a session names none.
const DefaultView = "default"

// DefaultIdleTTL is how long an untouched session lives.
const DefaultIdleTTL = 30 * time.Minute

// Config holds session limits.
type Config struct {
	Settle      time.Duration
	MaxSessions int // 0 = unlimited
	IdleTTL     time.Duration
}

// SortRequest selects a sort by attribute string or by configured option index.
// Option wins when set.
type SortRequest struct {
	By        string
	Ascending bool
	Option    *int
}

type entry struct {
	mu        sync.Mutex
	rec       domsession.Record
	view      *view.View
	eng       *engine.Engine
	lastSeen  atomic.Int64
	replaying atomic.Bool
}

func (e *entry) touch(now time.Time) { e.lastSeen.Store(now.UnixNano()) }

// Service owns live sessions. Each session's engine is guarded by its own mutex.
type Service struct {
	mu          sync.Mutex
	live        map[string]*entry
	flight      singleflight.Group
	collections CollectionReader
	repo        Repository
	views       map[string]*view.View
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
}

// New creates a session service.
func New(collections CollectionReader, repo Repository, views map[string]*view.View, cfg Config, logger *zap.Logger) *Service {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		live:        make(map[string]*entry),
		collections: collections,
		repo:        repo,
		views:       views,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Views returns the configured views sorted by name, plus the default view when
// none is configured under that name.
func (s *Service) Views() []*view.View {
	out := make([]*view.View, 0, len(s.views)+1)
	for _, v := range s.views {
		out = append(out, v)
	}
	if _, ok := s.views[DefaultView]; !ok {
		out = append(out, view.Default())
	}
	slices.SortFunc(out, func(a, b *view.View) int {
		switch {
		case a.Name() < b.Name():
			return -1
		case a.Name() > b.Name():
			return 1
		}
		return 0
	})
	return out
}

func (s *Service) lookupView(name string) (*view.View, error) {
	if name == "" {
		name = DefaultView
	}
	if v, ok := s.views[name]; ok {
		return v, nil
	}
	if name == DefaultView {
		return view.Default(), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrViewNotFound, name)
}

// Create starts a session over a collection using the named view ("" = default).
func (s *Service) Create(ctx context.Context, collection, viewName string) (Snapshot, error) {
	v, err := s.lookupView(viewName)
	if err != nil {
		return Snapshot{}, err
	}
	col, err := s.collections.Get(ctx, collection)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get collection: %w", err)
	}

	rec := domsession.Record{
		ID:         s.newID(),
		Collection: col.Name(),
		View:       v.Name(),
		Revision:   col.Revision(),
		CreatedAt:  s.now().UnixMilli(),
	}
	e, err := s.build(rec, v, col.Items())
	if err != nil {
		return Snapshot{}, err
	}

	if err := s.admit(e); err != nil {
		e.eng.Close()
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := s.persist(ctx, e); err != nil {
		s.drop(rec.ID)
		return Snapshot{}, err
	}

	s.logger.Info("Session created",
		zap.String("session", rec.ID),
		zap.String("collection", rec.Collection),
		zap.String("view", rec.View),
		zap.Int("items", col.Len()),
	)
	return e.snapshot(), nil
}

// Get returns the current state of a session and extends its lifetime.
func (s *Service) Get(ctx context.Context, id string) (Snapshot, error) {
	e, err := s.entry(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.repo.Touch(ctx, id, s.cfg.IdleTTL); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return Snapshot{}, fmt.Errorf("touch session: %w", err)
		}
		// Record expired while the engine stayed live: write it back.
		if err := s.persist(ctx, e); err != nil {
			return Snapshot{}, err
		}
	}
	return e.snapshot(), nil
}

// Click presses a filter button. The boolean reports whether the selection changed.
// Clicks on a view without filtering are ignored.
func (s *Service) Click(ctx context.Context, id, group, value string) (Snapshot, bool, error) {
	e, err := s.entry(ctx, id)
	if err != nil {
		return Snapshot{}, false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	viewName := e.view.Name()
	if !e.view.Filtering() {
		metrics.ClicksTotal.WithLabelValues(viewName, "noop").Inc()
		return e.snapshot(), false, nil
	}
	if err := e.view.ValidateClick(group, value); err != nil {
		metrics.ClicksTotal.WithLabelValues(viewName, "rejected").Inc()
		return Snapshot{}, false, fmt.Errorf("click: %w", err)
	}

	start := time.Now()
	changed := e.eng.Click(group, value)
	metrics.TransitionDuration.WithLabelValues(string(engine.KindFilter)).Observe(time.Since(start).Seconds())

	if !changed {
		metrics.ClicksTotal.WithLabelValues(viewName, "noop").Inc()
		return e.snapshot(), false, nil
	}
	metrics.ClicksTotal.WithLabelValues(viewName, "changed").Inc()
	if total := len(e.eng.Order()); total > 0 {
		metrics.ShownRatio.WithLabelValues(viewName).Observe(float64(len(e.eng.Visible())) / float64(total))
	}

	if err := s.persist(ctx, e); err != nil {
		return Snapshot{}, false, err
	}
	return e.snapshot(), true, nil
}

// Sort reorders a session. Sort requests on a view without sorting are ignored.
func (s *Service) Sort(ctx context.Context, id string, req SortRequest) (Snapshot, error) {
	e, err := s.entry(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.view.Sorting() {
		return e.snapshot(), nil
	}

	var spec sorting.Spec
	if req.Option != nil {
		spec, err = e.view.SortOption(*req.Option)
	} else {
		spec, err = sorting.Parse(req.By, req.Ascending)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("sort: %w", err)
	}

	start := time.Now()
	if err := e.eng.Sort(spec); err != nil {
		return Snapshot{}, fmt.Errorf("sort: %w", err)
	}
	metrics.TransitionDuration.WithLabelValues(string(engine.KindSort)).Observe(time.Since(start).Seconds())
	metrics.SortsTotal.WithLabelValues(e.view.Name(), string(spec.KeyType())).Inc()

	if err := s.persist(ctx, e); err != nil {
		return Snapshot{}, err
	}
	return e.snapshot(), nil
}

// Delete ends a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	dropped := s.drop(id)
	if !dropped {
		if _, err := s.repo.Load(ctx, id); err != nil {
			return fmt.Errorf("load session: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("Session deleted", zap.String("session", id))
	return nil
}

// CheckCapacity reports domain.ErrTooManySessions when no session can be admitted.
func (s *Service) CheckCapacity() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdleLocked()
	if s.cfg.MaxSessions > 0 && len(s.live) >= s.cfg.MaxSessions {
		return domain.ErrTooManySessions
	}
	return nil
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close cancels pending settles of every live session.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.live {
		e.eng.Close()
		delete(s.live, id)
	}
	metrics.SessionsActive.Set(0)
}

// EngineConfig translates a view into engine settings. Settle, OnSettle and
// Logger are left for the caller.
func EngineConfig(v *view.View) engine.Config {
	cfg := engine.Config{
		Filtering:   v.Filtering(),
		Grouping:    v.Grouping(),
		Mode:        v.Mode(),
		Groups:      v.GroupIDs(),
		Predicates:  v.Predicates(),
		Sorting:     v.Sorting(),
		Counting:    v.Counting(),
		CountFormat: v.CountFormat(),
	}
	if tag, ok := v.Collation(); ok {
		cfg.Compare = engine.Collation(tag)
	}
	return cfg
}

func (s *Service) build(rec domsession.Record, v *view.View, items []item.Item) (*entry, error) {
	e := &entry{rec: rec, view: v}
	e.touch(s.now())

	cfg := EngineConfig(v)
	cfg.Settle = s.cfg.Settle
	cfg.OnSettle = func(ev engine.Event) {
		if !e.replaying.Load() {
			metrics.SettlesTotal.WithLabelValues(string(ev.Kind)).Inc()
		}
	}
	cfg.Logger = s.logger.With(zap.String("session", rec.ID))

	eng, err := engine.New(items, cfg)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	e.eng = eng
	return e, nil
}

// admit registers e unless the session limit is reached.
func (s *Service) admit(e *entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdleLocked()
	if s.cfg.MaxSessions > 0 && len(s.live) >= s.cfg.MaxSessions {
		return domain.ErrTooManySessions
	}
	s.live[e.rec.ID] = e
	metrics.SessionsActive.Set(float64(len(s.live)))
	return nil
}

func (s *Service) drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live[id]
	if !ok {
		return false
	}
	e.eng.Close()
	delete(s.live, id)
	metrics.SessionsActive.Set(float64(len(s.live)))
	return true
}

func (s *Service) evictIdleLocked() {
	cutoff := s.now().Add(-s.cfg.IdleTTL).UnixNano()
	for id, e := range s.live {
		if e.lastSeen.Load() < cutoff {
			e.eng.Close()
			delete(s.live, id)
			metrics.SessionsEvictedTotal.Inc()
			s.logger.Debug("Session evicted", zap.String("session", id))
		}
	}
	metrics.SessionsActive.Set(float64(len(s.live)))
}

// entry returns the live session, rebuilding it from its stored record if needed.
// Concurrent misses for the same id share one rebuild.
func (s *Service) entry(ctx context.Context, id string) (*entry, error) {
	if e, ok := s.lookupLive(id); ok {
		return e, nil
	}

	v, err, _ := s.flight.Do(id, func() (any, error) {
		if e, ok := s.lookupLive(id); ok {
			return e, nil
		}
		rec, err := s.repo.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		e, err := s.restore(ctx, rec)
		if err != nil {
			return nil, err
		}
		return s.admitRestored(e)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

func (s *Service) lookupLive(id string) (*entry, bool) {
	s.mu.Lock()
	s.evictIdleLocked()
	e, ok := s.live[id]
	s.mu.Unlock()
	if ok {
		e.touch(s.now())
	}
	return e, ok
}

// admitRestored registers a rebuilt entry unless one is live already; the check
// and the insert happen under one lock.
func (s *Service) admitRestored(e *entry) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdleLocked()
	if existing, ok := s.live[e.rec.ID]; ok {
		e.eng.Close()
		existing.touch(s.now())
		return existing, nil
	}
	if s.cfg.MaxSessions > 0 && len(s.live) >= s.cfg.MaxSessions {
		e.eng.Close()
		return nil, domain.ErrTooManySessions
	}
	s.live[e.rec.ID] = e
	metrics.SessionsActive.Set(float64(len(s.live)))
	return e, nil
}

// restore replays a stored record: active values per group, then the stored order.
func (s *Service) restore(ctx context.Context, rec domsession.Record) (*entry, error) {
	v, err := s.lookupView(rec.View)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	col, err := s.collections.Get(ctx, rec.Collection)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	e, err := s.build(rec, v, col.Items())
	if err != nil {
		return nil, err
	}

	e.replaying.Store(true)
	defer e.replaying.Store(false)

	for _, g := range rec.Groups {
		for _, value := range rec.Active[g] {
			e.eng.Click(g, value)
		}
	}
	if rec.Sorted() {
		spec, err := sorting.Parse(rec.SortBy, rec.Ascending)
		if err == nil {
			err = e.eng.Restore(rec.Order, spec)
		}
		if err != nil {
			s.logger.Warn("Session order not restored",
				zap.String("session", rec.ID),
				zap.Int("stored_revision", rec.Revision),
				zap.Int("collection_revision", col.Revision()),
				zap.Error(err),
			)
		}
	}
	e.eng.Close()

	s.logger.Debug("Session restored", zap.String("session", rec.ID))
	return e, nil
}

// persist writes the session state. Callers hold e.mu.
func (s *Service) persist(ctx context.Context, e *entry) error {
	e.rec.Groups = e.eng.Groups()
	e.rec.Active = activeValues(e.eng)
	if spec, ok := e.eng.SortSpec(); ok {
		e.rec.Order = e.eng.Order()
		e.rec.SortBy = spec.Attr()
		e.rec.Ascending = spec.Ascending()
	}
	if err := s.repo.Save(ctx, e.rec, s.cfg.IdleTTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
