package sdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/itemfilter/internal/db"
	"github.com/kailas-cloud/itemfilter/internal/db/memory"
	dbValkey "github.com/kailas-cloud/itemfilter/internal/db/valkey"
	domcol "github.com/kailas-cloud/itemfilter/internal/domain/collection"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/view"
	collectionrepo "github.com/kailas-cloud/itemfilter/internal/repository/collection"
	sessionrepo "github.com/kailas-cloud/itemfilter/internal/repository/session"
	collectionuc "github.com/kailas-cloud/itemfilter/internal/usecase/collection"
	healthuc "github.com/kailas-cloud/itemfilter/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/itemfilter/internal/usecase/session"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "itemfilter:"
)

// Internal interfaces, swapped for mocks in tests.
type collectionUseCase interface {
	Put(ctx context.Context, name string, items []item.Item) (domcol.Collection, bool, error)
	Get(ctx context.Context, name string) (domcol.Collection, error)
	List(ctx context.Context) ([]domcol.Collection, error)
	Delete(ctx context.Context, name string) error
}

type sessionUseCase interface {
	Create(ctx context.Context, collection, view string) (sessionuc.Snapshot, error)
	Get(ctx context.Context, id string) (sessionuc.Snapshot, error)
	Click(ctx context.Context, id, group, value string) (sessionuc.Snapshot, bool, error)
	Sort(ctx context.Context, id string, req sessionuc.SortRequest) (sessionuc.Snapshot, error)
	Delete(ctx context.Context, id string) error
	Close()
}

// Client is the SDK entry point.
type Client struct {
	store     db.Store
	collSvc   collectionUseCase
	sessSvc   sessionUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("sdk: store required (use WithValkey, WithRedis or WithMemory)")
	}

	views, err := buildViews(cfg.views)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("sdk: store not ready: %w", err)
	}

	return wireClient(store, cfg, views, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, fmt.Errorf("sdk: %s address required", cfg.driver)
		}
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("sdk: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case "memory":
		s, err := memory.NewStore()
		if err != nil {
			return nil, fmt.Errorf("sdk: create memory store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("sdk: unknown driver %q", cfg.driver)
	}
}

func buildViews(defs map[string]ViewDefinition) (map[string]*view.View, error) {
	views := make(map[string]*view.View, len(defs))
	for name, def := range defs {
		v, err := view.New(name, def)
		if err != nil {
			return nil, fmt.Errorf("sdk: %w", err)
		}
		views[name] = v
	}
	return views, nil
}

func wireClient(store db.Store, cfg *clientConfig, views map[string]*view.View, obs *observer) *Client {
	collSvc := collectionuc.New(collectionrepo.New(store, cfg.keyPrefix))
	sessSvc := sessionuc.New(collSvc, sessionrepo.New(store, cfg.keyPrefix), views, sessionuc.Config{
		Settle:      cfg.settle,
		MaxSessions: cfg.maxSessions,
		IdleTTL:     cfg.sessionTTL,
	}, zap.NewNop())

	return &Client{
		store:     store,
		collSvc:   collSvc,
		sessSvc:   sessSvc,
		healthSvc: healthuc.New(store, sessSvc),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.sessSvc != nil {
		c.sessSvc.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Collections returns the collection service.
func (c *Client) Collections() *CollectionService {
	return &CollectionService{svc: c.collSvc, obs: c.obs}
}

// Sessions returns the session service.
func (c *Client) Sessions() *SessionService {
	return &SessionService{svc: c.sessSvc, obs: c.obs}
}
