package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	domcol "github.com/kailas-cloud/itemfilter/internal/domain/collection"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	domsession "github.com/kailas-cloud/itemfilter/internal/domain/session"
	"github.com/kailas-cloud/itemfilter/internal/domain/view"
)

// --- Mocks ---

type mockCollections struct {
	cols map[string]domcol.Collection
}

func (m *mockCollections) Get(_ context.Context, name string) (domcol.Collection, error) {
	c, ok := m.cols[name]
	if !ok {
		return domcol.Collection{}, domain.ErrCollectionNotFound
	}
	return c, nil
}

type mockRepo struct {
	mu       sync.Mutex
	records  map[string]domsession.Record
	saves    int
	touches  int
	saveErr  error
	touchErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[string]domsession.Record)}
}

func (m *mockRepo) Save(_ context.Context, rec domsession.Record, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.records[rec.ID] = rec
	return nil
}

func (m *mockRepo) Load(_ context.Context, id string) (domsession.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return domsession.Record{}, domain.ErrSessionNotFound
	}
	return rec, nil
}

func (m *mockRepo) Touch(_ context.Context, id string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touches++
	if m.touchErr != nil {
		return m.touchErr
	}
	if _, ok := m.records[id]; !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.records, id)
	return nil
}

// --- Fixtures ---

func shopItems(t *testing.T) []item.Item {
	t.Helper()
	raw := []struct {
		id      string
		classes []string
		price   string
	}{
		{"a", []string{"red", "s"}, "30"},
		{"b", []string{"blue", "m"}, "10"},
		{"c", []string{"red", "m"}, "20"},
		{"d", []string{"blue", "s"}, "10"},
	}
	out := make([]item.Item, len(raw))
	for i, r := range raw {
		it, err := item.New(r.id, r.classes, map[string]string{"price": r.price})
		if err != nil {
			t.Fatalf("item.New: %v", err)
		}
		out[i] = it
	}
	return out
}

func shopView(t *testing.T) *view.View {
	t.Helper()
	v, err := view.New("shop", view.Definition{
		Filter: &view.FilterDef{
			Grouping: true,
			Mode:     "multi",
			Groups: []view.GroupDef{
				{ID: "color", Buttons: []string{".red", ".blue"}},
				{ID: "size", Buttons: []string{".s", ".m"}},
			},
		},
		Sort: &view.SortDef{Options: []view.SortOptionDef{
			{By: ".price, number", Ascending: true},
			{By: "*"},
		}},
		Count: &view.CountDef{Format: "n of N"},
	})
	if err != nil {
		t.Fatalf("view.New: %v", err)
	}
	return v
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T, repo Repository, cfg Config) (*Service, *clock) {
	t.Helper()
	col, err := domcol.New("shop", shopItems(t), 1000)
	if err != nil {
		t.Fatalf("collection.New: %v", err)
	}
	cols := &mockCollections{cols: map[string]domcol.Collection{"shop": col}}
	views := map[string]*view.View{"shop": shopView(t)}

	s := New(cols, repo, views, cfg, nil)
	c := &clock{t: time.UnixMilli(1_000_000)}
	s.now = c.now
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	t.Cleanup(s.Close)
	return s, c
}

// --- Tests ---

func TestCreate_DefaultView(t *testing.T) {
	repo := newMockRepo()
	s, _ := newService(t, repo, Config{})

	snap, err := s.Create(context.Background(), "shop", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if snap.ID != "s1" || snap.View != DefaultView || snap.Collection != "shop" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Filter != "*" {
		t.Errorf("Filter = %q, want *", snap.Filter)
	}
	if snap.Count != "4 / 4" {
		t.Errorf("Count = %q", snap.Count)
	}
	if !slices.Equal(snap.Order, []string{"a", "b", "c", "d"}) {
		t.Errorf("Order = %v", snap.Order)
	}
	if _, ok := repo.records["s1"]; !ok {
		t.Error("session not persisted")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestCreate_Errors(t *testing.T) {
	s, _ := newService(t, newMockRepo(), Config{})

	if _, err := s.Create(context.Background(), "shop", "nope"); !errors.Is(err, domain.ErrViewNotFound) {
		t.Errorf("unknown view: got %v", err)
	}
	if _, err := s.Create(context.Background(), "missing", "shop"); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Errorf("unknown collection: got %v", err)
	}
	if !errors.Is(domain.ErrViewNotFound, domain.ErrNotFound) {
		t.Error("ErrViewNotFound must wrap ErrNotFound")
	}
}

func TestCreate_SaveFailureDropsSession(t *testing.T) {
	repo := newMockRepo()
	repo.saveErr = errors.New("store down")
	s, _ := newService(t, repo, Config{})

	if _, err := s.Create(context.Background(), "shop", "shop"); err == nil {
		t.Fatal("expected error")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestClick(t *testing.T) {
	repo := newMockRepo()
	s, _ := newService(t, repo, Config{})
	ctx := context.Background()

	snap, err := s.Create(ctx, "shop", "shop")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := snap.ID

	snap, changed, err := s.Click(ctx, id, "color", ".red")
	if err != nil || !changed {
		t.Fatalf("Click: changed=%v err=%v", changed, err)
	}
	if !slices.Equal(snap.Shown, []string{"a", "c"}) {
		t.Errorf("Shown = %v", snap.Shown)
	}
	if snap.Count != "2 of 4" {
		t.Errorf("Count = %q", snap.Count)
	}

	snap, _, err = s.Click(ctx, id, "size", ".m")
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if snap.Filter != ".red.m" || !slices.Equal(snap.Shown, []string{"c"}) {
		t.Errorf("Filter = %q, Shown = %v", snap.Filter, snap.Shown)
	}

	rec := repo.records[id]
	if !slices.Equal(rec.Active["color"], []string{".red"}) || !slices.Equal(rec.Active["size"], []string{".m"}) {
		t.Errorf("persisted Active = %v", rec.Active)
	}
}

func TestClick_Rejected(t *testing.T) {
	s, _ := newService(t, newMockRepo(), Config{})
	ctx := context.Background()
	snap, _ := s.Create(ctx, "shop", "shop")

	if _, _, err := s.Click(ctx, snap.ID, "color", ".green"); !errors.Is(err, domain.ErrUnknownToken) {
		t.Errorf("unknown token: got %v", err)
	}
	if _, _, err := s.Click(ctx, snap.ID, "shape", ".red"); !errors.Is(err, domain.ErrUnknownGroup) {
		t.Errorf("unknown group: got %v", err)
	}
	if _, _, err := s.Click(ctx, "missing", "color", ".red"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("unknown session: got %v", err)
	}
}

func TestClick_NoopDoesNotSave(t *testing.T) {
	repo := newMockRepo()
	s, _ := newService(t, repo, Config{})
	ctx := context.Background()
	snap, _ := s.Create(ctx, "shop", "")

	if _, changed, _ := s.Click(ctx, snap.ID, "", ".red"); !changed {
		t.Fatal("first click should change")
	}
	saves := repo.saves
	// Exclusive mode: re-clicking the active value keeps it.
	if _, changed, _ := s.Click(ctx, snap.ID, "", ".red"); changed {
		t.Error("re-click should be a no-op")
	}
	if repo.saves != saves {
		t.Errorf("saves = %d, want %d", repo.saves, saves)
	}
}

func TestSort(t *testing.T) {
	repo := newMockRepo()
	s, _ := newService(t, repo, Config{})
	ctx := context.Background()
	snap, _ := s.Create(ctx, "shop", "shop")

	zero := 0
	snap, err := s.Sort(ctx, snap.ID, SortRequest{Option: &zero})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !slices.Equal(snap.Order, []string{"b", "d", "c", "a"}) {
		t.Errorf("Order = %v", snap.Order)
	}
	if snap.Sort != ".price, number asc" {
		t.Errorf("Sort = %q", snap.Sort)
	}
	rec := repo.records[snap.ID]
	if rec.SortBy != ".price, number" || !rec.Ascending || !slices.Equal(rec.Order, snap.Order) {
		t.Errorf("persisted = %+v", rec)
	}

	snap, err = s.Sort(ctx, snap.ID, SortRequest{By: "*"})
	if err != nil {
		t.Fatalf("Sort origin: %v", err)
	}
	if !slices.Equal(snap.Order, []string{"a", "b", "c", "d"}) {
		t.Errorf("origin Order = %v", snap.Order)
	}

	if _, err := s.Sort(ctx, snap.ID, SortRequest{By: ".price"}); !errors.Is(err, domain.ErrInvalidSortSpec) {
		t.Errorf("bad attr: got %v", err)
	}
	seven := 7
	if _, err := s.Sort(ctx, snap.ID, SortRequest{Option: &seven}); !errors.Is(err, domain.ErrInvalidSortSpec) {
		t.Errorf("bad option: got %v", err)
	}
}

func TestRestoreFromStore(t *testing.T) {
	repo := newMockRepo()
	ctx := context.Background()

	first, _ := newService(t, repo, Config{})
	snap, _ := first.Create(ctx, "shop", "shop")
	id := snap.ID
	if _, _, err := first.Click(ctx, id, "color", ".blue"); err != nil {
		t.Fatalf("Click: %v", err)
	}
	zero := 0
	if _, err := first.Sort(ctx, id, SortRequest{By: ".price, number", Ascending: false}); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want, err := first.Sort(ctx, id, SortRequest{Option: &zero})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}

	second, _ := newService(t, repo, Config{})
	got, err := second.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !slices.Equal(got.Order, want.Order) {
		t.Errorf("Order = %v, want %v", got.Order, want.Order)
	}
	if !slices.Equal(got.Shown, want.Shown) || got.Filter != want.Filter || got.Count != want.Count {
		t.Errorf("restored = %+v, want %+v", got, want)
	}
	if got.Pending {
		t.Error("restored session must not have a pending settle")
	}

	// The restored origin is the stored order, so clicking keeps working.
	if _, changed, err := second.Click(ctx, id, "color", ".blue"); err != nil || !changed {
		t.Errorf("Click after restore: changed=%v err=%v", changed, err)
	}
}

// gatedRepo holds every Load until release is closed and counts them.
type gatedRepo struct {
	*mockRepo
	release chan struct{}
	loads   atomic.Int32
}

func (g *gatedRepo) Load(ctx context.Context, id string) (domsession.Record, error) {
	g.loads.Add(1)
	<-g.release
	return g.mockRepo.Load(ctx, id)
}

func TestConcurrentReloadSharesOneEngine(t *testing.T) {
	repo := &gatedRepo{mockRepo: newMockRepo(), release: make(chan struct{})}
	ctx := context.Background()

	s, _ := newService(t, repo, Config{})
	close(repo.release)
	snap, err := s.Create(ctx, "shop", "shop")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.drop(snap.ID)
	repo.release = make(chan struct{})

	groups := []string{"color", "size"}
	clicks := []struct{ group, value string }{
		{"color", ".red"}, {"color", ".blue"}, {"size", ".s"}, {"size", ".m"},
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(clicks))
	for _, c := range clicks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Click(ctx, snap.ID, c.group, c.value)
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(repo.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Click: %v", err)
		}
	}
	if n := repo.loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
	if n := s.Len(); n != 1 {
		t.Errorf("live sessions = %d, want 1", n)
	}

	// Every click landed on the engine that stayed live, and was persisted.
	live, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	stored, _ := repo.mockRepo.Load(ctx, snap.ID)
	for _, g := range groups {
		if len(live.Active[g]) != 2 {
			t.Errorf("live %s = %v, want both values", g, live.Active[g])
		}
		if !slices.Equal(stored.Active[g], live.Active[g]) {
			t.Errorf("stored %s = %v, live %v", g, stored.Active[g], live.Active[g])
		}
	}
}

func TestIdleEviction(t *testing.T) {
	repo := newMockRepo()
	s, c := newService(t, repo, Config{IdleTTL: time.Minute})
	ctx := context.Background()
	snap, _ := s.Create(ctx, "shop", "shop")
	if _, _, err := s.Click(ctx, snap.ID, "color", ".red"); err != nil {
		t.Fatalf("Click: %v", err)
	}

	c.t = c.t.Add(2 * time.Minute)
	if err := s.CheckCapacity(); err != nil {
		t.Fatalf("CheckCapacity: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after eviction", s.Len())
	}

	got, err := s.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get after eviction: %v", err)
	}
	if !slices.Equal(got.Shown, []string{"a", "c"}) {
		t.Errorf("Shown = %v", got.Shown)
	}
}

func TestMaxSessions(t *testing.T) {
	s, _ := newService(t, newMockRepo(), Config{MaxSessions: 1})
	ctx := context.Background()

	if _, err := s.Create(ctx, "shop", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, "shop", ""); !errors.Is(err, domain.ErrTooManySessions) {
		t.Errorf("second Create: got %v", err)
	}
	if err := s.CheckCapacity(); !errors.Is(err, domain.ErrTooManySessions) {
		t.Errorf("CheckCapacity: got %v", err)
	}
}

func TestGet_ResavesExpiredRecord(t *testing.T) {
	repo := newMockRepo()
	s, _ := newService(t, repo, Config{})
	ctx := context.Background()
	snap, _ := s.Create(ctx, "shop", "")

	delete(repo.records, snap.ID)
	if _, err := s.Get(ctx, snap.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := repo.records[snap.ID]; !ok {
		t.Error("record not written back")
	}

	repo.touchErr = errors.New("store down")
	if _, err := s.Get(ctx, snap.ID); err == nil {
		t.Error("expected touch error")
	}
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	s, _ := newService(t, repo, Config{})
	ctx := context.Background()
	snap, _ := s.Create(ctx, "shop", "")

	if err := s.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Len() != 0 || len(repo.records) != 0 {
		t.Errorf("Len = %d, records = %d", s.Len(), len(repo.records))
	}
	if err := s.Delete(ctx, snap.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("second Delete: got %v", err)
	}
	if _, err := s.Get(ctx, snap.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get after Delete: got %v", err)
	}
}

func TestViews(t *testing.T) {
	s, _ := newService(t, newMockRepo(), Config{})
	var names []string
	for _, v := range s.Views() {
		names = append(names, v.Name())
	}
	if !slices.Equal(names, []string{"default", "shop"}) {
		t.Errorf("Views = %v", names)
	}
}
