package collection

import (
	"context"
	"testing"

	"github.com/kailas-cloud/itemfilter/internal/db"
	domcol "github.com/kailas-cloud/itemfilter/internal/domain/collection"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

const testPrefix = "itemfilter:"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte) error
	delFn    func(ctx context.Context, key string) error
	existsFn func(ctx context.Context, key string) (bool, error)
	scanFn   func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testPrefix), ms
}

func testCollection(t *testing.T, name string, createdAt int64) domcol.Collection {
	t.Helper()
	a, err := item.New("a", []string{"red", "s"}, map[string]string{"price": "10"})
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	b, err := item.New("b", []string{"blue"}, nil)
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return domcol.Reconstruct(name, []item.Item{a.WithElementID("hero"), b}, createdAt, 2)
}
