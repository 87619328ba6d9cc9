package collection

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/itemfilter/internal/db"
	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

func TestPutGet_RoundTripsThroughStore(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	stored := map[string][]byte{}
	ms.setFn = func(_ context.Context, key string, value []byte) error {
		stored[key] = value
		return nil
	}
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		v, ok := stored[key]
		if !ok {
			return nil, db.ErrKeyNotFound
		}
		return v, nil
	}

	if err := repo.Put(ctx, testCollection(t, "shop", 42)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := stored["itemfilter:collection:shop"]; !ok {
		t.Fatalf("unexpected keys: %v", stored)
	}

	got, err := repo.Get(ctx, "shop")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name() != "shop" || got.CreatedAt() != 42 || got.Revision() != 2 {
		t.Errorf("metadata = %s %d %d", got.Name(), got.CreatedAt(), got.Revision())
	}
	if !slices.Equal(item.IDs(got.Items()), []string{"a", "b"}) {
		t.Fatalf("items = %v", item.IDs(got.Items()))
	}
	first := got.Items()[0]
	if first.ElementID() != "hero" || !first.HasClass("s") {
		t.Errorf("first item = %+v", first)
	}
	if v, _ := first.Field("price"); v != "10" {
		t.Errorf("price = %q", v)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("connection lost") }

	_, err := repo.Get(context.Background(), "shop")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestGet_CorruptBlob(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(context.Context, string) ([]byte, error) { return []byte("{not json"), nil }

	if _, err := repo.Get(context.Background(), "shop"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestList_SortedAndSkipsVanished(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	blobs := map[string][]byte{}
	for name, created := range map[string]int64{"b": 10, "a": 10, "c": 5} {
		data, err := encode(testCollection(t, name, created))
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		blobs[testPrefix+"collection:"+name] = data
	}

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "itemfilter:collection:*" {
			t.Errorf("pattern = %q", pattern)
		}
		return []string{"itemfilter:collection:a", "itemfilter:collection:gone", "itemfilter:collection:b", "itemfilter:collection:c"}, nil
	}
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if v, ok := blobs[key]; ok {
			return v, nil
		}
		return nil, db.ErrKeyNotFound
	}

	cols, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, c := range cols {
		names = append(names, c.Name())
	}
	if !slices.Equal(names, []string{"c", "a", "b"}) {
		t.Errorf("names = %v", names)
	}
}

func TestList_ScanError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(context.Context, string) ([]string, error) { return nil, errors.New("boom") }
	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestDelete(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Delete(ctx, "shop"); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}

	var deleted string
	ms.existsFn = func(context.Context, string) (bool, error) { return true, nil }
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}
	if err := repo.Delete(ctx, "shop"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted != "itemfilter:collection:shop" {
		t.Errorf("deleted %q", deleted)
	}
}
