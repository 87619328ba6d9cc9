package collection

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

func mustItem(t *testing.T, id string) item.Item {
	t.Helper()
	it, err := item.New(id, []string{"c"}, nil)
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return it
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"shop", false},
		{"shop_2024-q1", false},
		{"", true},
		{"has space", true},
		{"slash/name", true},
		{strings.Repeat("a", 65), true},
	}
	for _, tt := range tests {
		if err := ValidateName(tt.name); (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestNew(t *testing.T) {
	c, err := New("shop", []item.Item{mustItem(t, "a"), mustItem(t, "b")}, 1700000000000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Name() != "shop" || c.Len() != 2 || c.Revision() != 1 || c.CreatedAt() != 1700000000000 {
		t.Errorf("unexpected collection: %+v", c)
	}

	empty, err := New("empty", nil, 0)
	if err != nil || empty.Items() == nil {
		t.Errorf("empty collection: %v, items=%v", err, empty.Items())
	}
}

func TestNew_DuplicateIDs(t *testing.T) {
	_, err := New("shop", []item.Item{mustItem(t, "a"), mustItem(t, "a")}, 0)
	if !errors.Is(err, domain.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
}

func TestReplaces(t *testing.T) {
	prev := Reconstruct("shop", nil, 100, 3)
	next, err := New("shop", []item.Item{mustItem(t, "x")}, 999)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := next.Replaces(prev)
	if got.CreatedAt() != 100 || got.Revision() != 4 || got.Len() != 1 {
		t.Errorf("Replaces = created %d rev %d len %d", got.CreatedAt(), got.Revision(), got.Len())
	}
}
