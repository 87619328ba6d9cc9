package filter

import (
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
)

// classMatcher understands only ".class" chains.
type classMatcher struct{}

func (classMatcher) Matches(it item.Item, selector string) bool {
	for _, c := range strings.Split(strings.TrimPrefix(selector, "."), ".") {
		if !it.HasClass(c) {
			return false
		}
	}
	return true
}

func mustItem(t *testing.T, id string, classes ...string) item.Item {
	t.Helper()
	it, err := item.New(id, classes, map[string]string{"id": id})
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return it
}

func fixture(t *testing.T) []item.Item {
	return []item.Item{
		mustItem(t, "1", "red", "s"),
		mustItem(t, "2", "red", "m"),
		mustItem(t, "3", "blue", "s"),
		mustItem(t, "4", "green", "m"),
	}
}

func TestEvaluate(t *testing.T) {
	odd := predicate.NewRegistry(map[string]predicate.Func{
		"odd": func(it item.Item) bool {
			id, _ := it.Field("id")
			return id == "1" || id == "3"
		},
	})

	tests := []struct {
		name  string
		c     Composed
		preds PredicateSource
		want  []string
	}{
		{"any", Any(), nil, []string{"1", "2", "3", "4"}},
		{"nothing", Nothing(), nil, []string{}},
		{"single term", NewComposed([]Term{NewTerm(".red")}, nil), nil, []string{"1", "2"}},
		{"term is conjunction", NewComposed([]Term{NewTerm(".red", ".m")}, nil), nil, []string{"2"}},
		{"terms are disjunction", NewComposed([]Term{NewTerm(".blue"), NewTerm(".green")}, nil), nil, []string{"3", "4"}},
		{"predicate with any", Unrestricted([]string{"odd"}), odd, []string{"1", "3"}},
		{"predicate and term", NewComposed([]Term{NewTerm(".red")}, []string{"odd"}), odd, []string{"1"}},
		{"unknown predicate ignored", NewComposed([]Term{NewTerm(".s")}, []string{"missing"}), odd, []string{"1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := fixture(t)
			v := Evaluate(tt.c, list, classMatcher{}, tt.preds)
			if !slices.Equal(v.Shown, tt.want) {
				t.Errorf("shown = %v, want %v", v.Shown, tt.want)
			}
			if v.Total() != len(list) {
				t.Errorf("Total = %d, want %d", v.Total(), len(list))
			}
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	list := fixture(t)
	c := NewComposed([]Term{NewTerm(".red"), NewTerm(".s")}, nil)

	first := Evaluate(c, list, classMatcher{}, nil)
	second := Evaluate(c, list, classMatcher{}, nil)
	if !slices.Equal(first.Shown, second.Shown) || !slices.Equal(first.Hidden, second.Hidden) {
		t.Errorf("results differ: %v vs %v", first, second)
	}
}

func TestEvaluate_PredicatesShortCircuit(t *testing.T) {
	calls := 0
	reg := predicate.NewRegistry(map[string]predicate.Func{
		"a": func(item.Item) bool { return false },
		"b": func(item.Item) bool { calls++; return true },
	})

	Evaluate(Unrestricted([]string{"a", "b"}), fixture(t), nil, reg)
	if calls != 0 {
		t.Errorf("second predicate ran %d times after first failed", calls)
	}
}

func TestEvaluate_NilMatcher(t *testing.T) {
	v := Evaluate(NewComposed([]Term{NewTerm(".red")}, nil), fixture(t), nil, nil)
	if len(v.Shown) != 0 {
		t.Errorf("nil matcher must match nothing, shown %v", v.Shown)
	}
}

func TestAllShown(t *testing.T) {
	v := AllShown(fixture(t))
	if len(v.Shown) != 4 || len(v.Hidden) != 0 {
		t.Errorf("got %v", v)
	}
}
