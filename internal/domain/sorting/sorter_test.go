package sorting

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
)

type fieldKeys struct{}

func (fieldKeys) ExtractKey(it item.Item, selector string) string {
	v, _ := it.Field(selector)
	return v
}

type dates struct{ f predicate.DateFormat }

func (d dates) DateFormat() (predicate.DateFormat, bool) { return d.f, d.f != nil }

func items(t *testing.T, field string, values ...string) []item.Item {
	t.Helper()
	out := make([]item.Item, len(values))
	for i, v := range values {
		it, err := item.New(string(rune('a'+i)), nil, map[string]string{field: v})
		if err != nil {
			t.Fatalf("item.New: %v", err)
		}
		out[i] = it
	}
	return out
}

func values(list []item.Item, field string) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i], _ = it.Field(field)
	}
	return out
}

func mustSpec(t *testing.T, sel string, kt KeyType, asc bool) Spec {
	t.Helper()
	s, err := NewSpec(sel, kt, asc)
	if err != nil {
		t.Fatalf("NewSpec: %v", err)
	}
	return s
}

func TestSort_Number(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		asc  bool
		want []string
	}{
		{"numeric not lexicographic", []string{"10", "2", "33"}, true, []string{"2", "10", "33"}},
		{"descending", []string{"10", "2", "33"}, false, []string{"33", "10", "2"}},
		{"leading prefix", []string{"5kg", "12kg", "1.5kg"}, true, []string{"1.5kg", "5kg", "12kg"}},
		{"NaN first ascending", []string{"3", "n/a", "1"}, true, []string{"n/a", "1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSorter(fieldKeys{}, nil)
			got, err := s.Sort(items(t, "price", tt.in...), mustSpec(t, "price", Number, tt.asc))
			if err != nil {
				t.Fatalf("Sort: %v", err)
			}
			if v := values(got, "price"); !slices.Equal(v, tt.want) {
				t.Errorf("got %v, want %v", v, tt.want)
			}
		})
	}
}

func TestSort_StableBothDirections(t *testing.T) {
	in := items(t, "k", "b", "a", "b", "a")

	for _, asc := range []bool{true, false} {
		s := NewSorter(fieldKeys{}, nil)
		got, err := s.Sort(in, mustSpec(t, "k", String, asc))
		if err != nil {
			t.Fatalf("Sort: %v", err)
		}
		want := []string{"b", "d", "a", "c"}
		if !asc {
			want = []string{"a", "c", "b", "d"}
		}
		if ids := item.IDs(got); !slices.Equal(ids, want) {
			t.Errorf("asc=%v: ids %v, want %v", asc, ids, want)
		}
	}
}

func TestSort_IsPermutationAndInputUntouched(t *testing.T) {
	in := items(t, "k", "c", "a", "b")
	before := item.IDs(in)

	s := NewSorter(fieldKeys{}, nil)
	got, err := s.Sort(in, mustSpec(t, "k", String, true))
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}

	if !slices.Equal(item.IDs(in), before) {
		t.Error("input slice was reordered")
	}
	ids := item.IDs(got)
	slices.Sort(ids)
	sorted := slices.Clone(before)
	slices.Sort(sorted)
	if !slices.Equal(ids, sorted) {
		t.Errorf("not a permutation: %v", ids)
	}
}

func TestSort_OriginRestore(t *testing.T) {
	in := items(t, "k", "c", "a", "b")
	s := NewSorter(fieldKeys{}, nil)

	asc, err := s.Sort(in, mustSpec(t, "k", String, true))
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	desc, err := s.Sort(asc, mustSpec(t, "k", String, false))
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	restored, err := s.Sort(desc, OriginSpec())
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}

	if !slices.Equal(item.IDs(restored), item.IDs(in)) {
		t.Errorf("restored %v, want %v", item.IDs(restored), item.IDs(in))
	}
}

func TestSort_OriginFirstCallIsIdentity(t *testing.T) {
	in := items(t, "k", "z", "y")
	s := NewSorter(fieldKeys{}, nil)

	got, err := s.Sort(in, OriginSpec())
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !slices.Equal(item.IDs(got), item.IDs(in)) {
		t.Errorf("got %v", item.IDs(got))
	}
}

func TestSort_Date(t *testing.T) {
	in := items(t, "d", "2024-03-01", "2023-12-31", "bad", "2024-01-15")

	t.Run("without transform order unchanged", func(t *testing.T) {
		for _, src := range []DateSource{nil, dates{}} {
			s := NewSorter(fieldKeys{}, src)
			got, err := s.Sort(in, mustSpec(t, "d", Date, true))
			if err != nil {
				t.Fatalf("Sort: %v", err)
			}
			if !slices.Equal(item.IDs(got), item.IDs(in)) {
				t.Errorf("got %v, want input order", item.IDs(got))
			}
		}
	})

	t.Run("with transform", func(t *testing.T) {
		s := NewSorter(fieldKeys{}, dates{predicate.LayoutDateFormat(time.DateOnly)})
		got, err := s.Sort(in, mustSpec(t, "d", Date, true))
		if err != nil {
			t.Fatalf("Sort: %v", err)
		}
		want := []string{"bad", "2023-12-31", "2024-01-15", "2024-03-01"}
		if v := values(got, "d"); !slices.Equal(v, want) {
			t.Errorf("got %v, want %v", v, want)
		}
	})
}

func TestSort_StringComparer(t *testing.T) {
	in := items(t, "k", "b", "A", "a")
	fold := func(a, b string) int {
		la, lb := []rune(a)[0]|0x20, []rune(b)[0]|0x20
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	}

	s := NewSorter(fieldKeys{}, nil, WithStringComparer(fold))
	got, err := s.Sort(in, mustSpec(t, "k", String, true))
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if v := values(got, "k"); !slices.Equal(v, []string{"A", "a", "b"}) {
		t.Errorf("got %v", v)
	}
}

func TestSort_Errors(t *testing.T) {
	s := NewSorter(fieldKeys{}, nil)

	if _, err := s.Sort(nil, OriginSpec()); !errors.Is(err, domain.ErrNoCollection) {
		t.Errorf("nil items: err = %v", err)
	}
	if _, err := s.Sort([]item.Item{}, Spec{selector: "k", keyType: "bogus"}); !errors.Is(err, domain.ErrInvalidSortSpec) {
		t.Errorf("bogus type: err = %v", err)
	}

	got, err := s.Sort([]item.Item{}, mustSpec(t, "k", Number, true))
	if err != nil || len(got) != 0 {
		t.Errorf("empty collection: %v, %v", got, err)
	}
}
