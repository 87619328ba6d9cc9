package filter

import (
	"slices"
	"testing"

	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
)

type names map[string]bool

func (n names) Has(name string) bool { return n[name] }

func TestCompose(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		groups []string
		clicks [][2]string
		reg    names
		want   string
	}{
		{
			name: "nothing selected",
			mode: Exclusive, groups: []string{"a", "b"},
			want: "*",
		},
		{
			name: "wildcard in every group",
			mode: Exclusive, groups: []string{"a", "b"},
			clicks: [][2]string{{"a", "*"}, {"b", "*"}},
			want:   "*",
		},
		{
			name: "single group",
			mode: Exclusive, groups: []string{"a"},
			clicks: [][2]string{{"a", ".cat1"}},
			want:   ".cat1",
		},
		{
			name: "two groups joined",
			mode: Exclusive, groups: []string{"color", "size"},
			clicks: [][2]string{{"color", ".red"}, {"size", ".xl"}},
			want:   ".red.xl",
		},
		{
			name: "cartesian product",
			mode: Multi, groups: []string{"color", "size"},
			clicks: [][2]string{{"color", ".red"}, {"color", ".blue"}, {"size", ".s"}, {"size", ".m"}},
			want:   ".blue.m,.blue.s,.red.m,.red.s",
		},
		{
			name: "wildcard group omitted from join",
			mode: Exclusive, groups: []string{"color", "size"},
			clicks: [][2]string{{"color", ".red"}, {"size", "*"}},
			want:   ".red",
		},
		{
			name: "duplicates collapse",
			mode: Multi, groups: []string{"a"},
			clicks: [][2]string{{"a", ".x,.x"}},
			want:   ".x",
		},
		{
			name: "predicates only",
			mode: Exclusive, groups: []string{"a"},
			clicks: [][2]string{{"a", "inStock"}},
			reg:    names{"inStock": true},
			want:   "*|inStock",
		},
		{
			name: "predicates unioned and sorted",
			mode: Exclusive, groups: []string{"a", "b"},
			clicks: [][2]string{{"a", ".red,onSale"}, {"b", "inStock,onSale"}},
			reg:    names{"inStock": true, "onSale": true},
			want:   ".red|inStock,onSale",
		},
		{
			name: "unregistered predicate dropped",
			mode: Exclusive, groups: []string{"a"},
			clicks: [][2]string{{"a", "cat1"}},
			reg:    names{},
			want:   "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection(tt.mode, tt.groups...)
			for _, c := range tt.clicks {
				s.Record(c[0], c[1])
			}
			if got := Compose(s, tt.reg).String(); got != tt.want {
				t.Errorf("Compose = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompose_Deterministic(t *testing.T) {
	a := NewSelection(Multi, "g")
	a.Record("g", ".y")
	a.Record("g", ".x")

	b := NewSelection(Multi, "g")
	b.Record("g", ".x")
	b.Record("g", ".y")

	if !Compose(a, nil).Equal(Compose(b, nil)) {
		t.Error("click order must not change the composed filter")
	}
}

func TestComposed_Constructors(t *testing.T) {
	if !Any().IsAny() || Nothing().IsAny() {
		t.Fatal("Any/Nothing mismatch")
	}
	if Unrestricted([]string{"p"}).IsAny() {
		t.Error("unrestricted with predicates is not Any")
	}
	if Nothing().String() != "" {
		t.Errorf("Nothing().String() = %q", Nothing().String())
	}
	c := NewComposed([]Term{NewTerm(".b"), NewTerm(".a"), NewTerm(".b")}, []string{"q", "p", "q"})
	if !slices.Equal(c.Selectors(), []string{".a", ".b"}) || !slices.Equal(c.Predicates(), []string{"p", "q"}) {
		t.Errorf("got %v %v", c.Selectors(), c.Predicates())
	}
}

// End-to-end over the selector-free matcher used in evaluate_test.go.
func TestCompose_ThenEvaluate(t *testing.T) {
	list := []item.Item{
		mustItem(t, "1", "cat1"),
		mustItem(t, "2", "cat2"),
		mustItem(t, "3", "cat1", "cat2"),
	}
	s := NewSelection(Exclusive, "a")
	s.Record("a", ".cat1")

	v := Evaluate(Compose(s, predicate.Empty()), list, classMatcher{}, predicate.Empty())
	if !slices.Equal(v.Shown, []string{"1", "3"}) || !slices.Equal(v.Hidden, []string{"2"}) {
		t.Errorf("shown %v hidden %v", v.Shown, v.Hidden)
	}
}
