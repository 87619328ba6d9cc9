package view

import (
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/domain/filter"
	"github.com/kailas-cloud/itemfilter/internal/domain/sorting"
)

func shop() Definition {
	return Definition{
		Filter: &FilterDef{
			Grouping: true,
			Mode:     "toggle",
			Groups: []GroupDef{
				{ID: "color", Buttons: []string{"*", ".red", ".blue", ".red"}},
				{ID: "stock", Buttons: []string{"inStock"}},
				{ID: "any"},
			},
		},
		Sort: &SortDef{
			Trigger: "button",
			Options: []SortOptionDef{{By: "*"}, {By: ".price, number", Ascending: true}},
		},
		Count:       &CountDef{Format: "n of N"},
		Predicates:  map[string]RuleDef{"inStock": {Field: "stock", Op: "gt", Value: "0"}},
		DateLayouts: []string{"2006-01-02"},
		Collation:   "de",
	}
}

func TestNew(t *testing.T) {
	v, err := New("shop", shop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !v.Filtering() || !v.Grouping() || v.Mode() != filter.Multi {
		t.Errorf("filter settings: %v %v %v", v.Filtering(), v.Grouping(), v.Mode())
	}
	if got := v.GroupIDs(); !slices.Equal(got, []string{"color", "stock", "any"}) {
		t.Errorf("GroupIDs = %v", got)
	}
	if got := v.Groups()[0].Buttons(); !slices.Equal(got, []string{"*", ".red", ".blue"}) {
		t.Errorf("buttons = %v", got)
	}
	if !v.Sorting() || v.Trigger() != TriggerButton || len(v.SortOptions()) != 2 {
		t.Errorf("sort settings: %v %v %v", v.Sorting(), v.Trigger(), v.SortOptions())
	}
	if !v.Counting() || v.CountFormat() != "n of N" {
		t.Errorf("count settings: %v %q", v.Counting(), v.CountFormat())
	}
	if !v.Predicates().Has("inStock") {
		t.Error("inStock predicate not registered")
	}
	if _, ok := v.Predicates().DateFormat(); !ok {
		t.Error("date format not registered")
	}
	if tag, ok := v.Collation(); !ok || tag.String() != "de" {
		t.Errorf("Collation = %v, %v", tag, ok)
	}

	opt, err := v.SortOption(1)
	if err != nil || opt.KeyType() != sorting.Number || !opt.Ascending() {
		t.Errorf("SortOption(1) = %v, %v", opt, err)
	}
	if _, err := v.SortOption(5); !errors.Is(err, domain.ErrInvalidSortSpec) {
		t.Errorf("SortOption(5) err = %v", err)
	}
}

func TestNew_DisabledSections(t *testing.T) {
	v, err := New("bare", Definition{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v.Filtering() || v.Sorting() || v.Counting() {
		t.Error("omitted sections must be disabled")
	}
	if v.CountFormat() != "n / N" {
		t.Errorf("CountFormat = %q", v.CountFormat())
	}
	if _, ok := v.Collation(); ok {
		t.Error("collation must be unset")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"mode", func(d *Definition) { d.Filter.Mode = "checkbox" }},
		{"empty group id", func(d *Definition) { d.Filter.Groups[0].ID = "" }},
		{"duplicate group", func(d *Definition) { d.Filter.Groups[1].ID = "color" }},
		{"trigger", func(d *Definition) { d.Sort.Trigger = "slider" }},
		{"sort option", func(d *Definition) { d.Sort.Options[1].By = ".price, weight" }},
		{"rule op", func(d *Definition) { d.Predicates["inStock"] = RuleDef{Field: "stock", Op: "between"} }},
		{"selector-like predicate", func(d *Definition) { d.Predicates["in.stock"] = RuleDef{Field: "stock", Op: "exists"} }},
		{"reserved predicate", func(d *Definition) { d.Predicates["dateFormat"] = RuleDef{Field: "d", Op: "exists"} }},
		{"collation", func(d *Definition) { d.Collation = "not a tag!" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := shop()
			tt.mutate(&def)
			if _, err := New("shop", def); !errors.Is(err, domain.ErrInvalidView) {
				t.Fatalf("err = %v, want ErrInvalidView", err)
			}
		})
	}
}

func TestValidateClick(t *testing.T) {
	v, err := New("shop", shop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		group, value string
		want         error
	}{
		{"color", ".red", nil},
		{"color", "*", nil},
		{"color", ".green", domain.ErrUnknownToken},
		{"stock", "inStock", nil},
		{"any", ".whatever", nil},
		{"size", ".xl", domain.ErrUnknownGroup},
		{"color", "", domain.ErrUnknownToken},
	}
	for _, tt := range tests {
		err := v.ValidateClick(tt.group, tt.value)
		if tt.want == nil && err != nil {
			t.Errorf("ValidateClick(%q, %q) = %v", tt.group, tt.value, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("ValidateClick(%q, %q) = %v, want %v", tt.group, tt.value, err, tt.want)
		}
	}
}

func TestUngrouped(t *testing.T) {
	v, err := New("flat", Definition{Filter: &FilterDef{Groups: []GroupDef{
		{ID: "a", Buttons: []string{".x"}},
		{ID: "b", Buttons: []string{".y"}},
	}}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := v.GroupIDs(); !slices.Equal(got, []string{filter.DefaultGroup}) {
		t.Errorf("GroupIDs = %q", got)
	}
	if v.GroupFor("b") != filter.DefaultGroup {
		t.Error("ungrouped clicks must land in the default group")
	}
	if err := v.ValidateClick("b", ".x"); err != nil {
		t.Errorf("ValidateClick: %v", err)
	}
}

func TestDefault(t *testing.T) {
	v := Default()
	if !v.Filtering() || !v.Sorting() || !v.Counting() {
		t.Error("default view must enable every feature")
	}
	if err := v.ValidateClick("", ".anything"); err != nil {
		t.Errorf("ValidateClick: %v", err)
	}
}
