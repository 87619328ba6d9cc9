package predicate

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/number"
)

// Op is a rule comparison operator.
type Op string

// Supported rule operators.
const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpContains Op = "contains"
	OpPrefix   Op = "prefix"
	OpSuffix   Op = "suffix"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpEven     Op = "even"
	OpOdd      Op = "odd"
	OpExists   Op = "exists"
	OpClass    Op = "class"
)

// Rule is a declarative predicate over one item field (or class, for OpClass).
type Rule struct {
	field string
	op    Op
	value string
	bound float64
}

// NewRule validates and creates a Rule.
func NewRule(field string, op Op, value string) (Rule, error) {
	switch op {
	case OpClass:
		if value == "" {
			return Rule{}, fmt.Errorf("class rule requires a value")
		}
		return Rule{op: op, value: value}, nil
	case OpEq, OpNe, OpContains, OpPrefix, OpSuffix, OpEven, OpOdd, OpExists:
	case OpGt, OpGte, OpLt, OpLte:
		b := number.Parse(value)
		if math.IsNaN(b) {
			return Rule{}, fmt.Errorf("rule %s requires a numeric value, got %q", op, value)
		}
		if field == "" {
			return Rule{}, fmt.Errorf("rule field is required")
		}
		return Rule{field: field, op: op, value: value, bound: b}, nil
	default:
		return Rule{}, fmt.Errorf("unknown rule op %q", op)
	}
	if field == "" {
		return Rule{}, fmt.Errorf("rule field is required")
	}
	return Rule{field: field, op: op, value: value}, nil
}

// Field returns the field the rule reads.
func (r Rule) Field() string { return r.field }

// Op returns the operator.
func (r Rule) Op() Op { return r.op }

// Value returns the comparison operand.
func (r Rule) Value() string { return r.value }

// Func compiles the rule into a predicate.
func (r Rule) Func() Func {
	return func(it item.Item) bool { return r.eval(it) }
}

func (r Rule) eval(it item.Item) bool {
	if r.op == OpClass {
		return it.HasClass(r.value)
	}

	text, ok := it.Field(strings.TrimPrefix(r.field, "."))
	if r.op == OpExists {
		return ok
	}
	if !ok {
		return false
	}

	switch r.op {
	case OpEq:
		return text == r.value
	case OpNe:
		return text != r.value
	case OpContains:
		return strings.Contains(text, r.value)
	case OpPrefix:
		return strings.HasPrefix(text, r.value)
	case OpSuffix:
		return strings.HasSuffix(text, r.value)
	}

	n := number.Parse(text)
	if math.IsNaN(n) {
		return false
	}
	switch r.op {
	case OpGt:
		return n > r.bound
	case OpGte:
		return n >= r.bound
	case OpLt:
		return n < r.bound
	case OpLte:
		return n <= r.bound
	case OpEven, OpOdd:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return false
		}
		even := math.Mod(n, 2) == 0
		return even == (r.op == OpEven)
	}
	return false
}
