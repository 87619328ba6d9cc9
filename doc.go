// Package itemfilter filters and sorts item collections the way a catalog page
// does: filter buttons grouped by attribute, named predicates, and stable
// sorting with a way back to the original order.
//
// # Filtering
//
// Button values are selectors (".red", ":not(.sale)") or predicate names
// ("inStock"). Values within a group are alternatives; groups combine with AND.
//
//	eng, _ := itemfilter.New(items,
//	    itemfilter.WithGroups("color", "size"),
//	    itemfilter.WithMode(itemfilter.Multi),
//	    itemfilter.WithPredicate("inStock", func(it itemfilter.Item) bool {
//	        v, _ := it.Field("stock")
//	        return v != "0"
//	    }),
//	    itemfilter.WithCount("n of N"),
//	)
//	eng.Click("color", ".red")
//	eng.Click("size", ".m")
//	eng.Visible() // ids matching .red.m
//	eng.Count()   // "2 of 10"
//
// # Sorting
//
// Sort attributes read "selector, type" with type number, string or date.
// "*" restores the order the collection had before its first sort.
//
//	_ = eng.Sort(".price, number", true)
//	_ = eng.Sort("*", false)
//
// # Settle
//
// With WithSettle, transitions report through a callback once no further
// transition arrived for the given delay.
package itemfilter
