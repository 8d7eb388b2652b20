// Package selector classifies indexing arguments into a closed set of
// selector variants and resolves row variants to positions.
//
// Classification happens once, in Classify; the mutator only ever switches
// on Selector.Kind.
//
//	sel, err := selector.Classify([]bool{true, false, true}, table, selector.Options{})
//	rows, err := sel.Rows(table) // [0 2]
//
// Slices are positional when both bounds are Go ints (or nil) and
// label-based otherwise:
//
//	selector.Range(1, 2)        // position 1
//	selector.Between("a", "c")  // labels a through c, inclusive
package selector
