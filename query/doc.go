// Package query builds parameterized WHERE and ORDER BY fragments for bun
// select queries from typed column paths.
//
// A nil *Predicate means "no constraint". Combinators drop nil operands, so
// optional search criteria can be composed without branching at call sites.
package query
