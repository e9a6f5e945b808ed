/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package query

import (
	"strings"

	"github.com/uptrace/bun"
)

// Predicate is a boolean SQL fragment with positional placeholders and the
// values bound to them. Values are never spliced into the fragment text.
//
// The nil *Predicate is the identity element: it adds no condition when
// applied and disappears when combined with And or Or.
type Predicate struct {
	expr string
	args []interface{}
}

func newPredicate(expr string, args ...interface{}) *Predicate {
	return &Predicate{expr: expr, args: args}
}

// Query returns the fragment and its bound arguments. A nil predicate
// returns an empty fragment.
func (p *Predicate) Query() (string, []interface{}) {
	if p == nil {
		return "", nil
	}
	args := make([]interface{}, len(p.args))
	copy(args, p.args)
	return p.expr, args
}

// IsEmpty reports whether p adds no condition.
func (p *Predicate) IsEmpty() bool {
	return p == nil
}

// And returns p AND other, eliding whichever side is nil.
func (p *Predicate) And(other *Predicate) *Predicate {
	return And(p, other)
}

// Or returns p OR other, eliding whichever side is nil.
func (p *Predicate) Or(other *Predicate) *Predicate {
	return Or(p, other)
}

// And conjoins the non-nil predicates. It returns nil when every operand is
// nil and the single operand unchanged when only one is present.
func And(preds ...*Predicate) *Predicate {
	return join(" AND ", preds)
}

// Or disjoins the non-nil predicates. Absent criteria contribute nothing to
// the disjunction, the same way they contribute nothing to And.
func Or(preds ...*Predicate) *Predicate {
	return join(" OR ", preds)
}

// Not negates p. Negating the identity element yields the identity element.
func Not(p *Predicate) *Predicate {
	if p == nil {
		return nil
	}
	return newPredicate("NOT ("+p.expr+")", p.args...)
}

func join(sep string, preds []*Predicate) *Predicate {
	present := make([]*Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			present = append(present, p)
		}
	}
	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	}

	var sb strings.Builder
	var args []interface{}
	for i, p := range present {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString("(")
		sb.WriteString(p.expr)
		sb.WriteString(")")
		args = append(args, p.args...)
	}
	return newPredicate(sb.String(), args...)
}

// Where adds every non-nil predicate to q as its own WHERE item. bun joins
// WHERE items with AND, so Where(q, a, b) selects the same rows as
// Where(q, And(a, b)).
func Where(q *bun.SelectQuery, preds ...*Predicate) *bun.SelectQuery {
	for _, p := range preds {
		if p == nil {
			continue
		}
		q = q.Where(p.expr, p.args...)
	}
	return q
}
