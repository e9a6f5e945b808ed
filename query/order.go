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
	"github.com/uptrace/bun"
)

type nullsOrder int

const (
	nullsDefault nullsOrder = iota
	nullsFirst
	nullsLast
)

// Order is one ORDER BY key built from a path.
type Order struct {
	col   string
	dir   string
	nulls nullsOrder
}

// NullsLast sorts NULL values after all others regardless of direction.
// It is rendered as an extra "col IS NULL" key so it behaves the same on
// every supported dialect.
func (o Order) NullsLast() Order {
	o.nulls = nullsLast
	return o
}

// NullsFirst sorts NULL values before all others regardless of direction.
func (o Order) NullsFirst() Order {
	o.nulls = nullsFirst
	return o
}

// Column returns the qualified column name of the key.
func (o Order) Column() string { return o.col }

// Descending reports whether the key sorts in descending order.
func (o Order) Descending() bool { return o.dir == "DESC" }

// OrderBy appends the keys to q in the given order.
func OrderBy(q *bun.SelectQuery, orders ...Order) *bun.SelectQuery {
	for _, o := range orders {
		ident := bun.Ident(o.col)
		switch o.nulls {
		case nullsLast:
			q = q.OrderExpr("? IS NULL ASC", ident)
		case nullsFirst:
			q = q.OrderExpr("? IS NULL DESC", ident)
		}
		if o.dir == "DESC" {
			q = q.OrderExpr("? DESC", ident)
		} else {
			q = q.OrderExpr("? ASC", ident)
		}
	}
	return q
}
