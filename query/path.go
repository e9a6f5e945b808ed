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

// Number is the set of Go types a NumberPath can compare against.
type Number interface {
	~int | ~int32 | ~int64 | ~float64
}

// StringPath is a text column qualified by its table alias.
type StringPath struct {
	col string
}

// NewStringPath returns a path for alias.column.
func NewStringPath(alias, column string) StringPath {
	return StringPath{col: qualify(alias, column)}
}

// Ident returns the quoted column identifier for use in ColumnExpr.
func (p StringPath) Ident() bun.Ident { return bun.Ident(p.col) }

func (p StringPath) Eq(v string) *Predicate { return newPredicate("? = ?", p.Ident(), v) }

func (p StringPath) Ne(v string) *Predicate { return newPredicate("? <> ?", p.Ident(), v) }

// In matches any of vs. An empty list matches nothing.
func (p StringPath) In(vs ...string) *Predicate {
	if len(vs) == 0 {
		return newPredicate("1 = 0")
	}
	return newPredicate("? IN (?)", p.Ident(), bun.In(vs))
}

// EqColumn compares two columns, as in a theta join.
func (p StringPath) EqColumn(other StringPath) *Predicate {
	return newPredicate("? = ?", p.Ident(), other.Ident())
}

func (p StringPath) IsNull() *Predicate { return newPredicate("? IS NULL", p.Ident()) }

func (p StringPath) IsNotNull() *Predicate { return newPredicate("? IS NOT NULL", p.Ident()) }

func (p StringPath) Asc() Order { return Order{col: p.col, dir: "ASC"} }

func (p StringPath) Desc() Order { return Order{col: p.col, dir: "DESC"} }

// NumberPath is a numeric column qualified by its table alias.
type NumberPath[N Number] struct {
	col string
}

// NewNumberPath returns a path for alias.column.
func NewNumberPath[N Number](alias, column string) NumberPath[N] {
	return NumberPath[N]{col: qualify(alias, column)}
}

// Ident returns the quoted column identifier for use in ColumnExpr.
func (p NumberPath[N]) Ident() bun.Ident { return bun.Ident(p.col) }

func (p NumberPath[N]) Eq(v N) *Predicate { return newPredicate("? = ?", p.Ident(), v) }

func (p NumberPath[N]) Ne(v N) *Predicate { return newPredicate("? <> ?", p.Ident(), v) }

func (p NumberPath[N]) Gt(v N) *Predicate { return newPredicate("? > ?", p.Ident(), v) }

// Goe is "greater or equal".
func (p NumberPath[N]) Goe(v N) *Predicate { return newPredicate("? >= ?", p.Ident(), v) }

func (p NumberPath[N]) Lt(v N) *Predicate { return newPredicate("? < ?", p.Ident(), v) }

// Loe is "less or equal".
func (p NumberPath[N]) Loe(v N) *Predicate { return newPredicate("? <= ?", p.Ident(), v) }

// Between is inclusive on both ends. lo > hi matches nothing.
func (p NumberPath[N]) Between(lo, hi N) *Predicate {
	return newPredicate("? BETWEEN ? AND ?", p.Ident(), lo, hi)
}

// In matches any of vs. An empty list matches nothing.
func (p NumberPath[N]) In(vs ...N) *Predicate {
	if len(vs) == 0 {
		return newPredicate("1 = 0")
	}
	return newPredicate("? IN (?)", p.Ident(), bun.In(vs))
}

// EqQuery compares the column with a scalar subquery.
func (p NumberPath[N]) EqQuery(sub *bun.SelectQuery) *Predicate {
	return newPredicate("? = (?)", p.Ident(), sub)
}

// GoeQuery compares the column with a scalar subquery.
func (p NumberPath[N]) GoeQuery(sub *bun.SelectQuery) *Predicate {
	return newPredicate("? >= (?)", p.Ident(), sub)
}

// InQuery matches rows whose column value is produced by sub.
func (p NumberPath[N]) InQuery(sub *bun.SelectQuery) *Predicate {
	return newPredicate("? IN (?)", p.Ident(), sub)
}

func (p NumberPath[N]) IsNull() *Predicate { return newPredicate("? IS NULL", p.Ident()) }

func (p NumberPath[N]) IsNotNull() *Predicate { return newPredicate("? IS NOT NULL", p.Ident()) }

func (p NumberPath[N]) Asc() Order { return Order{col: p.col, dir: "ASC"} }

func (p NumberPath[N]) Desc() Order { return Order{col: p.col, dir: "DESC"} }

func qualify(alias, column string) string {
	if alias == "" {
		return column
	}
	return alias + "." + column
}

// MemberPaths exposes the filterable columns of the members table under one alias.
type MemberPaths struct {
	Alias    string
	ID       NumberPath[int64]
	Username StringPath
	Age      NumberPath[int]
	TeamID   NumberPath[int64]
}

// NewMemberPaths returns member paths bound to alias. Use a distinct alias
// when the members table appears twice, e.g. in a subquery.
func NewMemberPaths(alias string) MemberPaths {
	return MemberPaths{
		Alias:    alias,
		ID:       NewNumberPath[int64](alias, "id"),
		Username: NewStringPath(alias, "username"),
		Age:      NewNumberPath[int](alias, "age"),
		TeamID:   NewNumberPath[int64](alias, "team_id"),
	}
}

// TeamPaths exposes the filterable columns of the teams table under one alias.
type TeamPaths struct {
	Alias string
	ID    NumberPath[int64]
	Name  StringPath
}

// NewTeamPaths returns team paths bound to alias.
func NewTeamPaths(alias string) TeamPaths {
	return TeamPaths{
		Alias: alias,
		ID:    NewNumberPath[int64](alias, "id"),
		Name:  NewStringPath(alias, "name"),
	}
}

// Default aliases; they match the alias tags on model.Member and model.Team.
var (
	QMember = NewMemberPaths("m")
	QTeam   = NewTeamPaths("t")
)
