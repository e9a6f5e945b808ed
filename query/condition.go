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
)

// MemberSearchCondition holds the optional member search criteria. A blank
// Username or TeamName and a nil age bound mean "do not filter".
//
// Treat it as a value: the With* methods return modified copies and never
// share the age pointers with the receiver.
type MemberSearchCondition struct {
	Username string
	TeamName string
	AgeGoe   *int
	AgeLoe   *int
}

func (c MemberSearchCondition) WithUsername(username string) MemberSearchCondition {
	c.Username = username
	return c
}

func (c MemberSearchCondition) WithTeamName(teamName string) MemberSearchCondition {
	c.TeamName = teamName
	return c
}

func (c MemberSearchCondition) WithAgeGoe(age int) MemberSearchCondition {
	c.AgeGoe = &age
	return c
}

func (c MemberSearchCondition) WithAgeLoe(age int) MemberSearchCondition {
	c.AgeLoe = &age
	return c
}

// IsEmpty reports whether the condition constrains nothing.
func (c MemberSearchCondition) IsEmpty() bool {
	return c.Predicate() == nil
}

// Predicates returns one fragment per criterion, nil where the criterion is
// absent. The slice is meant for Where, which skips the nil items.
func (c MemberSearchCondition) Predicates() []*Predicate {
	return []*Predicate{
		UsernameEq(c.Username),
		TeamNameEq(c.TeamName),
		AgeGoe(c.AgeGoe),
		AgeLoe(c.AgeLoe),
	}
}

// Predicate returns the criteria joined with AND, or nil when none is set.
func (c MemberSearchCondition) Predicate() *Predicate {
	return And(c.Predicates()...)
}

// UsernameEq matches members by exact username. A blank name is no constraint.
func UsernameEq(username string) *Predicate {
	if !hasText(username) {
		return nil
	}
	return QMember.Username.Eq(username)
}

// TeamNameEq matches members by exact team name. The team table must be
// joined under QTeam's alias; a blank name is no constraint.
func TeamNameEq(teamName string) *Predicate {
	if !hasText(teamName) {
		return nil
	}
	return QTeam.Name.Eq(teamName)
}

// AgeGoe matches members with age >= *ageGoe.
func AgeGoe(ageGoe *int) *Predicate {
	if ageGoe == nil {
		return nil
	}
	return QMember.Age.Goe(*ageGoe)
}

// AgeLoe matches members with age <= *ageLoe.
func AgeLoe(ageLoe *int) *Predicate {
	if ageLoe == nil {
		return nil
	}
	return QMember.Age.Loe(*ageLoe)
}

// AgeBetween matches ages in [*ageGoe, *ageLoe]. Either bound may be nil.
func AgeBetween(ageGoe, ageLoe *int) *Predicate {
	return AgeGoe(ageGoe).And(AgeLoe(ageLoe))
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
