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

// Package model declares the persisted entities and the read-only rows
// produced by member queries.
package model

import (
	"github.com/tomoncle/memberquery/database"
	"github.com/uptrace/bun"
)

const (
	TeamTable   = "teams"
	MemberTable = "members"
)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Team)(nil), 1))
	database.RegisteredModel(database.NewModelAdapter((*Member)(nil), 2,
		"(team_id) REFERENCES teams (id) ON DELETE SET NULL"))
}

// Team groups members. Team names are not unique.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

// Member optionally belongs to one team. The team is a lookup reference:
// members of a team are recovered by query, not kept on Team.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Username string `bun:"username,nullzero" json:"username"`
	Age      int    `bun:"age,notnull" json:"age"`
	TeamID   *int64 `bun:"team_id" json:"teamId"`
	Team     *Team  `bun:"rel:belongs-to,join:team_id=id" json:"team,omitempty"`
}

// NewMember returns a member assigned to team, which may be nil.
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{Username: username, Age: age}
	m.ChangeTeam(team)
	return m
}

// ChangeTeam moves the member to team, or detaches it when team is nil.
func (m *Member) ChangeTeam(team *Team) {
	m.Team = team
	if team == nil {
		m.TeamID = nil
		return
	}
	id := team.ID
	m.TeamID = &id
}

// MemberTeamDto is the flattened member search row.
type MemberTeamDto struct {
	MemberID int64   `bun:"member_id" json:"memberId"`
	Username string  `bun:"username" json:"username"`
	Age      int     `bun:"age" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"teamId"`
	TeamName *string `bun:"team_name" json:"teamName"`
}

// AgeStats aggregates member ages.
type AgeStats struct {
	Count int64   `bun:"count" json:"count"`
	Sum   int64   `bun:"sum" json:"sum"`
	Avg   float64 `bun:"avg" json:"avg"`
	Max   int     `bun:"max" json:"max"`
	Min   int     `bun:"min" json:"min"`
}

// TeamAgeAverage is the average member age of one team name.
type TeamAgeAverage struct {
	TeamName string  `bun:"team_name" json:"teamName"`
	AvgAge   float64 `bun:"avg_age" json:"avgAge"`
}
