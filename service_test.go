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

package memberquery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/memberquery"
	"github.com/tomoncle/memberquery/database/dbtest"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/seed"
	"github.com/tomoncle/memberquery/types"
)

func newSeededService(t *testing.T) memberquery.MemberService {
	t.Helper()
	db := dbtest.OpenSQLite(t)
	require.NoError(t, seed.InitMembers(context.Background(), db))
	return memberquery.NewMemberService(db)
}

func TestMemberService_Search(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)

	rows, err := svc.Search(ctx, query.MemberSearchCondition{TeamName: "teamB"}.WithAgeGoe(31).WithAgeLoe(35))
	require.NoError(t, err)

	var ages []int
	for _, r := range rows {
		ages = append(ages, r.Age)
		require.NotNil(t, r.TeamName)
		assert.Equal(t, "teamB", *r.TeamName)
	}
	assert.ElementsMatch(t, []int{31, 33, 35}, ages)
}

func TestMemberService_SearchPage(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)

	page := types.NewPageRequest(2, 3, nil, query.QMember.Age.Desc())
	result, err := svc.SearchPage(ctx, query.MemberSearchCondition{TeamName: "teamA"}, page)
	require.NoError(t, err)

	assert.Equal(t, 50, result.Total)
	require.Len(t, result.Items, 3)
	assert.Equal(t, []int{94, 92, 90}, []int{result.Items[0].Age, result.Items[1].Age, result.Items[2].Age})
}

func TestMemberService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)

	member, err := svc.GetMember(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, member.Team)
	assert.Equal(t, "member0", member.Username)
	assert.Equal(t, "teamA", member.Team.Name)

	_, err = svc.GetMember(ctx, 10_000)
	assert.True(t, errors.Is(err, memberquery.ErrNotFound))

	members, err := svc.TeamMembers(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, members, 50)

	_, err = svc.TeamMembers(ctx, 99)
	assert.True(t, errors.Is(err, memberquery.ErrNotFound))
}

func TestMemberService_Stats(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)

	stats, err := svc.AgeStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 100, stats.Count)
	assert.EqualValues(t, 4950, stats.Sum)
	assert.Equal(t, 0, stats.Min)
	assert.Equal(t, 99, stats.Max)
	assert.InDelta(t, 49.5, stats.Avg, 1e-9)

	teams, err := svc.TeamAverageAges(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "teamA", teams[0].TeamName)
	assert.InDelta(t, 49.0, teams[0].AvgAge, 1e-9)
	assert.Equal(t, "teamB", teams[1].TeamName)
	assert.InDelta(t, 50.0, teams[1].AvgAge, 1e-9)
}
