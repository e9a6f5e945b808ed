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

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/memberquery/database/dbtest"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/repository"
	"github.com/tomoncle/memberquery/types"
	"github.com/uptrace/bun"
)

// insertTeams stores the teams and returns them with their ids set.
func insertTeams(t *testing.T, db bun.IDB, names ...string) []*model.Team {
	t.Helper()
	teams := make([]*model.Team, 0, len(names))
	for _, name := range names {
		teams = append(teams, &model.Team{Name: name})
	}
	require.NoError(t, repository.NewRepository[model.Team](db).Create(context.Background(), teams...))
	return teams
}

func insertMembers(t *testing.T, db bun.IDB, members ...*model.Member) {
	t.Helper()
	require.NoError(t, repository.NewRepository[model.Member](db).Create(context.Background(), members...))
}

func TestModelAliasesMatchPaths(t *testing.T) {
	db := dbtest.OpenSQLite(t)

	member := db.Table(reflect.TypeOf(model.Member{}))
	assert.Equal(t, model.MemberTable, member.Name)
	assert.Equal(t, query.QMember.Alias, member.Alias)

	team := db.Table(reflect.TypeOf(model.Team{}))
	assert.Equal(t, model.TeamTable, team.Name)
	assert.Equal(t, query.QTeam.Alias, team.Alias)
}

func TestRepositoryCrud(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	teams := insertTeams(t, db, "teamA", "teamB")
	require.NotZero(t, teams[0].ID)
	require.NotZero(t, teams[1].ID)

	repo := repository.NewRepository[model.Member](db)
	kim := model.NewMember("kim", 31, teams[0])
	require.NoError(t, repo.Create(ctx, kim, model.NewMember("lee", 25, nil)))
	require.NotZero(t, kim.ID)

	got, err := repo.GetOne(ctx, kim.ID)
	require.NoError(t, err)
	assert.Equal(t, "kim", got.Username)
	require.NotNil(t, got.TeamID)
	assert.Equal(t, teams[0].ID, *got.TeamID)

	_, err = repo.GetOne(ctx, int64(999))
	assert.ErrorIs(t, err, sql.ErrNoRows)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got.ChangeTeam(teams[1])
	require.NoError(t, repo.Update(ctx, got))

	inB, err := repo.List(ctx, query.QMember.TeamID.Eq(teams[1].ID))
	require.NoError(t, err)
	require.Len(t, inB, 1)
	assert.Equal(t, "kim", inB[0].Username)

	n, err := repo.Count(ctx, query.QMember.TeamID.IsNull())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, repo.Create(ctx))
}

func TestRepositoryPage(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)

	members := make([]*model.Member, 0, 12)
	for i := 0; i < 12; i++ {
		members = append(members, model.NewMember("", i, nil))
	}
	insertMembers(t, db, members...)

	repo := repository.NewRepository[model.Member](db)
	page, err := repo.Page(ctx, types.NewPageRequest(2, 4, query.QMember.Age.Goe(3), query.QMember.Age.Desc()))
	require.NoError(t, err)
	assert.Equal(t, 9, page.Total)
	assert.Equal(t, 2, page.Offset)
	assert.Equal(t, 4, page.Limit)
	require.Len(t, page.Items, 4)
	assert.Equal(t, []int{9, 8, 7, 6}, ages(page.Items))

	empty, err := repo.Page(ctx, types.NewPageRequest(0, 4, query.QMember.Age.Gt(100)))
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Items)
}

func TestCreateWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	repo := repository.NewRepository[model.Team](db)

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		require.NoError(t, repo.CreateWithTx(ctx, tx, &model.Team{Name: "teamA"}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

var errAbort = errors.New("abort")

func ages(members []*model.Member) []int {
	out := make([]int, 0, len(members))
	for _, m := range members {
		out = append(out, m.Age)
	}
	return out
}
