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

package repository

import (
	"context"

	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/types"

	"github.com/uptrace/bun"
)

var (
	qMember = query.QMember
	qTeam   = query.QTeam
	// qSub aliases members inside subqueries so the outer m stays unambiguous.
	qSub = query.NewMemberPaths("ms")
)

// MemberQueryRepository runs member searches that join teams, plus the
// aggregate and subquery reports built on the same paths.
type MemberQueryRepository struct {
	Repository[model.Member]
	db bun.IDB
}

func NewMemberQueryRepository(db bun.IDB) *MemberQueryRepository {
	return &MemberQueryRepository{
		Repository: NewRepository[model.Member](db),
		db:         db,
	}
}

// projection selects the MemberTeamDto columns. Teams are LEFT JOINed so a
// member without a team is still a candidate.
func (r *MemberQueryRepository) projection() *bun.SelectQuery {
	return r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("? AS member_id", qMember.ID.Ident()).
		ColumnExpr("?", qMember.Username.Ident()).
		ColumnExpr("?", qMember.Age.Ident()).
		ColumnExpr("? AS team_id", qTeam.ID.Ident()).
		ColumnExpr("? AS team_name", qTeam.Name.Ident()).
		Join("LEFT JOIN ? AS ? ON ? = ?",
			bun.Ident(model.TeamTable), bun.Ident(qTeam.Alias), qTeam.ID.Ident(), qMember.TeamID.Ident())
}

// Search applies each present criterion as its own WHERE item. Rows come
// back in no particular order.
func (r *MemberQueryRepository) Search(ctx context.Context, cond query.MemberSearchCondition) ([]*model.MemberTeamDto, error) {
	return r.scan(ctx, query.Where(r.projection(), cond.Predicates()...))
}

// SearchByBuilder applies the criteria as one pre-joined predicate. It
// returns the same rows as Search for every condition.
func (r *MemberQueryRepository) SearchByBuilder(ctx context.Context, cond query.MemberSearchCondition) ([]*model.MemberTeamDto, error) {
	return r.scan(ctx, query.Where(r.projection(), cond.Predicate()))
}

// SearchWith is Search with explicit ordering.
func (r *MemberQueryRepository) SearchWith(ctx context.Context, cond query.MemberSearchCondition, orders ...query.Order) ([]*model.MemberTeamDto, error) {
	q := query.Where(r.projection(), cond.Predicates()...)
	return r.scan(ctx, query.OrderBy(q, orders...))
}

// SearchPage returns one window of the search. The filter of page is
// conjoined with cond. Without orders the window follows member id.
func (r *MemberQueryRepository) SearchPage(ctx context.Context, cond query.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	filter := query.And(cond.Predicate(), page.GetFilter())
	pagination := types.NewDefaultPagination[model.MemberTeamDto](page.GetOffset(), page.GetLimit())

	total, err := query.Where(r.projection(), filter).Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}

	orders := page.GetOrders()
	if len(orders) == 0 {
		orders = []query.Order{qMember.ID.Asc()}
	}
	q := query.OrderBy(query.Where(r.projection(), filter), orders...).
		Offset(page.GetOffset()).
		Limit(page.GetLimit())
	items, err := r.scan(ctx, q)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = items
	return pagination, nil
}

func (r *MemberQueryRepository) scan(ctx context.Context, q *bun.SelectQuery) ([]*model.MemberTeamDto, error) {
	rows := make([]*model.MemberTeamDto, 0)
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// AgeStats returns count, sum, average, maximum and minimum of all member
// ages. Over an empty table every figure is zero. The avg fallback is a
// real literal so SQLite still returns a float for the empty case.
func (r *MemberQueryRepository) AgeStats(ctx context.Context) (*model.AgeStats, error) {
	age := qMember.Age.Ident()
	var stats model.AgeStats
	err := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("count(*) AS ?", bun.Ident("count")).
		ColumnExpr("coalesce(sum(?), 0) AS ?", age, bun.Ident("sum")).
		ColumnExpr("coalesce(avg(?), 0.0) AS ?", age, bun.Ident("avg")).
		ColumnExpr("coalesce(max(?), 0) AS ?", age, bun.Ident("max")).
		ColumnExpr("coalesce(min(?), 0) AS ?", age, bun.Ident("min")).
		Scan(ctx, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// TeamAverageAges groups members by team name. Members without a team are
// left out by the inner join.
func (r *MemberQueryRepository) TeamAverageAges(ctx context.Context) ([]*model.TeamAgeAverage, error) {
	rows := make([]*model.TeamAgeAverage, 0)
	err := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("? AS team_name", qTeam.Name.Ident()).
		ColumnExpr("avg(?) AS avg_age", qMember.Age.Ident()).
		Join("JOIN ? AS ? ON ? = ?",
			bun.Ident(model.TeamTable), bun.Ident(qTeam.Alias), qTeam.ID.Ident(), qMember.TeamID.Ident()).
		GroupExpr("?", qTeam.Name.Ident()).
		OrderExpr("? ASC", qTeam.Name.Ident()).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MemberQueryRepository) subquery() *bun.SelectQuery {
	return r.db.NewSelect().TableExpr("? AS ?", bun.Ident(model.MemberTable), bun.Ident(qSub.Alias))
}

// Oldest returns every member whose age equals the maximum age.
func (r *MemberQueryRepository) Oldest(ctx context.Context) ([]*model.Member, error) {
	maxAge := r.subquery().ColumnExpr("max(?)", qSub.Age.Ident())
	return r.List(ctx, qMember.Age.EqQuery(maxAge), qMember.ID.Asc())
}

// AtLeastAverageAge returns the members at or above the average age.
func (r *MemberQueryRepository) AtLeastAverageAge(ctx context.Context) ([]*model.Member, error) {
	avgAge := r.subquery().ColumnExpr("avg(?)", qSub.Age.Ident())
	return r.List(ctx, qMember.Age.GoeQuery(avgAge), qMember.ID.Asc())
}

// OlderThan selects members through an IN subquery over ages above age.
func (r *MemberQueryRepository) OlderThan(ctx context.Context, age int) ([]*model.Member, error) {
	ages := query.Where(r.subquery().ColumnExpr("?", qSub.Age.Ident()), qSub.Age.Gt(age))
	return r.List(ctx, qMember.Age.InQuery(ages), qMember.ID.Asc())
}

// GetWithTeam loads a member and its team in one query. Team is nil when
// the member has none.
func (r *MemberQueryRepository) GetWithTeam(ctx context.Context, id int64) (*model.Member, error) {
	var member model.Member
	err := r.db.NewSelect().
		Model(&member).
		Relation("Team").
		Where("? = ?", qMember.ID.Ident(), id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// TeamRepository reads teams and recovers a team's members on demand.
type TeamRepository struct {
	Repository[model.Team]
	members Repository[model.Member]
}

func NewTeamRepository(db bun.IDB) *TeamRepository {
	return &TeamRepository{
		Repository: NewRepository[model.Team](db),
		members:    NewRepository[model.Member](db),
	}
}

// Members returns the members of teamID ordered by id. It fails with
// sql.ErrNoRows when the team does not exist.
func (r *TeamRepository) Members(ctx context.Context, teamID int64) ([]*model.Member, error) {
	if _, err := r.GetOne(ctx, teamID); err != nil {
		return nil, err
	}
	return r.members.List(ctx, qMember.TeamID.Eq(teamID), qMember.ID.Asc())
}
