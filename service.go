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

package memberquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/repository"
	"github.com/tomoncle/memberquery/types"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a requested member or team does not exist.
var ErrNotFound = errors.New("not found")

// MemberService is the read facade used by the HTTP layer.
type MemberService interface {
	// Search returns the members matching every present criterion.
	Search(ctx context.Context, cond query.MemberSearchCondition) ([]*model.MemberTeamDto, error)

	// SearchPage returns one ordered window of the search.
	SearchPage(ctx context.Context, cond query.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error)

	// GetMember returns a member with its team.
	GetMember(ctx context.Context, id int64) (*model.Member, error)

	// TeamMembers returns the members of a team.
	TeamMembers(ctx context.Context, teamID int64) ([]*model.Member, error)

	// AgeStats aggregates all member ages.
	AgeStats(ctx context.Context) (*model.AgeStats, error)

	// TeamAverageAges returns the average age per team name.
	TeamAverageAges(ctx context.Context) ([]*model.TeamAgeAverage, error)
}

type memberServiceImpl struct {
	members *repository.MemberQueryRepository
	teams   *repository.TeamRepository
}

// NewMemberService returns a MemberService reading through db.
func NewMemberService(db bun.IDB) MemberService {
	return &memberServiceImpl{
		members: repository.NewMemberQueryRepository(db),
		teams:   repository.NewTeamRepository(db),
	}
}

func (s *memberServiceImpl) Search(ctx context.Context, cond query.MemberSearchCondition) ([]*model.MemberTeamDto, error) {
	rows, err := s.members.Search(ctx, cond)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	return rows, nil
}

func (s *memberServiceImpl) SearchPage(ctx context.Context, cond query.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	result, err := s.members.SearchPage(ctx, cond, page)
	if err != nil {
		return nil, fmt.Errorf("search members page: %w", err)
	}
	return result, nil
}

func (s *memberServiceImpl) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	member, err := s.members.GetWithTeam(ctx, id)
	if err != nil {
		return nil, notFound(err, "member %d", id)
	}
	return member, nil
}

func (s *memberServiceImpl) TeamMembers(ctx context.Context, teamID int64) ([]*model.Member, error) {
	members, err := s.teams.Members(ctx, teamID)
	if err != nil {
		return nil, notFound(err, "team %d", teamID)
	}
	return members, nil
}

func (s *memberServiceImpl) AgeStats(ctx context.Context) (*model.AgeStats, error) {
	stats, err := s.members.AgeStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("member age stats: %w", err)
	}
	return stats, nil
}

func (s *memberServiceImpl) TeamAverageAges(ctx context.Context) ([]*model.TeamAgeAverage, error) {
	rows, err := s.members.TeamAverageAges(ctx)
	if err != nil {
		return nil, fmt.Errorf("team average ages: %w", err)
	}
	return rows, nil
}

// notFound translates sql.ErrNoRows into ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...interface{}) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
