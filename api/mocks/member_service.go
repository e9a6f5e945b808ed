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

// Package mocks holds testify mocks of the service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/types"
)

// MemberService is a mock of memberquery.MemberService.
type MemberService struct {
	mock.Mock
}

func (m *MemberService) Search(ctx context.Context, cond query.MemberSearchCondition) ([]*model.MemberTeamDto, error) {
	args := m.Called(ctx, cond)
	rows, _ := args.Get(0).([]*model.MemberTeamDto)
	return rows, args.Error(1)
}

func (m *MemberService) SearchPage(ctx context.Context, cond query.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeamDto], error) {
	args := m.Called(ctx, cond, page)
	result, _ := args.Get(0).(*types.Pagination[model.MemberTeamDto])
	return result, args.Error(1)
}

func (m *MemberService) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	args := m.Called(ctx, id)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func (m *MemberService) TeamMembers(ctx context.Context, teamID int64) ([]*model.Member, error) {
	args := m.Called(ctx, teamID)
	members, _ := args.Get(0).([]*model.Member)
	return members, args.Error(1)
}

func (m *MemberService) AgeStats(ctx context.Context) (*model.AgeStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*model.AgeStats)
	return stats, args.Error(1)
}

func (m *MemberService) TeamAverageAges(ctx context.Context) ([]*model.TeamAgeAverage, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]*model.TeamAgeAverage)
	return rows, args.Error(1)
}
