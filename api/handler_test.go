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

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/memberquery"
	"github.com/tomoncle/memberquery/api"
	"github.com/tomoncle/memberquery/api/mocks"
	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/database/dbtest"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/types"
)

func newLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func serve(h *api.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error.Code
}

func TestHandler_MemberSearch(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		cond           query.MemberSearchCondition
		err            error
		expectedStatus int
	}{
		{
			name:           "no parameters",
			target:         "/v1/members",
			cond:           query.MemberSearchCondition{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "all parameters",
			target:         "/v1/members?username=member1&teamName=teamA&ageGoe=10&ageLoe=40",
			cond:           query.MemberSearchCondition{Username: "member1", TeamName: "teamA"}.WithAgeGoe(10).WithAgeLoe(40),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unparsable ages are absent",
			target:         "/v1/members?teamName=teamB&ageGoe=abc&ageLoe=",
			cond:           query.MemberSearchCondition{TeamName: "teamB"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "store failure",
			target:         "/v1/members",
			cond:           query.MemberSearchCondition{},
			err:            errors.New("database is locked"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MemberService)
			rows := []*model.MemberTeamDto{
				{MemberID: 1, Username: "member1", Age: 10, TeamID: int64Ptr(1), TeamName: strPtr("teamA")},
			}
			if tt.err != nil {
				svc.On("Search", mock.Anything, tt.cond).Return(nil, tt.err)
			} else {
				svc.On("Search", mock.Anything, tt.cond).Return(rows, nil)
			}

			w := serve(api.NewHandler(svc, nil, newLogger(), nil), tt.target)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.err == nil {
				assert.JSONEq(t, `[{"memberId":1,"username":"member1","age":10,"teamId":1,"teamName":"teamA"}]`, w.Body.String())
			} else {
				assert.Equal(t, "INTERNAL", errorCode(t, w))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_MemberSearchNullTeam(t *testing.T) {
	svc := new(mocks.MemberService)
	svc.On("Search", mock.Anything, query.MemberSearchCondition{}).
		Return([]*model.MemberTeamDto{{MemberID: 5, Username: "loner", Age: 50}}, nil)

	w := serve(api.NewHandler(svc, nil, newLogger(), nil), "/v1/members")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"memberId":5,"username":"loner","age":50,"teamId":null,"teamName":null}]`, w.Body.String())
}

func TestHandler_MemberPage(t *testing.T) {
	page := &types.Pagination[model.MemberTeamDto]{Offset: 5, Limit: 2, Total: 9, Items: []*model.MemberTeamDto{}}

	t.Run("valid request", func(t *testing.T) {
		svc := new(mocks.MemberService)
		svc.On("SearchPage", mock.Anything, query.MemberSearchCondition{TeamName: "teamA"},
			mock.MatchedBy(func(p *types.PageRequest) bool {
				orders := p.GetOrders()
				return p.GetOffset() == 5 && p.GetLimit() == 2 && len(orders) == 2 &&
					orders[0].Column() == "m.age" && orders[0].Descending() &&
					orders[1].Column() == "t.name" && !orders[1].Descending()
			})).Return(page, nil)

		w := serve(api.NewHandler(svc, nil, newLogger(), nil),
			"/v1/members/page?teamName=teamA&offset=5&limit=2&sort=age,desc&sort=teamName")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"offset":5,"limit":2,"total":9,"items":[]}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	for _, target := range []string{
		"/v1/members/page?offset=-1",
		"/v1/members/page?limit=0",
		"/v1/members/page?limit=5000",
		"/v1/members/page?limit=ten",
		"/v1/members/page?sort=height",
		"/v1/members/page?sort=age,sideways",
	} {
		t.Run(target, func(t *testing.T) {
			svc := new(mocks.MemberService)
			w := serve(api.NewHandler(svc, nil, newLogger(), nil), target)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "BAD_REQUEST", errorCode(t, w))
			svc.AssertNotCalled(t, "SearchPage", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_MemberGet(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		mockBehavior   func(s *mocks.MemberService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "found",
			target: "/v1/members/7",
			mockBehavior: func(s *mocks.MemberService) {
				s.On("GetMember", mock.Anything, int64(7)).
					Return(&model.Member{ID: 7, Username: "member7", Age: 7, TeamID: int64Ptr(2), Team: &model.Team{ID: 2, Name: "teamB"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "missing",
			target: "/v1/members/404",
			mockBehavior: func(s *mocks.MemberService) {
				s.On("GetMember", mock.Anything, int64(404)).
					Return(nil, fmt.Errorf("member 404: %w", memberquery.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "bad id",
			target:         "/v1/members/abc",
			mockBehavior:   func(s *mocks.MemberService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MemberService)
			tt.mockBehavior(svc)

			w := serve(api.NewHandler(svc, nil, newLogger(), nil), tt.target)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			} else {
				assert.JSONEq(t, `{"id":7,"username":"member7","age":7,"teamId":2,"team":{"id":2,"name":"teamB"}}`, w.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_TeamMembers(t *testing.T) {
	svc := new(mocks.MemberService)
	svc.On("TeamMembers", mock.Anything, int64(1)).
		Return([]*model.Member{{ID: 1, Username: "member0", Age: 0, TeamID: int64Ptr(1)}}, nil)
	svc.On("TeamMembers", mock.Anything, int64(3)).
		Return(nil, fmt.Errorf("team 3: %w", memberquery.ErrNotFound))
	h := api.NewHandler(svc, nil, newLogger(), nil)

	w := serve(h, "/v1/teams/1/members")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"username":"member0","age":0,"teamId":1}]`, w.Body.String())

	w = serve(h, "/v1/teams/3/members")
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Stats(t *testing.T) {
	svc := new(mocks.MemberService)
	svc.On("AgeStats", mock.Anything).
		Return(&model.AgeStats{Count: 4, Sum: 100, Avg: 25, Max: 40, Min: 10}, nil)
	svc.On("TeamAverageAges", mock.Anything).
		Return([]*model.TeamAgeAverage{{TeamName: "teamA", AvgAge: 15}, {TeamName: "teamB", AvgAge: 35}}, nil)
	h := api.NewHandler(svc, nil, newLogger(), nil)

	w := serve(h, "/v1/stats/ages")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":4,"sum":100,"avg":25,"max":40,"min":10}`, w.Body.String())

	w = serve(h, "/v1/stats/teams")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"teamName":"teamA","avgAge":15},{"teamName":"teamB","avgAge":35}]`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestHandler_StatsOnEmptyDatabase(t *testing.T) {
	svc := memberquery.NewMemberService(dbtest.OpenSQLite(t))
	h := api.NewHandler(svc, nil, newLogger(), nil)

	w := serve(h, "/v1/stats/ages")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0,"sum":0,"avg":0,"max":0,"min":0}`, w.Body.String())

	w = serve(h, "/v1/stats/teams")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandler_Health(t *testing.T) {
	healthy := func(ctx context.Context) *database.HealthStatus {
		return &database.HealthStatus{Healthy: true, Connected: true}
	}
	down := func(ctx context.Context) *database.HealthStatus {
		return &database.HealthStatus{LastError: "Database not initialized"}
	}

	w := serve(api.NewHandler(new(mocks.MemberService), healthy, newLogger(), nil), "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(api.NewHandler(new(mocks.MemberService), down, newLogger(), nil), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(api.NewHandler(new(mocks.MemberService), nil, newLogger(), nil), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandler_CORS(t *testing.T) {
	h := api.NewHandler(new(mocks.MemberService), nil, newLogger(), []string{"https://example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/v1/members", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)

	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggerFields(t *testing.T) {
	l, hook := test.NewNullLogger()
	svc := new(mocks.MemberService)
	svc.On("AgeStats", mock.Anything).Return(&model.AgeStats{}, nil)

	serve(api.NewHandler(svc, nil, l, nil), "/v1/stats/ages")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, http.MethodGet, entry.Data["req_method"])
	assert.Equal(t, "/v1/stats/ages", entry.Data["req_uri"])
	assert.Equal(t, http.StatusOK, entry.Data["status_code"])
	assert.NotEmpty(t, entry.Data["latency_time"])
}
