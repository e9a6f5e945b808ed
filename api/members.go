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

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/types"
)

// sortKeys maps the sort fields accepted by /v1/members/page to paths.
// teamName is nullable, so members without a team always sort last.
var sortKeys = map[string]func(desc bool) query.Order{
	"memberId": func(desc bool) query.Order { return direction(query.QMember.ID.Asc(), query.QMember.ID.Desc(), desc) },
	"username": func(desc bool) query.Order {
		return direction(query.QMember.Username.Asc(), query.QMember.Username.Desc(), desc).NullsLast()
	},
	"age": func(desc bool) query.Order { return direction(query.QMember.Age.Asc(), query.QMember.Age.Desc(), desc) },
	"teamName": func(desc bool) query.Order {
		return direction(query.QTeam.Name.Asc(), query.QTeam.Name.Desc(), desc).NullsLast()
	},
}

func direction(asc, desc query.Order, descending bool) query.Order {
	if descending {
		return desc
	}
	return asc
}

// searchCondition reads username, teamName, ageGoe and ageLoe. A parameter
// that is missing, blank, or not an integer imposes no constraint.
func searchCondition(values url.Values) query.MemberSearchCondition {
	cond := query.MemberSearchCondition{
		Username: values.Get("username"),
		TeamName: values.Get("teamName"),
	}
	if n, ok := optionalInt(values.Get("ageGoe")); ok {
		cond = cond.WithAgeGoe(n)
	}
	if n, ok := optionalInt(values.Get("ageLoe")); ok {
		cond = cond.WithAgeLoe(n)
	}
	return cond
}

func optionalInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// pageRequest reads offset, limit and repeated sort=field[,asc|desc]
// parameters. Unlike the search criteria these are rejected when malformed.
func pageRequest(values url.Values) (*types.PageRequest, error) {
	offset := 0
	if s := values.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, ErrBadRequest("offset must be a non-negative integer")
		}
		offset = n
	}

	limit := types.DefaultLimit
	if s := values.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > types.MaxLimit {
			return nil, ErrBadRequest(fmt.Sprintf("limit must be an integer between 1 and %d", types.MaxLimit))
		}
		limit = n
	}

	orders := make([]query.Order, 0, len(values["sort"]))
	for _, s := range values["sort"] {
		field, dir, _ := strings.Cut(s, ",")
		key, ok := sortKeys[strings.TrimSpace(field)]
		if !ok {
			return nil, ErrBadRequest(fmt.Sprintf("unknown sort field %q", field))
		}
		var desc bool
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return nil, ErrBadRequest(fmt.Sprintf("unknown sort direction %q", dir))
		}
		orders = append(orders, key(desc))
	}

	return types.NewPageRequest(offset, limit, nil, orders...), nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, ErrBadRequest("id must be a positive integer")
	}
	return id, nil
}

func (h *Handler) handleMemberSearch(w http.ResponseWriter, r *http.Request) {
	const handlerName = "member_search"

	rows, err := h.Members.Search(r.Context(), searchCondition(r.URL.Query()))
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleMemberPage(w http.ResponseWriter, r *http.Request) {
	const handlerName = "member_page"

	values := r.URL.Query()
	page, err := pageRequest(values)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	result, err := h.Members.SearchPage(r.Context(), searchCondition(values), page)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleMemberGet(w http.ResponseWriter, r *http.Request) {
	const handlerName = "member_get"

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	member, err := h.Members.GetMember(r.Context(), id)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, member)
}

func (h *Handler) handleTeamMembers(w http.ResponseWriter, r *http.Request) {
	const handlerName = "team_members"

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	members, err := h.Members.TeamMembers(r.Context(), id)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, members)
}

func (h *Handler) handleAgeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Members.AgeStats(r.Context())
	if err != nil {
		h.writeError(w, "age_stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleTeamAverageAges(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Members.TeamAverageAges(r.Context())
	if err != nil {
		h.writeError(w, "team_average_ages", err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}
