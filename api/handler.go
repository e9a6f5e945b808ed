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
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/memberquery"
	"github.com/tomoncle/memberquery/database"
)

// HealthFunc reports the database health for /health.
type HealthFunc func(ctx context.Context) *database.HealthStatus

type Handler struct {
	Members        memberquery.MemberService
	Health         HealthFunc
	Log            *logrus.Logger
	AllowedOrigins []string
}

func NewHandler(members memberquery.MemberService, health HealthFunc, log *logrus.Logger, allowedOrigins []string) *Handler {
	return &Handler{
		Members:        members,
		Health:         health,
		Log:            log,
		AllowedOrigins: allowedOrigins,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	if len(h.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.handleMemberSearch)
			r.Get("/page", h.handleMemberPage)
			r.Get("/{id}", h.handleMemberGet)
		})
		r.Get("/teams/{id}/members", h.handleTeamMembers)
		r.Route("/stats", func(r chi.Router) {
			r.Get("/ages", h.handleAgeStats)
			r.Get("/teams", h.handleTeamAverageAges)
		})
	})

	return r
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, handlerName string, err error) {
	appErr := toAppError(err)

	entry := h.Log.WithFields(logrus.Fields{
		"handler": handlerName,
		"code":    appErr.Code,
	})
	if appErr.Err != nil {
		entry = entry.WithError(appErr.Err)
		if is, kind := database.IsSqlError(appErr.Err); is {
			entry = entry.WithField("sql_error", kind.String())
		}
	}
	if appErr.Status >= http.StatusInternalServerError {
		entry.Error(appErr.Message)
	} else {
		entry.Warn(appErr.Message)
	}

	resp := errorResponse{}
	resp.Error.Code = appErr.Code
	resp.Error.Message = appErr.Message
	h.writeJSON(w, appErr.Status, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.Health == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Health(ctx)
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, status)
}
