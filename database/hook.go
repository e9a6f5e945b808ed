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

package database

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes the error and slow-query hooks, e.g. while
// bootstrap statements run.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

var (
	errorLabel = color.New(color.BgRed, color.FgHiWhite).SprintFunc()
	slowLabel  = color.New(color.BgYellow, color.FgHiWhite).SprintFunc()
)

// errorQueryHook logs failed statements. Empty results and finished
// transactions are not failures.
type errorQueryHook struct {
	logger Logger
}

var _ bun.QueryHook = (*errorQueryHook)(nil)

func (h *errorQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *errorQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() || event.Err == nil {
		return
	}
	if errors.Is(event.Err, sql.ErrNoRows) || errors.Is(event.Err, sql.ErrTxDone) {
		return
	}

	_, kind := IsSqlError(event.Err)
	h.logger.Error(errorLabel(" "+event.Operation()+" failed "),
		"error_type", reflect.TypeOf(event.Err).String(),
		"error", event.Err.Error(),
		"sql_error", kind.String(),
		"query", event.Query,
	)
}

// slowQueryHook warns about successful statements that ran longer than
// slowTime.
type slowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*slowQueryHook)(nil)

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() || event.Err != nil {
		return
	}

	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	h.logger.Warn(slowLabel(" slow "+event.Operation()+" "),
		"duration", duration.Round(time.Microsecond).String(),
		"threshold", h.slowTime.String(),
		"query", event.Query,
	)
}
