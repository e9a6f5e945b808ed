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

// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/memberquery/database"
	"github.com/uptrace/bun"
)

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	seq         atomic.Int64
)

// SQLiteConfig returns a config for a private in-memory SQLite database.
// One pooled connection that never expires keeps the database alive.
func SQLiteConfig(name string) *database.ConnectionConfig {
	cfg := database.DefaultConnectionConfig()
	cfg.DBName = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", unsafeChars.ReplaceAllString(name, "_"), seq.Add(1))
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.ConnMaxLifetime = 0
	cfg.ConnMaxIdleTime = 0
	cfg.HealthCheckInterval = 0
	cfg.SlowQueryTime = 0
	return cfg
}

// Open connects cfg, creates the registered tables and closes the
// connection when t finishes.
func Open(t testing.TB, cfg *database.ConnectionConfig) *bun.DB {
	t.Helper()
	ctx := context.Background()

	manager := database.NewDatabaseManager(cfg)
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))
	return manager.GetDB()
}

// OpenSQLite is Open over SQLiteConfig(t.Name()).
func OpenSQLite(t testing.TB) *bun.DB {
	t.Helper()
	return Open(t, SQLiteConfig(t.Name()))
}
