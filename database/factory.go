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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// BaseDatabaseFactory creates and owns a configured database manager.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{logger: GetLogger()}
}

// CreateFromConfig applies the DB_* environment overrides to cfg and builds
// a manager for it. The database type is checked before anything connects.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *ConnectionConfig) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	ApplyEnvOverrides(cfg)
	if _, err := lookupDriver(cfg.Type); err != nil {
		return nil, err
	}

	f.manager = NewDatabaseManager(cfg)
	f.manager.SetLogger(f.logger)
	return f.manager, nil
}

type envOverride struct {
	key string
	set func(cfg *ConnectionConfig, value string) error
}

var envOverrides = []envOverride{
	{"DB_TYPE", func(c *ConnectionConfig, v string) error { c.Type = strings.ToLower(v); return nil }},
	{"DB_HOST", func(c *ConnectionConfig, v string) error { c.Host = v; return nil }},
	{"DB_PORT", intOverride(func(c *ConnectionConfig) *int { return &c.Port })},
	{"DB_USERNAME", func(c *ConnectionConfig, v string) error { c.Username = v; return nil }},
	{"DB_PASSWORD", func(c *ConnectionConfig, v string) error { c.Password = v; return nil }},
	{"DB_NAME", func(c *ConnectionConfig, v string) error { c.DBName = v; return nil }},
	{"DB_SSLMODE", func(c *ConnectionConfig, v string) error { c.SSLMode = v; return nil }},
	{"DB_MAX_IDLE_CONNS", intOverride(func(c *ConnectionConfig) *int { return &c.MaxIdleConns })},
	{"DB_MAX_OPEN_CONNS", intOverride(func(c *ConnectionConfig) *int { return &c.MaxOpenConns })},
	{"DB_CONN_MAX_LIFETIME", durationOverride(time.Second, func(c *ConnectionConfig) *time.Duration { return &c.ConnMaxLifetime })},
	{"DB_ENABLE_QUERY_LOG", func(c *ConnectionConfig, v string) error {
		b, err := strconv.ParseBool(v)
		if err == nil {
			c.EnableQueryLog = b
		}
		return err
	}},
	{"DB_SLOW_QUERY_MS", durationOverride(time.Millisecond, func(c *ConnectionConfig) *time.Duration { return &c.SlowQueryTime })},
}

func intOverride(field func(*ConnectionConfig) *int) func(*ConnectionConfig, string) error {
	return func(c *ConnectionConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			*field(c) = n
		}
		return err
	}
}

// durationOverride reads a whole number of unit.
func durationOverride(unit time.Duration, field func(*ConnectionConfig) *time.Duration) func(*ConnectionConfig, string) error {
	return func(c *ConnectionConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			*field(c) = time.Duration(n) * unit
		}
		return err
	}
}

// ApplyEnvOverrides overrides connection settings from the non-empty DB_*
// environment variables. Unparsable values are logged and ignored.
func ApplyEnvOverrides(cfg *ConnectionConfig) {
	for _, o := range envOverrides {
		v := os.Getenv(o.key)
		if v == "" {
			continue
		}
		if err := o.set(cfg, v); err != nil {
			GetLogger().Warn("Ignoring invalid database environment override", "key", o.key, "error", err)
		}
	}
}

// InitializeDatabase connects and, when runMigrations is set, creates the
// registered tables.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, runMigrations bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if runMigrations {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.logger.Info("Database initialization completed", "migrations", runMigrations)
	return nil
}

func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the Bun database, or nil before CreateFromConfig.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{LastError: "Database manager not initialized", LastCheckTime: time.Now()}
	}
	return f.manager.HealthCheck(ctx)
}

func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
