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
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	defaultConnectTimeout = 30 * time.Second
	healthPingTimeout     = 5 * time.Second
)

var errNotConnected = errors.New("database not connected")

type defaultDatabaseManager struct {
	config *ConnectionConfig
	logger Logger

	mu        sync.RWMutex
	db        *bun.DB
	sqlDB     *sql.DB
	connected bool

	stopHealthCheck chan struct{}
	healthCheckOnce sync.Once
	stopOnce        sync.Once
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun.
// A nil config means DefaultConnectionConfig.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &defaultDatabaseManager{
		config:          config,
		logger:          GetLogger(),
		stopHealthCheck: make(chan struct{}),
	}
}

// Connect opens the pool, verifies it with a ping bounded by the connect
// timeout and starts the periodic health check. Connecting twice is a no-op.
func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.db != nil {
		return nil
	}
	if dm.config.ConnectTimeout <= 0 {
		dm.config.ConnectTimeout = defaultConnectTimeout
	}

	db, err := dm.open()
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("database connection test failed: %w", err)
	}

	dm.db, dm.sqlDB = db, db.DB
	dm.connected = true

	if dm.config.HealthCheckInterval > 0 {
		dm.startHealthCheck()
	}

	dm.logger.Info("Database connected", "type", dm.config.Type, "host", dm.config.Host, "dbname", dm.config.DBName)
	return nil
}

// open builds the bun handle for the configured driver with its pool
// limits and query hooks applied.
func (dm *defaultDatabaseManager) open() (*bun.DB, error) {
	drv, err := lookupDriver(dm.config.Type)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(drv.name, drv.dsn(dm.config))
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)

	db := bun.NewDB(sqlDB, drv.dialect())
	for _, hook := range dm.queryHooks() {
		db.AddQueryHook(hook)
	}
	return db, nil
}

func (dm *defaultDatabaseManager) queryHooks() []bun.QueryHook {
	var hooks []bun.QueryHook
	if dm.config.EnableQueryLog {
		hooks = append(hooks, bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	hooks = append(hooks, &errorQueryHook{logger: dm.logger})
	if dm.config.SlowQueryTime > 0 {
		hooks = append(hooks, &slowQueryHook{slowTime: dm.config.SlowQueryTime, logger: dm.logger})
	}
	return hooks
}

// Disconnect stops the health check and closes the pool.
func (dm *defaultDatabaseManager) Disconnect() error {
	dm.stopOnce.Do(func() { close(dm.stopHealthCheck) })

	dm.mu.Lock()
	db := dm.db
	dm.db, dm.sqlDB = nil, nil
	dm.connected = false
	dm.mu.Unlock()

	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		dm.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	dm.logger.Info("Database connection closed")
	return nil
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return errNotConnected
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

// HealthCheck pings the database and reports the outcome together with a
// snapshot of the pool counters.
func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	db := dm.GetDB()
	if db == nil {
		return &HealthStatus{LastCheckTime: start, LastError: "Database not initialized"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	err := db.PingContext(pingCtx)

	status := &HealthStatus{
		LastCheckTime: start,
		ResponseTime:  time.Since(start),
		Healthy:       err == nil,
		Connected:     err == nil,
	}
	if err != nil {
		status.LastError = err.Error()
	}
	pool := db.DB.Stats()
	status.ActiveConns = pool.InUse
	status.IdleConns = pool.Idle
	status.MaxOpenConns = pool.MaxOpenConnections
	return status
}

// startHealthCheck pings on every tick and logs unhealthy results. It
// reports only; a failed ping is never retried or reconnected.
func (dm *defaultDatabaseManager) startHealthCheck() {
	dm.healthCheckOnce.Do(func() {
		ticker := time.NewTicker(dm.config.HealthCheckInterval)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-dm.stopHealthCheck:
					return
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), 2*healthPingTimeout)
					if status := dm.HealthCheck(ctx); !status.Healthy {
						dm.logger.Warn("Database health check failed", "error", status.LastError)
					}
					cancel()
				}
			}
		}()
	})
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	sqlDB := dm.GetSQLDB()
	if sqlDB == nil {
		return &DBStats{}
	}

	s := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      s.MaxOpenConnections,
		OpenConns:         s.OpenConnections,
		InUse:             s.InUse,
		Idle:              s.Idle,
		WaitCount:         s.WaitCount,
		WaitDuration:      s.WaitDuration,
		MaxIdleClosed:     s.MaxIdleClosed,
		MaxIdleTimeClosed: s.MaxIdleTimeClosed,
		MaxLifetimeClosed: s.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return errNotConnected
	}
	return NewMigrationManager(db, dm.logger).RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
