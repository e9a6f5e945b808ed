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
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
)

// sqlDriver binds a configured database type to its database/sql driver,
// the DSN that driver expects and the bun dialect speaking its SQL.
type sqlDriver struct {
	name    string
	dsn     func(cfg *ConnectionConfig) string
	dialect func() schema.Dialect
}

var (
	mysqlDriver = sqlDriver{
		name:    "mysql",
		dsn:     mysqlDSN,
		dialect: func() schema.Dialect { return mysqldialect.New() },
	}
	postgresDriver = sqlDriver{
		name:    "postgres",
		dsn:     postgresDSN,
		dialect: func() schema.Dialect { return pgdialect.New() },
	}
	sqliteDriver = sqlDriver{
		name:    sqliteshim.ShimName,
		dsn:     sqliteDSN,
		dialect: func() schema.Dialect { return sqlitedialect.New() },
	}

	sqlDrivers = map[string]sqlDriver{
		"mysql":      mysqlDriver,
		"postgres":   postgresDriver,
		"postgresql": postgresDriver,
		"sqlite":     sqliteDriver,
		"sqlite3":    sqliteDriver,
	}
)

// SupportedTypes lists the accepted values of ConnectionConfig.Type.
func SupportedTypes() []string {
	types := make([]string, 0, len(sqlDrivers))
	for t := range sqlDrivers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func lookupDriver(dbType string) (sqlDriver, error) {
	drv, ok := sqlDrivers[dbType]
	if !ok {
		return sqlDriver{}, fmt.Errorf("unsupported database type: %s, supported types: %v", dbType, SupportedTypes())
	}
	return drv, nil
}

// DSN renders the connection string for the configured database type.
func (c *ConnectionConfig) DSN() (string, error) {
	drv, err := lookupDriver(c.Type)
	if err != nil {
		return "", err
	}
	return drv.dsn(c), nil
}

func mysqlDSN(cfg *ConnectionConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.ReadTimeout
	mc.WriteTimeout = cfg.WriteTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// postgresDSN builds a postgres:// URL; credentials are escaped by net/url.
func postgresDSN(cfg *ConnectionConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	params := url.Values{}
	params.Set("sslmode", sslMode)
	if secs := int(cfg.ConnectTimeout.Seconds()); secs > 0 {
		params.Set("connect_timeout", strconv.Itoa(secs))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.DBName,
		RawQuery: params.Encode(),
	}
	return u.String()
}

// sqliteDSN opens <dbname>.db, or uses dbname verbatim when it is already
// a "file:" URI such as file:test?mode=memory&cache=shared.
func sqliteDSN(cfg *ConnectionConfig) string {
	if strings.HasPrefix(cfg.DBName, "file:") {
		return cfg.DBName
	}
	return cfg.DBName + ".db"
}
