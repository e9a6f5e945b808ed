// Package database provides connection management, table bootstrap, query
// hooks, logging, health checks and SQL error classification built on top
// of Bun.
package database
