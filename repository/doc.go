// Package repository provides a generic Bun repository and the member query
// repository that runs dynamic searches, aggregates, and subqueries.
package repository
