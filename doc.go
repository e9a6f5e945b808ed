// Package memberquery exposes the member read service: dynamic member
// search, paging, team lookups, and age reports over the members and teams
// tables.
package memberquery
