// Package types holds the paging request and result containers shared by
// the repositories and the HTTP layer.
package types
