// Package api serves the member query endpoints over HTTP with chi.
package api
