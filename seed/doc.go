// Package seed loads the local-profile sample data set.
package seed
