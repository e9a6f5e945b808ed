// Package config loads the YAML configuration file and applies environment
// overrides on top of it.
package config
