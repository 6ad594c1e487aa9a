// Package config defines the paths and endpoints used by daylight-sync and
// provides helpers to load, validate and save them in YAML format.
//
// Settings resolve in three layers: built-in defaults, DAYLIGHT_SYNC_*
// environment variables, then the optional settings file. Command-line flags
// override all of them at the service boundary.
package config
