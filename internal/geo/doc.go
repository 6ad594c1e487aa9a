// Package geo resolves the caller's approximate geographic coordinate from
// network context using an ipinfo.io-style HTTP endpoint.
package geo
