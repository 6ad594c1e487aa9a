// Package session discovers running editor sessions through their control
// sockets and applies background directives to them, best-effort.
//
// Discovery is a filesystem glob over a temporary-directory convention; a
// session that refuses the connection or misbehaves is skipped without
// affecting the rest of the fan-out.
package session
