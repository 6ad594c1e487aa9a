// Package state implements persistence for the last applied sun state.
//
// The FileRepository stores the state as a single "set bg=light" or
// "set bg=dark" directive line and exposes a Repository interface that the
// sync service depends on. The stored file is the source of truth for
// idempotent runs.
package state
