// Package syncer orchestrates one synchronization pass: determine the target
// day/night state (forced or solar), compare it against the persisted state,
// and on change update live sessions, the state file and the theme config,
// in that order.
package syncer
