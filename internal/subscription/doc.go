// Package subscription turns canonical state changes into work for the
// owning layer.
//
// A Registry is an immutable list of Subscriptions for one hardware family.
// Each subscription has a pattern on canonical paths, indicator IDs to
// recheck, an optional side effect and an optional initializer.
//
// Dispatch runs every matching subscription and returns the union of their
// indicators. Sweep runs every effect once without a path after a snapshot,
// then expands capturing subscriptions with an initializer against their path
// list (for example master memory labels 1..N). A sweep rechecks all
// indicators and recomputes only if some effect asked to.
//
// The settle subscription keeps a {program, preview} record per screen under
// local/settle/<screen>, updated only when the transition status is fully
// seated, and recomputes the screen's cached program and preview outputs.
package subscription
