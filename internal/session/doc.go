// Package session owns one connection's worth of switcher state and
// serialises everything that touches it.
//
// A Session wires the state.Store, the delta.Pipeline, the
// subscription.Dispatcher and the derived outputs together, and runs them on
// a single goroutine (Run). The transport's read pump hands payloads to
// Deliver; API handlers and the owning layer use Do and the command methods.
//
// Payloads queued together are applied as one batch, and the Owner is told
// once per batch: at most one RefreshDerivedOutputs, then one
// RecheckIndicators with the union of indicator IDs (nil for all).
//
// When the hardware INIT snapshot arrives, the family is identified from the
// reported model (or forced with WithFamily) and the matching rule table and
// subscription registry are swapped in before the sweep.
//
// Outbound commands go the other way: a canonical path and value are
// rewritten into the unit's schema and sent through the Transport.
//
//	err := sess.SetValue(ctx, "hardware/device/screenList/items/S1/control/pp/label", state.String("Main"))
//	err  = sess.CollectionOp(ctx, "toggle", "shared/selection/screens", state.String("S1"))
package session
