// Package state provides the tri-partitioned state tree for the switcher core.
//
// The tree has three independent channels:
//
//   - shared: mirrors the session server visible to every connected surface
//   - hardware: mirrors the controlled unit's own state
//   - local: process-private (selections, lock flags, settle records)
//
// Every node is a Value, an explicit tagged variant (absent, bool, number,
// string, list, map). Paths are segment lists whose first segment is the
// channel name; list children are addressed by 1-based position, matching
// the device's item numbering.
//
// # Raw and canonical addressing
//
// The shared and hardware channels hold data exactly as it arrived on the
// wire ("raw"). Calling code addresses the tree "canonically": Read and Write
// route the path through the active Translator (a *mapping.Table) so that a
// single addressing scheme works against every hardware family.
//
//	store := state.NewStore()
//	store.SetTranslator(table)
//	label := store.Read(state.Split("hardware/device/screenList/items/S3/control/pp/label"))
//
// Reads never fail: a missing branch at any depth yields Absent. A field
// that does not exist and a field holding null are indistinguishable.
//
// # Thread Safety
//
// The Store performs no locking. It is owned by the session loop, which
// processes exactly one inbound notification at a time.
package state
