// Package mapping translates between each hardware family's wire schema and
// the canonical schema used by the rest of the core.
//
// A Table is an ordered list of bidirectional Rules. Each rule carries an
// incoming half (matched against raw paths) and an outgoing half (matched
// against canonical paths). Patterns are unanchored regular expressions,
// compiled once when the table is built.
//
//	table, _ := mapping.TableFor(mapping.FamilyMidra)
//	path, v := table.Incoming("hardware/device/screenList/items/3/status/pp/transition", state.String("UP"))
//	// path == "hardware/device/screenList/items/S3/status/pp/transition"
//	// v    == "AT_UP"
//
// Incoming folds matching rules in table order, Outgoing in reverse order.
// Value rewrites are skipped for Absent values. A rule that panics or returns
// an error is logged and skipped; the remaining rules still apply.
//
// Rewrites are path-based: a subtree read at an ancestor path is returned
// with its raw child keys.
package mapping
