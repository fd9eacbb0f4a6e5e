// Package delta applies inbound notifications to the state tree.
//
// Three notification shapes arrive from the transport:
//
//	full replace  {channel, data: {path: [..], value}}
//	patch         {channel, data: {channel: "PATCH", patch: {op, path: "/a/b", value?}}}
//	snapshot      {channel, data: {channel: "INIT", socketId, snapshot}}
//
// A replace or patch is written raw into the addressed channel; the
// canonical (path, value) is derived through the active translator and
// handed to the dispatcher. A snapshot replaces the whole channel, records
// the session ID and triggers exactly one sweep.
//
// Patch failures are logged and counted but never stop processing. Payloads
// without a channel or data are dropped.
//
// Full replaces on the hardware channel feed a Latch, which keeps the last
// raw change once the unit has been quiet for DefaultLatchWindow.
package delta
