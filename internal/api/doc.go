// Package api provides the HTTP introspection API and feedback websocket
// for the switcher core.
//
// Every state read and command goes through the session loop, so the API
// sees the store exactly as the subscriptions do. Paths in URLs are the
// canonical (or, under /raw, the unit's own) slash-separated paths:
//
//	GET  /api/v1/health
//	GET  /api/v1/session
//	GET  /api/v1/state/hardware/device/screenList/items/S1/control/pp/label
//	PUT  /api/v1/state/local/lock/S1              {"value": true}
//	POST /api/v1/collection/shared/selection/layers  {"verb":"add","args":[...]}
//	GET  /api/v1/raw/hardware/device/screenList/items/1
//	GET  /api/v1/outputs
//	GET  /api/v1/capture
//	GET  /api/v1/ws
//	GET  /metrics
//
// # Feedback feed
//
// /api/v1/ws carries the relay's feedback events as JSON frames. A client
// subscribes by event name, a "prefix.*" wildcard or "*":
//
//	-> {"type":"subscribe","id":"1","events":["switcher.outputs"]}
//	<- {"type":"ack","id":"1","events":["switcher.outputs"]}
//	<- {"type":"event","event":"switcher.outputs","seq":7,"data":{"outputs":{...}}}
//
// Seq orders events hub-wide. Slow clients drop frames rather than stall the
// hub; Hub.Dropped counts them.
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
