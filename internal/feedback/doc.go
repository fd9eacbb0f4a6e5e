// Package feedback connects a session to the layer above it over MQTT and
// the API's websocket hub.
//
// A Relay is the session's Owner, OutputObserver and Journal: indicator
// rechecks, recompute signals, changed derived outputs and applied
// canonical changes are queued and published by Relay.Run, so the session
// loop never waits on the broker. A Commander runs the commands control
// surfaces publish on the command topics.
//
//	relay := feedback.NewRelay(client.Topics(), client, hub, 0)
//	sess := session.New(conn, relay, session.WithJournal(feedback.Journals(relay, journal)))
//	go relay.Run(ctx)
//	client.Subscribe(client.Topics().AllCommands(), 1, feedback.NewCommander(client.Topics(), sess).Handle)
package feedback
