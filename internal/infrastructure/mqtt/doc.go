// Package mqtt connects the switcher core to the site's MQTT broker.
//
// The broker carries the core's feedback to control surfaces and their
// commands back in. Every topic lives under graylogic/switcher/{site}/:
//
//	status                       retained online/offline record (and LWT)
//	feedback/indicators          indicator recheck requests
//	feedback/recompute           derived outputs were refreshed
//	feedback/output/{name}       retained derived output values
//	change/{channel}             canonical state changes
//	command/{set|collection|local}  inbound commands
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Site.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	err = client.PublishRetained(client.Topics().Output("screen_S1_program_label"), payload)
//
// TLS should be enabled for production brokers (mqtt.broker.tls).
package mqtt
