package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every switcher topic.
const TopicPrefix = "graylogic/switcher"

// Command kinds accepted on the command topics.
const (
	CommandSet        = "set"
	CommandCollection = "collection"
	CommandLocal      = "local"
)

// Topics builds the switcher's MQTT topics for one site.
//
//	topics := mqtt.Topics{Site: "site-001"}
//	topics.Output("screen_S1_program_label")
//	// Returns: "graylogic/switcher/site-001/feedback/output/screen_S1_program_label"
type Topics struct {
	Site string
}

func (t Topics) base() string {
	return fmt.Sprintf("%s/%s", TopicPrefix, t.Site)
}

// Status carries the online/offline record, including the LWT.
func (t Topics) Status() string {
	return t.base() + "/status"
}

// Indicators carries indicator recheck requests.
func (t Topics) Indicators() string {
	return t.base() + "/feedback/indicators"
}

// Recompute signals that derived outputs were refreshed.
func (t Topics) Recompute() string {
	return t.base() + "/feedback/recompute"
}

// Output carries one derived output value, retained.
func (t Topics) Output(name string) string {
	return t.base() + "/feedback/output/" + name
}

// Change carries canonical state changes for a channel.
func (t Topics) Change(channel string) string {
	return t.base() + "/change/" + channel
}

// Command is the topic a command of the given kind is received on.
func (t Topics) Command(kind string) string {
	return t.base() + "/command/" + kind
}

// AllCommands matches every command topic.
func (t Topics) AllCommands() string {
	return t.base() + "/command/+"
}

// CommandKind extracts the command kind from a command topic.
func (t Topics) CommandKind(topic string) (string, bool) {
	prefix := t.base() + "/command/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	kind := strings.TrimPrefix(topic, prefix)
	if kind == "" || strings.Contains(kind, "/") {
		return "", false
	}
	return kind, true
}
