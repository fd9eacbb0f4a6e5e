package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/config"
)

func TestTopics(t *testing.T) {
	topics := Topics{Site: "site-001"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status", topics.Status(), "graylogic/switcher/site-001/status"},
		{"indicators", topics.Indicators(), "graylogic/switcher/site-001/feedback/indicators"},
		{"recompute", topics.Recompute(), "graylogic/switcher/site-001/feedback/recompute"},
		{"output", topics.Output("screen_S1_program_label"), "graylogic/switcher/site-001/feedback/output/screen_S1_program_label"},
		{"change", topics.Change("hardware"), "graylogic/switcher/site-001/change/hardware"},
		{"command", topics.Command(CommandSet), "graylogic/switcher/site-001/command/set"},
		{"all commands", topics.AllCommands(), "graylogic/switcher/site-001/command/+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTopics_CommandKind(t *testing.T) {
	topics := Topics{Site: "s"}

	tests := []struct {
		topic  string
		want   string
		wantOK bool
	}{
		{"graylogic/switcher/s/command/set", "set", true},
		{"graylogic/switcher/s/command/local", "local", true},
		{"graylogic/switcher/s/command/", "", false},
		{"graylogic/switcher/s/command/set/extra", "", false},
		{"graylogic/switcher/other/command/set", "", false},
	}

	for _, tt := range tests {
		got, ok := topics.CommandKind(tt.topic)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CommandKind(%q) = %q, %v, want %q, %v", tt.topic, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStatusPayload(t *testing.T) {
	var record map[string]string
	if err := json.Unmarshal([]byte(statusPayload("offline", "id-1", "graceful_shutdown")), &record); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if record["status"] != "offline" || record["client_id"] != "id-1" || record["reason"] != "graceful_shutdown" {
		t.Errorf("record = %v", record)
	}

	if strings.Contains(statusPayload("online", "id-1", ""), "reason") {
		t.Error("online record should not carry a reason")
	}
}

func TestClientID(t *testing.T) {
	if got := clientID(config.MQTTConfig{Broker: config.MQTTBrokerConfig{ClientID: "fixed"}}); got != "fixed" {
		t.Errorf("clientID() = %q, want fixed", got)
	}

	generated := clientID(config.MQTTConfig{})
	if !strings.HasPrefix(generated, "graylogic-switcher-") {
		t.Errorf("generated clientID = %q", generated)
	}
	if generated == clientID(config.MQTTConfig{}) {
		t.Error("generated client IDs should differ")
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker", Port: 8883, TLS: true},
		Auth:   config.MQTTAuthConfig{Username: "user", Password: "pass"},
	}

	opts := buildClientOptions(cfg, "id-1")

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://broker:8883" {
		t.Errorf("Servers = %v, want ssl://broker:8883", opts.Servers)
	}
	if opts.ClientID != "id-1" || opts.Username != "user" {
		t.Errorf("ClientID = %q, Username = %q", opts.ClientID, opts.Username)
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig not set for TLS broker")
	}
}

func TestClient_ValidationBeforeConnection(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", nil, 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish(empty topic) error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("t", nil, 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish(qos 3) error = %v, want ErrInvalidQoS", err)
	}
	if err := c.Publish("t", make([]byte, maxPayloadSize+1), 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish(oversize) error = %v, want ErrPublishFailed", err)
	}
	if err := c.Publish("t", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish(disconnected) error = %v, want ErrNotConnected", err)
	}
	if err := c.Subscribe("t", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe(nil handler) error = %v, want ErrSubscribeFailed", err)
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}
