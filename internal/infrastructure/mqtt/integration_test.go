//go:build integration

package mqtt

import (
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/config"
)

// These tests require a running MQTT broker at 127.0.0.1:1883.
//
//	go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker:    config.MQTTBrokerConfig{Host: "127.0.0.1", Port: 1883},
		QoS:       1,
		Reconnect: config.MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 5},
	}
}

func TestIntegration_CommandRoundtrip(t *testing.T) {
	client, err := Connect(integrationConfig(), "integration")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	received := make(chan string, 1)
	err = client.Subscribe(client.Topics().AllCommands(), 1, func(topic string, _ []byte) error {
		kind, _ := client.Topics().CommandKind(topic)
		received <- kind
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if client.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", client.SubscriptionCount())
	}

	if err := client.PublishEvent(client.Topics().Command(CommandLocal), []byte(`{}`)); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}

	select {
	case kind := <-received:
		if kind != CommandLocal {
			t.Errorf("kind = %q, want %q", kind, CommandLocal)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for command")
	}
}
