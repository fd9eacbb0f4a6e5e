package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-switcher/internal/delta"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

type published struct {
	topic    string
	payload  []byte
	retained bool
}

type mockPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *mockPublisher) PublishRetained(topic string, payload []byte) error {
	return p.record(topic, payload, true)
}

func (p *mockPublisher) PublishEvent(topic string, payload []byte) error {
	return p.record(topic, payload, false)
}

func (p *mockPublisher) record(topic string, payload []byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic, payload, retained})
	return p.err
}

type mockHub struct {
	events []string
	data   []json.RawMessage
}

func (h *mockHub) Broadcast(ev Event) {
	h.events = append(h.events, ev.Name)
	h.data = append(h.data, ev.Data)
}

// drain delivers everything queued so far on the calling goroutine.
func drain(r *Relay) {
	for {
		select {
		case m := <-r.queue:
			r.deliver(m)
		default:
			return
		}
	}
}

func newTestRelay(queueSize int) (*Relay, *mockPublisher, *mockHub) {
	pub := &mockPublisher{}
	hub := &mockHub{}
	r := NewRelay(mqtt.Topics{Site: "s1"}, pub, hub, queueSize)
	r.now = func() time.Time { return time.Unix(0, 0) }
	return r, pub, hub
}

func TestRelay_RecheckIndicators(t *testing.T) {
	r, pub, hub := newTestRelay(0)

	r.RecheckIndicators([]string{"screen_selected", "screen_enabled"})
	r.RecheckIndicators(nil)
	drain(r)

	if len(pub.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.msgs))
	}
	if pub.msgs[0].topic != "graylogic/switcher/s1/feedback/indicators" || pub.msgs[0].retained {
		t.Errorf("msg[0] = %s retained=%v", pub.msgs[0].topic, pub.msgs[0].retained)
	}

	var some, all IndicatorsEvent
	_ = json.Unmarshal(pub.msgs[0].payload, &some)
	_ = json.Unmarshal(pub.msgs[1].payload, &all)
	if some.All || len(some.Indicators) != 2 {
		t.Errorf("partial event = %+v", some)
	}
	if !all.All || len(all.Indicators) != 0 {
		t.Errorf("all event = %+v", all)
	}

	if len(hub.events) != 2 || hub.events[0] != EventIndicators {
		t.Fatalf("hub events = %v", hub.events)
	}
	if string(hub.data[1]) != string(pub.msgs[1].payload) {
		t.Errorf("hub data = %s, want the MQTT payload %s", hub.data[1], pub.msgs[1].payload)
	}
}

func TestRelay_OutputsChangedRetainedPerName(t *testing.T) {
	r, pub, hub := newTestRelay(0)

	r.OutputsChanged(map[string]state.Value{
		"screen_S1_program_label": state.String("Opening"),
	})
	r.OutputsChanged(nil)
	drain(r)

	if len(pub.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.msgs))
	}
	m := pub.msgs[0]
	if m.topic != "graylogic/switcher/s1/feedback/output/screen_S1_program_label" || !m.retained {
		t.Errorf("output message = %s retained=%v", m.topic, m.retained)
	}
	if string(m.payload) != `"Opening"` {
		t.Errorf("payload = %s", m.payload)
	}
	if len(hub.events) != 1 || hub.events[0] != EventOutputs {
		t.Fatalf("hub events = %v, want one %s", hub.events, EventOutputs)
	}
	if want := `{"outputs":{"screen_S1_program_label":"Opening"}}`; string(hub.data[0]) != want {
		t.Errorf("hub data = %s, want %s", hub.data[0], want)
	}
}

func TestRelay_RecordChange(t *testing.T) {
	r, pub, hub := newTestRelay(0)

	r.RecordChange(delta.Change{
		Kind:          delta.KindPatch,
		Channel:       state.ChannelHardware,
		CanonicalPath: "hardware/device/screenList/items/S1/control/pp/label",
		Value:         state.String("Main"),
		HasValue:      true,
	})
	r.RecordChange(delta.Change{Kind: delta.KindPatch, Channel: state.ChannelShared, CanonicalPath: "shared/x"})
	drain(r)

	if len(pub.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.msgs))
	}
	if pub.msgs[0].topic != "graylogic/switcher/s1/change/hardware" {
		t.Errorf("topic = %s", pub.msgs[0].topic)
	}

	var ev map[string]any
	_ = json.Unmarshal(pub.msgs[0].payload, &ev)
	if ev["value"] != "Main" || ev["kind"] != "patch" || ev["has_value"] != true {
		t.Errorf("change event = %v", ev)
	}

	var bare map[string]any
	_ = json.Unmarshal(pub.msgs[1].payload, &bare)
	if _, present := bare["value"]; present {
		t.Errorf("valueless change carried a value: %v", bare)
	}
	if len(hub.events) != 2 || hub.events[1] != EventChange {
		t.Errorf("hub events = %v", hub.events)
	}
}

func TestRelay_FullQueueDrops(t *testing.T) {
	r, _, _ := newTestRelay(1)

	r.RefreshDerivedOutputs()
	r.RefreshDerivedOutputs()
	r.RefreshDerivedOutputs()

	if got := r.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}
}

func TestRelay_PublishErrorDoesNotStopDelivery(t *testing.T) {
	r, pub, hub := newTestRelay(0)
	pub.err = errors.New("broker gone")

	r.RefreshDerivedOutputs()
	r.RefreshDerivedOutputs()
	drain(r)

	if len(pub.msgs) != 2 || len(hub.events) != 2 {
		t.Errorf("published %d, broadcast %d, want 2 and 2", len(pub.msgs), len(hub.events))
	}
}

func TestRelay_NilPublisherAndHub(t *testing.T) {
	r := NewRelay(mqtt.Topics{Site: "s"}, nil, nil, 0)
	r.RecheckIndicators(nil)
	r.OutputsChanged(map[string]state.Value{"x": state.Int(1)})
	drain(r)
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	r, pub, _ := newTestRelay(0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	r.RefreshDerivedOutputs()
	deadline := time.After(2 * time.Second)
	for {
		pub.mu.Lock()
		n := len(pub.msgs)
		pub.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for publish")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type countingJournal struct{ n int }

func (j *countingJournal) RecordChange(delta.Change) { j.n++ }

func TestJournals(t *testing.T) {
	if Journals() != nil || Journals(nil, nil) != nil {
		t.Error("Journals with no members should be nil")
	}

	a, b := &countingJournal{}, &countingJournal{}
	if Journals(a, nil) != a {
		t.Error("single member should be returned as is")
	}

	Journals(a, b).RecordChange(delta.Change{})
	if a.n != 1 || b.n != 1 {
		t.Errorf("counts = %d, %d, want 1, 1", a.n, b.n)
	}
}
