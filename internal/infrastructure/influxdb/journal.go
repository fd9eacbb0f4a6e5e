package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-switcher/internal/delta"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Measurement is the InfluxDB measurement the journal writes to.
const Measurement = "switcher_changes"

// RecordChange journals one applied change. Scalar values are written;
// subtree replacements and changes without a value are not.
//
// Client satisfies session.Journal.
func (c *Client) RecordChange(ch delta.Change) {
	if !c.IsConnected() {
		return
	}
	if p := changePoint(c.site, ch, c.now()); p != nil {
		c.writeAPI.WritePoint(p)
	}
}

// changePoint builds the point for a change, or nil when nothing is
// worth recording.
func changePoint(site string, ch delta.Change, ts time.Time) *write.Point {
	if !ch.HasValue {
		return nil
	}

	fields := make(map[string]interface{}, 1)
	switch ch.Value.Kind() {
	case state.KindAbsent:
		fields["removed"] = true
	case state.KindBool:
		b, _ := ch.Value.AsBool()
		fields["state"] = b
	case state.KindNumber:
		n, _ := ch.Value.AsNumber()
		fields["value"] = n
	case state.KindString:
		s, _ := ch.Value.AsString()
		fields["text"] = s
	default:
		return nil
	}

	tags := map[string]string{
		"site":    site,
		"channel": string(ch.Channel),
		"kind":    ch.Kind.String(),
		"path":    ch.CanonicalPath,
	}

	return write.NewPoint(Measurement, tags, fields, ts)
}
