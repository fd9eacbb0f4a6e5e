package delta

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Kind distinguishes the three inbound notification shapes.
type Kind int

// Notification kinds.
const (
	KindReplace Kind = iota
	KindPatch
	KindSnapshot
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindReplace:
		return "replace"
	case KindPatch:
		return "patch"
	case KindSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// Inner channel markers distinguishing patch and snapshot notifications.
const (
	markerPatch = "PATCH"
	markerInit  = "INIT"
)

// Patch operations.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// Envelope is the outer wire shape of every message in both directions.
type Envelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// PatchOp is a single JSON Patch operation.
type PatchOp struct {
	Op       string
	Path     string
	Value    state.Value
	HasValue bool
}

// Notification is a decoded inbound message.
type Notification struct {
	Kind    Kind
	Channel state.Channel

	// KindReplace: raw path within the channel and the new value.
	Path  []string
	Value state.Value

	// KindPatch.
	Patch PatchOp

	// KindSnapshot.
	SessionID string
	Snapshot  state.Value
}

// wireData is the union of every inbound data shape.
type wireData struct {
	Channel  string          `json:"channel"`
	Path     json.RawMessage `json:"path"`
	Value    json.RawMessage `json:"value"`
	Patch    *wirePatch      `json:"patch"`
	SocketID string          `json:"socketId"`
	Snapshot json.RawMessage `json:"snapshot"`
}

type wirePatch struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// Decode parses an inbound payload.
//
// Returns ErrMalformedEnvelope when the channel or data is missing, the
// channel is unknown, or the payload does not match any notification shape.
func Decode(payload []byte) (Notification, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Channel == "" || isNull(env.Data) {
		return Notification{}, fmt.Errorf("%w: missing channel or data", ErrMalformedEnvelope)
	}
	ch, err := state.ParseChannel(env.Channel)
	if err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	var data wireData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return Notification{}, fmt.Errorf("%w: data: %v", ErrMalformedEnvelope, err)
	}

	switch data.Channel {
	case markerPatch:
		if data.Patch == nil || data.Patch.Op == "" {
			return Notification{}, fmt.Errorf("%w: patch without op", ErrMalformedEnvelope)
		}
		value, has, err := decodeValue(data.Patch.Value)
		if err != nil {
			return Notification{}, err
		}
		return Notification{
			Kind:    KindPatch,
			Channel: ch,
			Patch:   PatchOp{Op: data.Patch.Op, Path: data.Patch.Path, Value: value, HasValue: has},
		}, nil

	case markerInit:
		snapshot, _, err := decodeValue(data.Snapshot)
		if err != nil {
			return Notification{}, err
		}
		return Notification{Kind: KindSnapshot, Channel: ch, SessionID: data.SocketID, Snapshot: snapshot}, nil

	default:
		if isNull(data.Path) {
			return Notification{}, fmt.Errorf("%w: data has no path", ErrMalformedEnvelope)
		}
		path, err := decodePath(data.Path)
		if err != nil {
			return Notification{}, err
		}
		value, _, err := decodeValue(data.Value)
		if err != nil {
			return Notification{}, err
		}
		return Notification{Kind: KindReplace, Channel: ch, Path: path, Value: value}, nil
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeValue decodes an optional JSON value. A missing value reports
// has=false; an explicit null decodes to Absent with has=true.
func decodeValue(raw json.RawMessage) (state.Value, bool, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return state.Absent(), false, nil
	}
	var v state.Value
	if err := v.UnmarshalJSON(raw); err != nil {
		return state.Absent(), false, fmt.Errorf("%w: value: %v", ErrMalformedEnvelope, err)
	}
	return v, true, nil
}

// decodePath accepts a segment array (strings or numbers) or a delimited
// string.
func decodePath(raw json.RawMessage) ([]string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return state.Split(s), nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: path: %v", ErrMalformedEnvelope, err)
	}
	segs := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			segs = append(segs, v)
		case float64:
			segs = append(segs, state.Number(v).Text())
		default:
			return nil, fmt.Errorf("%w: path segment %v", ErrMalformedEnvelope, item)
		}
	}
	return segs, nil
}

// Collection verbs for shared-channel commands.
const (
	VerbAdd     = "add"
	VerbRemove  = "remove"
	VerbReplace = "replace"
	VerbToggle  = "toggle"
)

// EncodeSetValue builds the hardware command {channel:"hardware",
// data:{path:[..], value}} for a raw path within the hardware channel.
func EncodeSetValue(path []string, v state.Value) ([]byte, error) {
	data, err := json.Marshal(struct {
		Path  []string    `json:"path"`
		Value state.Value `json:"value"`
	}{Path: nonNil(path), Value: v})
	if err != nil {
		return nil, fmt.Errorf("encoding set value: %w", err)
	}
	return json.Marshal(Envelope{Channel: string(state.ChannelHardware), Data: data})
}

// EncodeCollectionOp builds the shared command {channel:"shared",
// data:{name, path:"/x/y", args:[..]}} for a raw path within the shared
// channel.
func EncodeCollectionOp(verb string, path []string, args []state.Value) ([]byte, error) {
	switch verb {
	case VerbAdd, VerbRemove, VerbReplace, VerbToggle:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
	if args == nil {
		args = []state.Value{}
	}
	data, err := json.Marshal(struct {
		Name string        `json:"name"`
		Path string        `json:"path"`
		Args []state.Value `json:"args"`
	}{Name: verb, Path: state.FormatPointer(path), Args: args})
	if err != nil {
		return nil, fmt.Errorf("encoding collection op: %w", err)
	}
	return json.Marshal(Envelope{Channel: string(state.ChannelShared), Data: data})
}

func nonNil(segs []string) []string {
	if segs == nil {
		return []string{}
	}
	return segs
}
