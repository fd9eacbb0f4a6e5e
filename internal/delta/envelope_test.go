package delta

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, n Notification)
	}{
		{
			name:    "replace with mixed path",
			payload: `{"channel":"hardware","data":{"path":["device","screenList","items",3],"value":{"label":"x"}}}`,
			check: func(t *testing.T, n Notification) {
				if n.Kind != KindReplace || n.Channel != state.ChannelHardware {
					t.Errorf("kind/channel = %s/%s", n.Kind, n.Channel)
				}
				if want := []string{"device", "screenList", "items", "3"}; !reflect.DeepEqual(n.Path, want) {
					t.Errorf("Path = %v, want %v", n.Path, want)
				}
				if got := n.Value.Child("label"); !state.Equal(got, state.String("x")) {
					t.Errorf("Value = %v", n.Value)
				}
			},
		},
		{
			name:    "patch",
			payload: `{"channel":"shared","data":{"channel":"PATCH","patch":{"op":"add","path":"/a/b","value":null}}}`,
			check: func(t *testing.T, n Notification) {
				if n.Kind != KindPatch || n.Patch.Op != OpAdd || n.Patch.Path != "/a/b" {
					t.Errorf("patch = %+v", n.Patch)
				}
				if !n.Patch.HasValue || !n.Patch.Value.IsAbsent() {
					t.Errorf("explicit null: HasValue=%v Value=%v", n.Patch.HasValue, n.Patch.Value)
				}
			},
		},
		{
			name:    "patch remove without value",
			payload: `{"channel":"shared","data":{"channel":"PATCH","patch":{"op":"remove","path":"/a"}}}`,
			check: func(t *testing.T, n Notification) {
				if n.Patch.HasValue {
					t.Error("HasValue = true for missing value")
				}
			},
		},
		{
			name:    "snapshot",
			payload: `{"channel":"hardware","data":{"channel":"INIT","socketId":"s-1","snapshot":{"a":1}}}`,
			check: func(t *testing.T, n Notification) {
				if n.Kind != KindSnapshot || n.SessionID != "s-1" {
					t.Errorf("snapshot = %+v", n)
				}
				if got := n.Snapshot.Child("a"); !state.Equal(got, state.Int(1)) {
					t.Errorf("Snapshot = %v", n.Snapshot)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Decode([]byte(tt.payload))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			tt.check(t, n)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	payloads := []string{
		``,
		`[]`,
		`{"channel":"","data":{}}`,
		`{"channel":"local"}`,
		`{"channel":"shared","data":{"channel":"PATCH"}}`,
		`{"channel":"shared","data":{"path":[true],"value":1}}`,
	}
	for _, payload := range payloads {
		if _, err := Decode([]byte(payload)); !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("Decode(%q) error = %v, want ErrMalformedEnvelope", payload, err)
		}
	}
}

func TestEncodeSetValue(t *testing.T) {
	got, err := EncodeSetValue([]string{"device", "screenList", "items", "3", "control", "pp", "label"}, state.String("Main"))
	if err != nil {
		t.Fatalf("EncodeSetValue() error = %v", err)
	}
	want := `{"channel":"hardware","data":{"path":["device","screenList","items","3","control","pp","label"],"value":"Main"}}`
	if string(got) != want {
		t.Errorf("EncodeSetValue() = %s, want %s", got, want)
	}
}

func TestEncodeCollectionOp(t *testing.T) {
	got, err := EncodeCollectionOp(VerbToggle, []string{"selection", "screens"}, []state.Value{state.String("S1")})
	if err != nil {
		t.Fatalf("EncodeCollectionOp() error = %v", err)
	}
	want := `{"channel":"shared","data":{"name":"toggle","path":"/selection/screens","args":["S1"]}}`
	if string(got) != want {
		t.Errorf("EncodeCollectionOp() = %s, want %s", got, want)
	}

	if _, err := EncodeCollectionOp("explode", nil, nil); !errors.Is(err, ErrUnknownVerb) {
		t.Errorf("EncodeCollectionOp(explode) error = %v, want ErrUnknownVerb", err)
	}
}
