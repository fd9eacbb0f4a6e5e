package state

import (
	"errors"
	"strings"
	"testing"
)

// prefixTranslator maps canonical "hardware/canon/..." to raw "hardware/raw/..."
// and upper-cases string values on the way in.
type prefixTranslator struct{}

func (prefixTranslator) Incoming(path string, v Value) (string, Value) {
	path = strings.Replace(path, "/raw/", "/canon/", 1)
	if s, ok := v.AsString(); ok {
		v = String(strings.ToUpper(s))
	}
	return path, v
}

func (prefixTranslator) Outgoing(path string, v Value) (string, Value) {
	path = strings.Replace(path, "/canon/", "/raw/", 1)
	if s, ok := v.AsString(); ok {
		v = String(strings.ToLower(s))
	}
	return path, v
}

func TestNewStore_EmptyChannels(t *testing.T) {
	s := NewStore()

	for _, ch := range Channels {
		root := s.ReadRaw([]string{string(ch)})
		if root.Kind() != KindMap || root.Len() != 0 {
			t.Errorf("ReadRaw(%s) = %v, want empty map", ch, root)
		}
	}
}

func TestStore_ReadRawMissingIsAbsent(t *testing.T) {
	s := NewStore()
	if err := s.WriteRaw([]string{"hardware", "a", "b"}, Int(1)); err != nil {
		t.Fatalf("WriteRaw() error = %v", err)
	}

	tests := []struct {
		name string
		path []string
	}{
		{"missing leaf", []string{"hardware", "a", "c"}},
		{"missing branch", []string{"hardware", "x", "y", "z"}},
		{"through scalar", []string{"hardware", "a", "b", "c"}},
		{"unknown channel", []string{"nowhere", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ReadRaw(tt.path); !got.IsAbsent() {
				t.Errorf("ReadRaw(%v) = %v, want absent", tt.path, got)
			}
		})
	}
}

func TestStore_WriteRawCreatesBranches(t *testing.T) {
	s := NewStore()
	if err := s.WriteRaw([]string{"local", "selection", "screens"}, Strings("S1", "S2")); err != nil {
		t.Fatalf("WriteRaw() error = %v", err)
	}

	branch := s.ReadRaw([]string{"local", "selection"})
	if branch.Kind() != KindMap {
		t.Fatalf("intermediate node kind = %s, want map", branch.Kind())
	}
	if got := s.ReadRaw([]string{"local", "selection", "screens", "2"}); !Equal(got, String("S2")) {
		t.Errorf("ReadRaw(screens/2) = %v, want \"S2\"", got)
	}
}

func TestStore_WriteRawThroughScalarFails(t *testing.T) {
	s := NewStore()
	_ = s.WriteRaw([]string{"hardware", "a"}, Int(1))

	err := s.WriteRaw([]string{"hardware", "a", "b"}, Int(2))
	if !errors.Is(err, ErrIncompatibleNode) {
		t.Errorf("WriteRaw() error = %v, want ErrIncompatibleNode", err)
	}
}

func TestStore_WriteRawCopiesValue(t *testing.T) {
	s := NewStore()
	m := map[string]Value{"label": String("one")}
	_ = s.WriteRaw([]string{"hardware", "node"}, Map(m))

	m["label"] = String("mutated")

	if got := s.ReadRaw([]string{"hardware", "node", "label"}); !Equal(got, String("one")) {
		t.Errorf("stored value changed through caller's map: %v", got)
	}
}

func TestStore_DeleteRawSequence(t *testing.T) {
	s := NewStore()
	_ = s.WriteRaw([]string{"hardware", "items"}, Strings("x", "y", "z"))

	if err := s.DeleteRaw([]string{"hardware", "items", "2"}); err != nil {
		t.Fatalf("DeleteRaw() error = %v", err)
	}

	got := s.ReadRaw([]string{"hardware", "items"})
	if !Equal(got, Strings("x", "z")) {
		t.Errorf("items = %v, want [\"x\",\"z\"]", got)
	}
}

func TestStore_DeleteRawKey(t *testing.T) {
	s := NewStore()
	_ = s.WriteRaw([]string{"shared", "m"}, Map(map[string]Value{"a": Int(1), "b": Int(2)}))

	if err := s.DeleteRaw([]string{"shared", "m", "a"}); err != nil {
		t.Fatalf("DeleteRaw() error = %v", err)
	}

	got := s.ReadRaw([]string{"shared", "m"})
	want := Map(map[string]Value{"b": Int(2)})
	if !Equal(got, want) {
		t.Errorf("m = %v, want %v", got, want)
	}
}

func TestStore_DeleteRawErrors(t *testing.T) {
	s := NewStore()
	_ = s.WriteRaw([]string{"hardware", "items"}, Strings("x"))

	tests := []struct {
		name string
		path []string
		want error
	}{
		{"missing key", []string{"hardware", "nope"}, ErrPathNotFound},
		{"index past end", []string{"hardware", "items", "5"}, ErrIndexOutOfRange},
		{"non-index on list", []string{"hardware", "items", "first"}, ErrIncompatibleNode},
		{"unknown channel", []string{"elsewhere", "x"}, ErrUnknownChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.DeleteRaw(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("DeleteRaw(%v) error = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}

func TestStore_ReplaceRawRequiresTarget(t *testing.T) {
	s := NewStore()
	_ = s.WriteRaw([]string{"hardware", "items"}, Strings("x", "y"))
	_ = s.WriteRaw([]string{"hardware", "label"}, String("old"))

	tests := []struct {
		name string
		path []string
		want error
	}{
		{"one past the end", []string{"hardware", "items", "3"}, ErrIndexOutOfRange},
		{"append token", []string{"hardware", "items", "-"}, ErrIndexOutOfRange},
		{"missing key", []string{"hardware", "nope"}, ErrPathNotFound},
		{"missing branch", []string{"hardware", "nope", "a"}, ErrPathNotFound},
		{"through scalar", []string{"hardware", "label", "a"}, ErrIncompatibleNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.ReadRaw([]string{"hardware"}).Clone()
			err := s.ReplaceRaw(tt.path, String("q"))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReplaceRaw(%v) error = %v, want %v", tt.path, err, tt.want)
			}
			if got := s.ReadRaw([]string{"hardware"}); !Equal(got, before) {
				t.Errorf("tree changed on failed replace: %v", got)
			}
		})
	}

	if err := s.ReplaceRaw([]string{"hardware", "items", "2"}, String("q")); err != nil {
		t.Fatalf("ReplaceRaw(items/2) error = %v", err)
	}
	if got := s.ReadRaw([]string{"hardware", "items"}); !Equal(got, Strings("x", "q")) {
		t.Errorf("items = %v, want [x q]", got)
	}
}

func TestStore_AddRawInsertsIntoList(t *testing.T) {
	s := NewStore()
	_ = s.WriteRaw([]string{"shared", "list"}, Strings("a", "c"))

	if err := s.AddRaw([]string{"shared", "list", "2"}, String("b")); err != nil {
		t.Fatalf("AddRaw() error = %v", err)
	}
	if err := s.AddRaw([]string{"shared", "list", "-"}, String("d")); err != nil {
		t.Fatalf("AddRaw(-) error = %v", err)
	}

	got := s.ReadRaw([]string{"shared", "list"})
	if !Equal(got, Strings("a", "b", "c", "d")) {
		t.Errorf("list = %v, want [a b c d]", got)
	}
}

func TestStore_ReplaceChannel(t *testing.T) {
	s := NewStore()
	_ = s.WriteRaw([]string{"hardware", "old"}, Int(1))

	snapshot := Map(map[string]Value{"a": Int(1)})
	if err := s.ReplaceChannel(ChannelHardware, snapshot); err != nil {
		t.Fatalf("ReplaceChannel() error = %v", err)
	}

	if got := s.ReadRaw([]string{"hardware", "old"}); !got.IsAbsent() {
		t.Errorf("old key survived replace: %v", got)
	}
	if got := s.ReadRaw([]string{"hardware", "a"}); !Equal(got, Int(1)) {
		t.Errorf("ReadRaw(hardware/a) = %v, want 1", got)
	}

	if err := s.ReplaceChannel(ChannelHardware, Int(3)); !errors.Is(err, ErrIncompatibleNode) {
		t.Errorf("ReplaceChannel(scalar) error = %v, want ErrIncompatibleNode", err)
	}
}

func TestStore_CanonicalReadWrite(t *testing.T) {
	s := NewStore()
	s.SetTranslator(prefixTranslator{})

	if err := s.Write([]string{"hardware", "canon", "label"}, String("Hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if got := s.ReadRaw([]string{"hardware", "raw", "label"}); !Equal(got, String("hello")) {
		t.Errorf("raw value = %v, want \"hello\"", got)
	}
	if got := s.Read([]string{"hardware", "canon", "label"}); !Equal(got, String("HELLO")) {
		t.Errorf("Read() = %v, want \"HELLO\"", got)
	}
	if got := s.Read([]string{"hardware", "canon", "missing"}); !got.IsAbsent() {
		t.Errorf("Read(missing) = %v, want absent", got)
	}
}

func TestStore_SetTranslatorNilRestoresIdentity(t *testing.T) {
	s := NewStore()
	s.SetTranslator(prefixTranslator{})
	s.SetTranslator(nil)

	_ = s.Write([]string{"hardware", "canon", "x"}, String("v"))
	if got := s.ReadRaw([]string{"hardware", "canon", "x"}); !Equal(got, String("v")) {
		t.Errorf("identity write = %v, want \"v\"", got)
	}
}
