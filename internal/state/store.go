package state

import "fmt"

// Channel names one of the three independent partitions of the tree.
type Channel string

// The three channels. Every path begins with one of these names.
const (
	// ChannelShared mirrors the session server visible to every connected surface.
	ChannelShared Channel = "shared"

	// ChannelHardware mirrors the controlled unit's own state.
	ChannelHardware Channel = "hardware"

	// ChannelLocal is process-private: selections, lock flags, settle records.
	ChannelLocal Channel = "local"
)

// Channels lists every channel in a stable order.
var Channels = []Channel{ChannelShared, ChannelHardware, ChannelLocal}

// ParseChannel validates a channel name.
func ParseChannel(name string) (Channel, error) {
	switch Channel(name) {
	case ChannelShared, ChannelHardware, ChannelLocal:
		return Channel(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
}

// Translator rewrites paths and values between the raw (wire-native) and the
// canonical addressing schemes. Paths are delimited strings including the
// channel as their first segment. It is satisfied by *mapping.Table.
type Translator interface {
	// Incoming rewrites a raw (path, value) into canonical form.
	Incoming(path string, v Value) (string, Value)

	// Outgoing rewrites a canonical (path, value) into raw form.
	Outgoing(path string, v Value) (string, Value)
}

// identity is the Translator used before a hardware family is known.
type identity struct{}

func (identity) Incoming(path string, v Value) (string, Value) { return path, v }
func (identity) Outgoing(path string, v Value) (string, Value) { return path, v }

// Store is the tri-partitioned state tree.
//
// Raw operations (ReadRaw, WriteRaw, AddRaw, DeleteRaw) address the tree
// exactly as it arrived on the wire. Read and Write address it canonically,
// going through the active Translator.
//
// Paths are segment lists whose first segment is the channel. A path of just
// the channel addresses the channel root.
//
// Thread Safety: a Store is owned by a single goroutine (the session loop)
// and performs no locking.
type Store struct {
	roots      map[Channel]Value
	translator Translator
}

// NewStore creates a Store with three empty channels and an identity
// translator.
func NewStore() *Store {
	s := &Store{
		roots:      make(map[Channel]Value, len(Channels)),
		translator: identity{},
	}
	for _, ch := range Channels {
		s.roots[ch] = Map(nil)
	}
	return s
}

// SetTranslator swaps the active translator wholesale. Passing nil restores
// the identity translator.
func (s *Store) SetTranslator(t Translator) {
	if t == nil {
		t = identity{}
	}
	s.translator = t
}

// Translator returns the active translator.
func (s *Store) Translator() Translator {
	return s.translator
}

// splitChannel separates the channel from the remaining segments.
func splitChannel(path []string) (Channel, []string, error) {
	if len(path) == 0 {
		return "", nil, fmt.Errorf("%w: empty path", ErrUnknownChannel)
	}
	ch, err := ParseChannel(path[0])
	if err != nil {
		return "", nil, err
	}
	return ch, path[1:], nil
}

// ReadRaw returns the raw node at path, or Absent when any segment is
// missing. An empty path returns a Map of all three channel roots.
// The result shares storage with the tree; Clone it before mutating.
func (s *Store) ReadRaw(path []string) Value {
	if len(path) == 0 {
		m := make(map[string]Value, len(s.roots))
		for ch, root := range s.roots {
			m[string(ch)] = root
		}
		return Map(m)
	}
	ch, rest, err := splitChannel(path)
	if err != nil {
		return Absent()
	}
	return lookup(s.roots[ch], rest)
}

// WriteRaw stores a deep copy of v at path, creating intermediate branches
// as maps. Writing a channel root requires a Map.
func (s *Store) WriteRaw(path []string, v Value) error {
	ch, rest, err := splitChannel(path)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return s.ReplaceChannel(ch, v)
	}
	root, err := assign(s.roots[ch], rest, v.Clone())
	s.roots[ch] = root
	if err != nil {
		return fmt.Errorf("writing %s: %w", Join(path), err)
	}
	return nil
}

// ReplaceRaw overwrites the existing node at path with a deep copy of v,
// with JSON Patch "replace" semantics. A missing target fails with
// ErrPathNotFound (or ErrIndexOutOfRange on a list) and leaves the tree
// unchanged.
func (s *Store) ReplaceRaw(path []string, v Value) error {
	ch, rest, err := splitChannel(path)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return s.ReplaceChannel(ch, v)
	}
	root, err := replace(s.roots[ch], rest, v.Clone())
	s.roots[ch] = root
	if err != nil {
		return fmt.Errorf("replacing %s: %w", Join(path), err)
	}
	return nil
}

// AddRaw inserts a deep copy of v at path with JSON Patch "add" semantics:
// list positions shift later elements up, "-" appends.
func (s *Store) AddRaw(path []string, v Value) error {
	ch, rest, err := splitChannel(path)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return s.ReplaceChannel(ch, v)
	}
	root, err := insert(s.roots[ch], rest, v.Clone())
	s.roots[ch] = root
	if err != nil {
		return fmt.Errorf("adding %s: %w", Join(path), err)
	}
	return nil
}

// DeleteRaw removes the node at path. On a list exactly one element is
// removed and later elements shift down; on a map exactly that key goes.
func (s *Store) DeleteRaw(path []string) error {
	ch, rest, err := splitChannel(path)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		s.roots[ch] = Map(nil)
		return nil
	}
	root, err := remove(s.roots[ch], rest)
	s.roots[ch] = root
	if err != nil {
		return fmt.Errorf("removing %s: %w", Join(path), err)
	}
	return nil
}

// ReplaceChannel replaces an entire channel's raw tree with a deep copy of
// root, which must be a Map (Absent resets the channel to empty).
func (s *Store) ReplaceChannel(ch Channel, root Value) error {
	if _, err := ParseChannel(string(ch)); err != nil {
		return err
	}
	switch root.Kind() {
	case KindAbsent:
		s.roots[ch] = Map(nil)
	case KindMap:
		s.roots[ch] = root.Clone()
	default:
		return fmt.Errorf("%w: channel %s root must be a map, got %s", ErrIncompatibleNode, ch, root.Kind())
	}
	return nil
}

// Read returns the canonical value at a canonical path.
//
// The path is rewritten canonical→raw, the raw node is fetched, and the
// fetched value is rewritten raw→canonical paired with the raw path just
// computed. Missing paths yield Absent.
func (s *Store) Read(path []string) Value {
	rawPath, _ := s.translator.Outgoing(Join(path), Absent())
	raw := s.ReadRaw(Split(rawPath))
	_, v := s.translator.Incoming(rawPath, raw)
	return v
}

// Write stores a canonical (path, value) pair. Both are rewritten
// canonical→raw, the same direction Read uses for its path, and the result is
// written raw.
func (s *Store) Write(path []string, v Value) error {
	rawPath, rawValue := s.translator.Outgoing(Join(path), v)
	return s.WriteRaw(Split(rawPath), rawValue)
}

// Canonical rewrites a raw path and value into canonical form.
func (s *Store) Canonical(rawPath []string, v Value) (string, Value) {
	return s.translator.Incoming(Join(rawPath), v)
}

// RawPath rewrites a canonical path and value into raw form.
func (s *Store) RawPath(path []string, v Value) ([]string, Value) {
	rawPath, rawValue := s.translator.Outgoing(Join(path), v)
	return Split(rawPath), rawValue
}
