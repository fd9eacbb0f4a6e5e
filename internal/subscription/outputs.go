package subscription

import (
	"sort"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Outputs is the derived-output storage owned by the layer above: cached
// display fields such as screen labels and program/preview memory names.
type Outputs interface {
	SetOutput(name string, v state.Value)
	Output(name string) state.Value
}

// MemoryOutputs is a map-backed Outputs that tracks which outputs changed
// since the last Drain.
//
// Thread Safety: not safe for concurrent use; owned by the session loop.
type MemoryOutputs struct {
	values map[string]state.Value
	dirty  map[string]struct{}
}

// NewMemoryOutputs creates an empty MemoryOutputs.
func NewMemoryOutputs() *MemoryOutputs {
	return &MemoryOutputs{
		values: make(map[string]state.Value),
		dirty:  make(map[string]struct{}),
	}
}

// SetOutput stores v under name. Setting Absent removes the output. Only
// actual changes mark the output dirty.
func (o *MemoryOutputs) SetOutput(name string, v state.Value) {
	old, ok := o.values[name]
	if v.IsAbsent() {
		if !ok {
			return
		}
		delete(o.values, name)
		o.dirty[name] = struct{}{}
		return
	}
	if ok && state.Equal(old, v) {
		return
	}
	o.values[name] = v.Clone()
	o.dirty[name] = struct{}{}
}

// Output returns the value stored under name, or Absent.
func (o *MemoryOutputs) Output(name string) state.Value {
	return o.values[name]
}

// Names returns every output name, sorted.
func (o *MemoryOutputs) Names() []string {
	names := make([]string, 0, len(o.values))
	for name := range o.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of every output.
func (o *MemoryOutputs) Snapshot() map[string]state.Value {
	out := make(map[string]state.Value, len(o.values))
	for name, v := range o.values {
		out[name] = v.Clone()
	}
	return out
}

// Drain returns the outputs changed since the previous Drain and clears the
// dirty set. Removed outputs are reported as Absent.
func (o *MemoryOutputs) Drain() map[string]state.Value {
	if len(o.dirty) == 0 {
		return nil
	}
	out := make(map[string]state.Value, len(o.dirty))
	for name := range o.dirty {
		out[name] = o.values[name].Clone()
	}
	o.dirty = make(map[string]struct{})
	return out
}
