package subscription

import (
	"sort"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Result is what a dispatch or sweep asks the owning layer to do.
type Result struct {
	// Indicators lists the indicator IDs to recheck, sorted and unique.
	Indicators []string

	// All means every indicator must be rechecked (Indicators is then nil).
	All bool

	// Recompute requests one broader recompute of the derived outputs.
	Recompute bool
}

// Empty reports whether the result asks for nothing.
func (r Result) Empty() bool {
	return !r.All && !r.Recompute && len(r.Indicators) == 0
}

// Merge combines two results. Indicator sets are unioned; All and Recompute
// are or-ed. Callers use it to coalesce a batch into one notification.
func (r Result) Merge(o Result) Result {
	out := Result{
		All:       r.All || o.All,
		Recompute: r.Recompute || o.Recompute,
	}
	if out.All {
		return out
	}
	out.Indicators = union(r.Indicators, o.Indicators)
	return out
}

func union(sets ...[]string) []string {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, id := range set {
			seen[id] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Metrics receives dispatcher counters. It is satisfied by *metrics.Metrics.
type Metrics interface {
	ObserveDispatch(matched int)
	ObserveSweep(calls int)
	ObserveEffectPanic(subscription string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveDispatch(int)       {}
func (noopMetrics) ObserveSweep(int)          {}
func (noopMetrics) ObserveEffectPanic(string) {}

// Dispatcher runs the active Registry against canonical paths.
//
// Thread Safety: a Dispatcher is owned by the session loop and performs no
// locking.
type Dispatcher struct {
	env      *Env
	registry *Registry
	metrics  Metrics
}

// NewDispatcher creates a Dispatcher over store and outputs with an empty
// registry. Call SetRegistry once the family is known.
func NewDispatcher(store *state.Store, outputs Outputs) *Dispatcher {
	if outputs == nil {
		outputs = NewMemoryOutputs()
	}
	empty, _ := NewRegistry("", nil) //nolint:errcheck // an empty list cannot fail
	return &Dispatcher{
		env:      &Env{Store: store, Outputs: outputs, Logger: noopLogger{}},
		registry: empty,
		metrics:  noopMetrics{},
	}
}

// SetLogger sets the logger for the dispatcher and its side effects.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.env.Logger = logger
}

// SetMetrics sets the metrics sink.
func (d *Dispatcher) SetMetrics(m Metrics) {
	d.metrics = m
}

// SetRegistry swaps the active registry wholesale.
func (d *Dispatcher) SetRegistry(r *Registry) {
	d.registry = r
}

// Registry returns the active registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Env returns the side-effect environment.
func (d *Dispatcher) Env() *Env {
	return d.env
}

// Dispatch runs every subscription whose pattern matches the canonical path
// and returns the union of their indicator IDs. An empty path is a sweep.
func (d *Dispatcher) Dispatch(path string, v state.Value, hasValue bool) Result {
	if path == "" {
		return d.Sweep()
	}

	var (
		indicators []string
		recompute  bool
		matched    int
	)
	for _, s := range d.registry.subs {
		groups := s.re.FindStringSubmatch(path)
		if groups == nil {
			continue
		}
		matched++
		indicators = append(indicators, s.Indicators...)
		m := Match{Path: path, Value: v, HasValue: hasValue, Groups: groups[1:]}
		if d.run(s, m) {
			recompute = true
		}
	}
	d.metrics.ObserveDispatch(matched)

	return Result{Indicators: union(indicators), Recompute: recompute}
}

// Sweep runs every subscription's effect once without a path. Capturing
// subscriptions with an initializer are then expanded as well: their effect
// runs once per initializer path, with the value currently stored there.
//
// A sweep always asks for every indicator. It asks for a broader recompute
// only when one of the effects does.
func (d *Dispatcher) Sweep() Result {
	calls := 0
	recompute := false
	for _, s := range d.registry.subs {
		if d.run(s, Match{}) {
			recompute = true
		}
		calls++

		if s.Init == nil || !s.capturing() {
			continue
		}
		for _, p := range s.Init.paths(d.env) {
			groups := s.re.FindStringSubmatch(p)
			if groups == nil {
				d.env.Logger.Debug("initializer path does not match", "subscription", s.Name, "path", p)
				continue
			}
			v := d.env.Store.Read(state.Split(p))
			if d.run(s, Match{Path: p, Value: v, HasValue: !v.IsAbsent(), Groups: groups[1:]}) {
				recompute = true
			}
			calls++
		}
	}
	d.metrics.ObserveSweep(calls)

	return Result{All: true, Recompute: recompute}
}

// run executes one side effect. A panicking effect is logged and treated as
// requesting nothing.
func (d *Dispatcher) run(s compiledSubscription, m Match) (recompute bool) {
	if s.Effect == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			d.env.Logger.Error("subscription effect panicked",
				"subscription", s.Name,
				"path", m.Path,
				"panic", r,
			)
			d.metrics.ObserveEffectPanic(s.Name)
			recompute = false
		}
	}()
	return s.Effect(d.env, m)
}
