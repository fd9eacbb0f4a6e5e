package subscription

import (
	"fmt"
	"regexp"

	"github.com/nerrad567/gray-logic-switcher/internal/mapping"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Logger defines the logging interface used by the Dispatcher and by
// side effects.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Match is what a side effect is told about the change that triggered it.
// Path is empty when the effect runs as part of an unparameterised sweep.
type Match struct {
	Path     string
	Value    state.Value
	HasValue bool

	// Groups holds the pattern's capture groups (index 0 is the first group).
	Groups []string
}

// Group returns capture group i, or "" when it does not exist.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Env is the context handed to side effects.
type Env struct {
	Store   *state.Store
	Outputs Outputs
	Logger  Logger
}

// Effect runs when a subscription matches. It may read and write the Store
// and the derived outputs. Returning true requests a broader recompute of
// everything derived.
type Effect func(env *Env, m Match) bool

// Initializer lists the canonical paths a capturing subscription is expanded
// against during a sweep: either a fixed list, a generator, or both.
type Initializer struct {
	Paths    []string
	Generate func(env *Env) []string
}

// paths returns the fixed paths followed by the generated ones.
func (i *Initializer) paths(env *Env) []string {
	out := append([]string(nil), i.Paths...)
	if i.Generate != nil {
		out = append(out, i.Generate(env)...)
	}
	return out
}

// Subscription is a reactive rule keyed by a pattern on canonical paths.
type Subscription struct {
	Name       string
	Pattern    string
	Indicators []string
	Effect     Effect
	Init       *Initializer
}

type compiledSubscription struct {
	Subscription
	re *regexp.Regexp
}

// capturing reports whether the pattern has capture groups.
func (c compiledSubscription) capturing() bool {
	return c.re.NumSubexp() > 0
}

// Registry is the immutable, ordered subscription list for one family.
type Registry struct {
	family mapping.Family
	subs   []compiledSubscription
}

// NewRegistry compiles subs into a Registry. Each pattern is compiled once.
func NewRegistry(family mapping.Family, subs []Subscription) (*Registry, error) {
	seen := make(map[string]bool, len(subs))
	compiled := make([]compiledSubscription, 0, len(subs))
	for _, s := range subs {
		if s.Name == "" || s.Pattern == "" {
			return nil, fmt.Errorf("%w: name and pattern are required", ErrInvalidSubscription)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSubscription, s.Name)
		}
		seen[s.Name] = true

		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSubscription, s.Name, err)
		}
		compiled = append(compiled, compiledSubscription{Subscription: s, re: re})
	}
	return &Registry{family: family, subs: compiled}, nil
}

// Family returns the family this registry was built for.
func (r *Registry) Family() mapping.Family {
	return r.family
}

// Len returns the number of subscriptions.
func (r *Registry) Len() int {
	return len(r.subs)
}

// Names returns the subscription names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.subs))
	for i, s := range r.subs {
		names[i] = s.Name
	}
	return names
}
