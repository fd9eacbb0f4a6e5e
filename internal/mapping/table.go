package mapping

import (
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Logger defines the logging interface used by the Table.
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

// Table is the ordered rule list for one hardware family.
//
// Incoming folds the matching rules in table order; Outgoing folds them in
// reverse order so that Outgoing(Incoming(p)) returns p for every path the
// rules cover. A Table implements state.Translator.
//
// Thread Safety: a Table is immutable after NewTable (SetLogger aside) and
// safe for concurrent use.
type Table struct {
	family Family
	rules  []compiledRule
	logger Logger
}

// NewTable compiles rules into a Table. Every pattern is compiled once here.
//
// Returns ErrInvalidRule if any rule lacks a name or a pattern, or if a
// pattern does not compile.
func NewTable(family Family, rules []Rule) (*Table, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, c)
	}
	return &Table{family: family, rules: compiled, logger: noopLogger{}}, nil
}

// SetLogger sets the logger used to report skipped rules.
func (t *Table) SetLogger(logger Logger) {
	t.logger = logger
}

// Family returns the family this table was built for.
func (t *Table) Family() Family {
	return t.family
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// Incoming rewrites a raw (path, value) into canonical form.
func (t *Table) Incoming(path string, v state.Value) (string, state.Value) {
	selected := make([]compiledDirection, 0, 2)
	names := make([]string, 0, 2)
	for _, r := range t.rules {
		if r.in.re.MatchString(path) {
			selected = append(selected, r.in)
			names = append(names, r.name)
		}
	}
	return t.fold(path, v, selected, names, "incoming")
}

// Outgoing rewrites a canonical (path, value) into raw form.
func (t *Table) Outgoing(path string, v state.Value) (string, state.Value) {
	selected := make([]compiledDirection, 0, 2)
	names := make([]string, 0, 2)
	for i := len(t.rules) - 1; i >= 0; i-- {
		r := t.rules[i]
		if r.out.re.MatchString(path) {
			selected = append(selected, r.out)
			names = append(names, r.name)
		}
	}
	return t.fold(path, v, selected, names, "outgoing")
}

// fold applies the selected directions in order. Selection happens once on
// the input path; a failing rule is logged and skipped.
func (t *Table) fold(path string, v state.Value, selected []compiledDirection, names []string, direction string) (string, state.Value) {
	for i, d := range selected {
		p, nv, err := d.apply(path, v)
		if err != nil {
			t.logger.Warn("rewrite rule skipped",
				"family", string(t.family),
				"rule", names[i],
				"direction", direction,
				"path", path,
				"error", err,
			)
			continue
		}
		path, v = p, nv
	}
	return path, v
}
