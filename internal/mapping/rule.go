package mapping

import (
	"fmt"
	"regexp"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Direction describes one half of a rule: when it applies and what it does.
//
// Pattern is an unanchored regular expression matched against the delimited
// path (channel included). Template, when set, is expanded with
// Regexp.ReplaceAllString to rewrite the path. Path and Value are optional
// custom rewrites; Value is never called for an Absent value.
type Direction struct {
	Pattern  string
	Template string
	Path     func(path string) string
	Value    func(path string, v state.Value) (state.Value, error)
}

// Rule is a bidirectional rewrite. In applies to raw paths arriving from the
// device; Out applies to canonical paths leaving toward it and must be the
// structural inverse of In.
type Rule struct {
	Name string
	In   Direction
	Out  Direction
}

// compiledDirection is a Direction with its pattern compiled.
type compiledDirection struct {
	re  *regexp.Regexp
	dir Direction
}

type compiledRule struct {
	name string
	in   compiledDirection
	out  compiledDirection
}

func compileDirection(rule, side string, d Direction) (compiledDirection, error) {
	if d.Pattern == "" {
		return compiledDirection{}, fmt.Errorf("%w: %s: empty %s pattern", ErrInvalidRule, rule, side)
	}
	re, err := regexp.Compile(d.Pattern)
	if err != nil {
		return compiledDirection{}, fmt.Errorf("%w: %s: %s pattern: %v", ErrInvalidRule, rule, side, err)
	}
	return compiledDirection{re: re, dir: d}, nil
}

func compileRule(r Rule) (compiledRule, error) {
	if r.Name == "" {
		return compiledRule{}, fmt.Errorf("%w: rule has no name", ErrInvalidRule)
	}
	in, err := compileDirection(r.Name, "incoming", r.In)
	if err != nil {
		return compiledRule{}, err
	}
	out, err := compileDirection(r.Name, "outgoing", r.Out)
	if err != nil {
		return compiledRule{}, err
	}
	return compiledRule{name: r.Name, in: in, out: out}, nil
}

// apply runs a single direction against (path, v). Panics and errors raised
// by custom rewrites are returned as errors; the caller keeps the input.
func (c compiledDirection) apply(path string, v state.Value) (outPath string, outValue state.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rewrite panicked: %v", r)
		}
	}()

	outPath = path
	if c.dir.Template != "" {
		outPath = c.re.ReplaceAllString(outPath, c.dir.Template)
	}
	if c.dir.Path != nil {
		outPath = c.dir.Path(outPath)
	}

	outValue = v
	if c.dir.Value != nil && !v.IsAbsent() {
		outValue, err = c.dir.Value(outPath, v)
		if err != nil {
			return path, v, err
		}
	}
	return outPath, outValue, nil
}
