package state

import (
	"fmt"
	"strings"
)

// Separator delimits path segments in the string form of a path.
const Separator = "/"

// Split turns a delimited path into segments. Leading, trailing and repeated
// separators are ignored, so "", "/" and "//" all address the root.
func Split(path string) []string {
	parts := strings.Split(path, Separator)
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// Join renders segments as a delimited path without leading or trailing
// separators.
func Join(segs []string) string {
	return strings.Join(segs, Separator)
}

// Concat normalizes mixed path fragments into a single path.
//
// Each part is either a string (a delimited path) or a []string (segments);
// any other value is formatted with fmt.Sprint and used as one segment.
// When every part is a string the result is a string, and a single leading
// separator is kept if the first part had one and a single trailing separator
// if the last part had one. Otherwise the result is a []string.
func Concat(parts ...any) any {
	allStrings := true
	var segs []string
	for _, part := range parts {
		switch p := part.(type) {
		case string:
			segs = append(segs, Split(p)...)
		case []string:
			allStrings = false
			for _, s := range p {
				segs = append(segs, Split(s)...)
			}
		default:
			allStrings = false
			segs = append(segs, fmt.Sprint(p))
		}
	}
	if !allStrings {
		if segs == nil {
			segs = []string{}
		}
		return segs
	}

	joined := Join(segs)
	if len(parts) == 0 {
		return joined
	}
	first, _ := parts[0].(string)            //nolint:errcheck // allStrings guarantees the assertion
	last, _ := parts[len(parts)-1].(string) //nolint:errcheck // allStrings guarantees the assertion
	if strings.HasPrefix(first, Separator) {
		joined = Separator + joined
	}
	if strings.HasSuffix(last, Separator) && joined != Separator {
		joined += Separator
	}
	return joined
}

// ParsePointer decodes an RFC 6901 JSON pointer ("/a/b~1c") into segments.
// The empty pointer addresses the root.
func ParsePointer(ptr string) ([]string, error) {
	if ptr == "" {
		return []string{}, nil
	}
	if !strings.HasPrefix(ptr, Separator) {
		return nil, fmt.Errorf("%w: %q must start with %q", ErrInvalidPointer, ptr, Separator)
	}
	raw := strings.Split(ptr[1:], Separator)
	segs := make([]string, len(raw))
	for i, s := range raw {
		if strings.Contains(strings.ReplaceAll(strings.ReplaceAll(s, "~0", ""), "~1", ""), "~") {
			return nil, fmt.Errorf("%w: bad escape in %q", ErrInvalidPointer, ptr)
		}
		segs[i] = strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
	}
	return segs, nil
}

// FormatPointer encodes segments as an RFC 6901 JSON pointer.
func FormatPointer(segs []string) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(Separator)
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1"))
	}
	return b.String()
}
