package mapping

import (
	"fmt"
	"strings"
)

// Family identifies a group of hardware units sharing one wire schema.
type Family string

// Known families.
const (
	// FamilyLivePremier units speak the canonical schema natively.
	FamilyLivePremier Family = "livepremier"

	// FamilyMidra units use numeric item keys and older object names.
	FamilyMidra Family = "midra"
)

// AllFamilies lists every known family.
var AllFamilies = []Family{FamilyLivePremier, FamilyMidra}

// ModelPath is the canonical path of the product model reported by the unit
// in its INIT snapshot.
const ModelPath = "hardware/device/system/deviceInfo/modelName"

// modelPrefixes maps model name prefixes to families.
var modelPrefixes = []struct {
	prefix string
	family Family
}{
	{"AQL_", FamilyLivePremier},
	{"ZENITH_", FamilyLivePremier},
	{"EIKOS", FamilyMidra},
	{"PULSE", FamilyMidra},
	{"QUICKVU", FamilyMidra},
	{"SMARTMATRIX", FamilyMidra},
}

// ParseFamily validates a family name (case-insensitive).
func ParseFamily(name string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllFamilies {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFamily, name)
}

// Identify maps a product model name (for example "AQL_RS4" or "PULSE_4K")
// to its family.
func Identify(model string) (Family, error) {
	m := strings.ToUpper(strings.TrimSpace(model))
	if m == "" {
		return "", fmt.Errorf("%w: empty model name", ErrUnknownFamily)
	}
	for _, mp := range modelPrefixes {
		if strings.HasPrefix(m, mp.prefix) {
			return mp.family, nil
		}
	}
	return "", fmt.Errorf("%w: model %q", ErrUnknownFamily, model)
}

// TableFor builds the rule table for a family.
func TableFor(f Family) (*Table, error) {
	switch f {
	case FamilyLivePremier:
		return NewTable(f, nil)
	case FamilyMidra:
		return NewTable(f, MidraRules())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, f)
	}
}
