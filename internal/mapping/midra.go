package mapping

import (
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Transition enumerants, canonical and Midra-native.
var (
	midraTransitionIn = map[string]string{
		"UP":          "AT_UP",
		"DOWN":        "AT_DOWN",
		"MOVING_UP":   "TRANSITION_UP",
		"MOVING_DOWN": "TRANSITION_DOWN",
	}
	midraTransitionOut = invert(midraTransitionIn)
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// MidraRules returns the rule list translating the Midra wire schema into
// the canonical schema.
//
// The rules are independent: no rule's pattern depends on another rule's
// rewrite, so the fold order only matters for the inverse guarantee.
func MidraRules() []Rule {
	return []Rule{
		itemKeyRule("screen-keys", "screenList", "S"),
		itemKeyRule("aux-screen-keys", "auxiliaryScreenList", "A"),
		itemKeyRule("input-keys", "inputList", "IN"),
		{
			Name: "master-preset-bank",
			In: Direction{
				Pattern:  `(^|/)device/presetBank(/|$)`,
				Template: "${1}device/masterPresetBank${2}",
			},
			Out: Direction{
				Pattern:  `(^|/)device/masterPresetBank(/|$)`,
				Template: "${1}device/presetBank${2}",
			},
		},
		{
			Name: "background-layer",
			In: Direction{
				Pattern:  `/presetList/items/([AB])/background(/|$)`,
				Template: "/presetList/items/${1}/layerList/items/NATIVE${2}",
			},
			Out: Direction{
				Pattern:  `/presetList/items/([AB])/layerList/items/NATIVE(/|$)`,
				Template: "/presetList/items/${1}/background${2}",
			},
		},
		{
			Name: "transition-status",
			In: Direction{
				Pattern: `/status/pp/transition$`,
				Value:   enumRewrite(midraTransitionIn),
			},
			Out: Direction{
				Pattern: `/status/pp/transition$`,
				Value:   enumRewrite(midraTransitionOut),
			},
		},
		{
			Name: "layer-selection",
			In: Direction{
				Pattern: `(^|/)selection/layers(/\d+)?$`,
				Value:   eachItem(flatToLayerRef),
			},
			Out: Direction{
				Pattern: `(^|/)selection/layers(/\d+)?$`,
				Value:   eachItem(layerRefToFlat),
			},
		},
	}
}

// itemKeyRule maps numeric item keys of a list container to prefixed keys:
// "<list>/items/3" ↔ "<list>/items/<prefix>3".
func itemKeyRule(name, list, prefix string) Rule {
	return Rule{
		Name: name,
		In: Direction{
			Pattern:  `(^|/)` + list + `/items/(\d+)(/|$)`,
			Template: "${1}" + list + "/items/" + prefix + "${2}${3}",
		},
		Out: Direction{
			Pattern:  `(^|/)` + list + `/items/` + prefix + `(\d+)(/|$)`,
			Template: "${1}" + list + "/items/${2}${3}",
		},
	}
}

// enumRewrite maps string values through table; unknown strings pass through.
func enumRewrite(table map[string]string) func(string, state.Value) (state.Value, error) {
	return func(_ string, v state.Value) (state.Value, error) {
		s, ok := v.AsString()
		if !ok {
			return v, fmt.Errorf("%w: want string, got %s", ErrUnmappableValue, v.Kind())
		}
		if mapped, ok := table[s]; ok {
			return state.String(mapped), nil
		}
		return v, nil
	}
}

// eachItem applies fn to a single value, or to every item of a list.
func eachItem(fn func(state.Value) (state.Value, error)) func(string, state.Value) (state.Value, error) {
	return func(_ string, v state.Value) (state.Value, error) {
		items, ok := v.AsList()
		if !ok {
			return fn(v)
		}
		out := make([]state.Value, len(items))
		for i, item := range items {
			mapped, err := fn(item)
			if err != nil {
				return v, err
			}
			out[i] = mapped
		}
		return state.List(out...), nil
	}
}

// Midra writes a layer selection as "<screen>:<layer>". Screens are bare
// numbers; auxiliary screens keep their "A" prefix so the two cannot collide.
const flatAuxPrefix = "A"

// flatToLayerRef converts "1:2" into {"screenKey":"S1","layerKey":"2"} and
// "A1:2" into {"screenKey":"A1","layerKey":"2"}.
func flatToLayerRef(v state.Value) (state.Value, error) {
	s, ok := v.AsString()
	if !ok {
		return v, fmt.Errorf("%w: layer selection %s", ErrUnmappableValue, v)
	}
	screen, layer, found := strings.Cut(s, ":")
	if !found || layer == "" {
		return v, fmt.Errorf("%w: layer selection %q", ErrUnmappableValue, s)
	}

	key := "S" + screen
	if n, aux := strings.CutPrefix(screen, flatAuxPrefix); aux {
		key, screen = "A"+n, n
	}
	if !isDigits(screen) {
		return v, fmt.Errorf("%w: layer selection %q", ErrUnmappableValue, s)
	}
	return state.Map(map[string]state.Value{
		"screenKey": state.String(key),
		"layerKey":  state.String(layer),
	}), nil
}

// layerRefToFlat converts {"screenKey":"S1","layerKey":"2"} into "1:2" and
// {"screenKey":"A1","layerKey":"2"} into "A1:2".
func layerRefToFlat(v state.Value) (state.Value, error) {
	screen, _ := v.Child("screenKey").AsString()
	layer := v.Child("layerKey").Text()
	if len(screen) < 2 || layer == "" || !isDigits(screen[1:]) {
		return v, fmt.Errorf("%w: layer selection %s", ErrUnmappableValue, v)
	}
	switch screen[0] {
	case 'S':
		return state.String(screen[1:] + ":" + layer), nil
	case 'A':
		return state.String(flatAuxPrefix + screen[1:] + ":" + layer), nil
	default:
		return v, fmt.Errorf("%w: layer selection %s", ErrUnmappableValue, v)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
