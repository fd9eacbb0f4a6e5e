package subscription

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-switcher/internal/mapping"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Item list containers, canonical.
const (
	listScreens    = "screenList"
	listAuxScreens = "auxiliaryScreenList"
)

// masterMemoryCount is the size of the master memory bank per family.
var masterMemoryCount = map[mapping.Family]int{
	mapping.FamilyLivePremier: 1000,
	mapping.FamilyMidra:       500,
}

// RegistryFor builds the subscription registry for a family.
func RegistryFor(f mapping.Family) (*Registry, error) {
	if _, ok := masterMemoryCount[f]; !ok {
		return nil, fmt.Errorf("%w: %q", mapping.ErrUnknownFamily, f)
	}
	return NewRegistry(f, Catalogue(f))
}

// Catalogue returns the subscriptions for a family. Patterns are written
// against canonical paths, so the families differ only in sizes.
func Catalogue(f mapping.Family) []Subscription {
	return []Subscription{
		{
			Name:    "screen-label",
			Pattern: `^hardware/device/screenList/items/(S\d+)/control/pp/label$`,
			Effect:  labelEffect,
			Init:    &Initializer{Generate: screenPaths(listScreens, "/control/pp/label")},
		},
		{
			Name:    "aux-screen-label",
			Pattern: `^hardware/device/auxiliaryScreenList/items/(A\d+)/control/pp/label$`,
			Effect:  labelEffect,
			Init:    &Initializer{Generate: screenPaths(listAuxScreens, "/control/pp/label")},
		},
		{
			Name:    "master-memory-label",
			Pattern: `^hardware/device/masterPresetBank/status/slotList/items/(\d+)/status/label$`,
			Effect:  masterMemoryLabelEffect,
			Init:    &Initializer{Generate: masterMemoryPaths(masterMemoryCount[f])},
		},
		{
			Name:       "settle",
			Pattern:    `^hardware/device/(?:screenList|auxiliaryScreenList)/items/([SA]\d+)/status/pp/transition$`,
			Indicators: []string{IndicatorTransitionSeated},
			Effect:     settleEffect,
			Init: &Initializer{Generate: func(env *Env) []string {
				return append(
					screenPaths(listScreens, "/status/pp/transition")(env),
					screenPaths(listAuxScreens, "/status/pp/transition")(env)...,
				)
			}},
		},
		{
			Name:       "slot-fields",
			Pattern:    `^hardware/device/(?:screenList|auxiliaryScreenList)/items/([SA]\d+)/presetList/items/[AB]/presetId/status/(?:label|memoryId)$`,
			Indicators: []string{IndicatorMemoryOnProgram, IndicatorMemoryOnPreview},
			Effect:     slotFieldsEffect,
		},
		{
			Name:       "screen-enabled",
			Pattern:    `^hardware/device/(?:screenList|auxiliaryScreenList)/items/[SA]\d+/status/isEnabled$`,
			Indicators: []string{IndicatorScreenEnabled},
			Effect:     requestRecompute,
		},
		{
			Name:       "input-signal",
			Pattern:    `^hardware/device/inputList/items/IN\d+/status/signal(/|$)`,
			Indicators: []string{IndicatorInputSignal},
		},
		{
			Name:       "layer-source",
			Pattern:    `^hardware/device/(?:screenList|auxiliaryScreenList)/items/[SA]\d+/presetList/items/[AB]/layerList/items/[^/]+/source(/|$)`,
			Indicators: []string{IndicatorLayerSource},
		},
		{
			Name:       "screen-selection",
			Pattern:    `^local/selection/screens(/|$)`,
			Indicators: []string{IndicatorScreenSelected},
		},
		{
			Name:       "layer-selection",
			Pattern:    `^local/selection/layers(/|$)`,
			Indicators: []string{IndicatorLayerSelected},
		},
		{
			Name:       "lock",
			Pattern:    `^local/lock(/|$)`,
			Indicators: []string{IndicatorScreenLocked},
		},
		{
			Name:    "model",
			Pattern: `^` + mapping.ModelPath + `$`,
			Effect:  requestRecompute,
		},
	}
}

func requestRecompute(*Env, Match) bool { return true }

// labelEffect caches a screen label as screen_<key>_label.
func labelEffect(env *Env, m Match) bool {
	if screen := m.Group(0); screen != "" {
		env.Outputs.SetOutput(ScreenOutput(screen, "label"), m.Value)
	}
	return false
}

// masterMemoryLabelEffect caches a master memory label as
// master_memory_<n>_label.
func masterMemoryLabelEffect(env *Env, m Match) bool {
	if n := m.Group(0); n != "" {
		env.Outputs.SetOutput(MasterMemoryLabelOutput(n), m.Value)
	}
	return false
}

// masterMemoryPaths generates the label paths of memories 1..n.
func masterMemoryPaths(n int) func(*Env) []string {
	return func(*Env) []string {
		paths := make([]string, n)
		for i := range paths {
			paths[i] = "hardware/device/masterPresetBank/status/slotList/items/" + strconv.Itoa(i+1) + "/status/label"
		}
		return paths
	}
}

// screenPaths generates "<list>/items/<key><suffix>" for every item the unit
// currently reports in list.
func screenPaths(list, suffix string) func(*Env) []string {
	return func(env *Env) []string {
		keys := ItemKeys(env.Store, list)
		paths := make([]string, len(keys))
		for i, key := range keys {
			paths[i] = "hardware/device/" + list + "/items/" + key + suffix
		}
		return paths
	}
}

// allScreenKeys returns the canonical keys of screens and auxiliary screens.
func allScreenKeys(env *Env) []string {
	return append(ItemKeys(env.Store, listScreens), ItemKeys(env.Store, listAuxScreens)...)
}

// listForKey returns the container holding a canonical screen key.
func listForKey(key string) string {
	switch {
	case strings.HasPrefix(key, "S"):
		return listScreens
	case strings.HasPrefix(key, "A"):
		return listAuxScreens
	default:
		return ""
	}
}

// ItemKeys returns the canonical keys of the items of a hardware device list
// (for example "S1", "S2" for screenList), in natural order.
//
// The raw container is read and each raw child key is translated through the
// active table, so the keys come out canonical for every family.
func ItemKeys(store *state.Store, list string) []string {
	container := []string{string(state.ChannelHardware), "device", list, "items"}
	rawPath, _ := store.RawPath(container, state.Absent())
	raw := store.ReadRaw(rawPath)

	var rawKeys []string
	if m, ok := raw.AsMap(); ok {
		for k := range m {
			rawKeys = append(rawKeys, k)
		}
	} else if items, ok := raw.AsList(); ok {
		for i := range items {
			rawKeys = append(rawKeys, strconv.Itoa(i+1))
		}
	}

	keys := make([]string, 0, len(rawKeys))
	for _, k := range rawKeys {
		child := append(append([]string(nil), rawPath...), k)
		canonical, _ := store.Canonical(child, state.Absent())
		segs := state.Split(canonical)
		if len(segs) == 0 {
			continue
		}
		keys = append(keys, segs[len(segs)-1])
	}
	sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
	return keys
}

// naturalLess orders "S2" before "S10".
func naturalLess(a, b string) bool {
	pa, na := splitNumericSuffix(a)
	pb, nb := splitNumericSuffix(b)
	if pa != pb {
		return pa < pb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitNumericSuffix(s string) (string, int) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, -1
	}
	return s[:i], n
}
