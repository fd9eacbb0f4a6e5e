package subscription

import (
	"testing"

	"github.com/nerrad567/gray-logic-switcher/internal/mapping"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

const transitionS1 = "hardware/device/screenList/items/S1/status/pp/transition"

func catalogueDispatcher(t *testing.T, family mapping.Family) (*Dispatcher, *state.Store, *MemoryOutputs) {
	t.Helper()
	store := state.NewStore()
	table, err := mapping.TableFor(family)
	if err != nil {
		t.Fatalf("TableFor() error = %v", err)
	}
	store.SetTranslator(table)

	outputs := NewMemoryOutputs()
	d := NewDispatcher(store, outputs)
	r, err := RegistryFor(family)
	if err != nil {
		t.Fatalf("RegistryFor() error = %v", err)
	}
	d.SetRegistry(r)
	return d, store, outputs
}

func writeSlot(t *testing.T, store *state.Store, screen, slot, label, memory string) {
	t.Helper()
	base := "hardware/device/screenList/items/" + screen + "/presetList/items/" + slot + "/presetId/status/"
	if err := store.Write(state.Split(base+"label"), state.String(label)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := store.Write(state.Split(base+"memoryId"), state.String(memory)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
}

func TestSettle_Invariants(t *testing.T) {
	d, store, outputs := catalogueDispatcher(t, mapping.FamilyLivePremier)
	writeSlot(t, store, "S1", "A", "Opening", "1")
	writeSlot(t, store, "S1", "B", "Keynote", "2")

	steps := []struct {
		status      string
		wantProgram Slot
		wantPreview Slot
	}{
		{TransitionAtUp, SlotB, SlotA},
		{TransitionMovingDown, SlotB, SlotA},
		{TransitionAtDown, SlotA, SlotB},
		{TransitionMovingUp, SlotA, SlotB},
		{"GARBAGE", SlotA, SlotB},
		{TransitionAtUp, SlotB, SlotA},
	}

	for _, step := range steps {
		res := d.Dispatch(transitionS1, state.String(step.status), true)
		if len(res.Indicators) != 1 || res.Indicators[0] != IndicatorTransitionSeated {
			t.Errorf("%s: Indicators = %v", step.status, res.Indicators)
		}

		got := ReadSettle(store, "S1")
		if got.Program != step.wantProgram || got.Preview != step.wantPreview {
			t.Errorf("%s: settle = %+v, want program=%s preview=%s",
				step.status, got, step.wantProgram, step.wantPreview)
		}
		if got.Program == got.Preview {
			t.Errorf("%s: program and preview share slot %s", step.status, got.Program)
		}
	}

	// Last seated status was AT_UP: program on B.
	if got := outputs.Output("screen_S1_program_label"); !state.Equal(got, state.String("Keynote")) {
		t.Errorf("program label = %v, want Keynote", got)
	}
	if got := outputs.Output("screen_S1_preview_memory"); !state.Equal(got, state.String("1")) {
		t.Errorf("preview memory = %v, want 1", got)
	}
}

func TestSettle_InProgressChangesNothing(t *testing.T) {
	d, store, outputs := catalogueDispatcher(t, mapping.FamilyLivePremier)
	writeSlot(t, store, "S1", "A", "Opening", "1")

	d.Dispatch(transitionS1, state.String(TransitionMovingUp), true)

	if got := store.Read(SettlePath("S1")); !got.IsAbsent() {
		t.Errorf("settle record written for in-progress status: %v", got)
	}
	if names := outputs.Names(); len(names) != 0 {
		t.Errorf("outputs written for in-progress status: %v", names)
	}
}

func TestSlotFields_RefreshOnChange(t *testing.T) {
	d, store, outputs := catalogueDispatcher(t, mapping.FamilyLivePremier)
	writeSlot(t, store, "S2", "B", "Panel", "9")

	path := "hardware/device/screenList/items/S2/presetList/items/B/presetId/status/label"
	res := d.Dispatch(path, state.String("Panel"), true)

	if len(res.Indicators) != 2 {
		t.Errorf("Indicators = %v, want memory_on_program and memory_on_preview", res.Indicators)
	}
	// Default settle: B is preview.
	if got := outputs.Output("screen_S2_preview_label"); !state.Equal(got, state.String("Panel")) {
		t.Errorf("preview label = %v, want Panel", got)
	}
}

func TestCatalogue_MidraLabelsAndSweep(t *testing.T) {
	d, store, outputs := catalogueDispatcher(t, mapping.FamilyMidra)

	var snapshot state.Value
	doc := `{
		"device": {
			"screenList": {"items": {
				"1":  {"control": {"pp": {"label": "Left"}},  "status": {"pp": {"transition": "UP"}}},
				"10": {"control": {"pp": {"label": "Wide"}}}
			}},
			"presetBank": {"status": {"slotList": {"items": {"7": {"status": {"label": "Walk-in"}}}}}}
		}
	}`
	if err := snapshot.UnmarshalJSON([]byte(doc)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if err := store.ReplaceChannel(state.ChannelHardware, snapshot); err != nil {
		t.Fatalf("ReplaceChannel() error = %v", err)
	}

	if keys := ItemKeys(store, "screenList"); len(keys) != 2 || keys[0] != "S1" || keys[1] != "S10" {
		t.Errorf("ItemKeys() = %v, want [S1 S10]", keys)
	}

	d.Sweep()

	want := map[string]string{
		"screen_S1_label":       "Left",
		"screen_S10_label":      "Wide",
		"master_memory_7_label": "Walk-in",
	}
	for name, label := range want {
		if got := outputs.Output(name); !state.Equal(got, state.String(label)) {
			t.Errorf("%s = %v, want %q", name, got, label)
		}
	}
	// Raw "UP" is canonical AT_UP: program on B.
	if got := ReadSettle(store, "S1"); got.Program != SlotB {
		t.Errorf("settle after sweep = %+v, want program B", got)
	}

	// Canonical dispatch of a single label.
	d.Dispatch("hardware/device/screenList/items/S10/control/pp/label", state.String("Ultra"), true)
	if got := outputs.Output("screen_S10_label"); !state.Equal(got, state.String("Ultra")) {
		t.Errorf("screen_S10_label = %v, want Ultra", got)
	}
}

func TestCatalogue_LocalIndicators(t *testing.T) {
	d, _, _ := catalogueDispatcher(t, mapping.FamilyLivePremier)

	tests := []struct {
		path string
		want string
	}{
		{"local/selection/screens", IndicatorScreenSelected},
		{"local/selection/layers/1", IndicatorLayerSelected},
		{"local/lock", IndicatorScreenLocked},
		{"hardware/device/inputList/items/IN3/status/signal", IndicatorInputSignal},
	}
	for _, tt := range tests {
		res := d.Dispatch(tt.path, state.Bool(true), true)
		if len(res.Indicators) != 1 || res.Indicators[0] != tt.want {
			t.Errorf("Dispatch(%q) = %v, want [%s]", tt.path, res.Indicators, tt.want)
		}
	}

	if res := d.Dispatch(mapping.ModelPath, state.String("AQL_RS4"), true); !res.Recompute {
		t.Error("model change did not request a recompute")
	}
}
