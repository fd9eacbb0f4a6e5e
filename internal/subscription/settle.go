package subscription

import (
	"fmt"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Slot names one of the two preset slots of a screen.
type Slot string

// The two preset slots.
const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

// Transition status values, canonical.
const (
	TransitionAtUp       = "AT_UP"
	TransitionAtDown     = "AT_DOWN"
	TransitionMovingUp   = "TRANSITION_UP"
	TransitionMovingDown = "TRANSITION_DOWN"
)

// Settle records which slot is on program and which on preview for one
// screen. Program and Preview are always distinct.
type Settle struct {
	Program Slot
	Preview Slot
}

// DefaultSettle is assumed for screens that never reported a seated
// transition.
var DefaultSettle = Settle{Program: SlotA, Preview: SlotB}

// SettleFor maps a transition status to the settle state it implies.
// In-progress and unknown values report false.
func SettleFor(transition string) (Settle, bool) {
	switch transition {
	case TransitionAtDown:
		return Settle{Program: SlotA, Preview: SlotB}, true
	case TransitionAtUp:
		return Settle{Program: SlotB, Preview: SlotA}, true
	default:
		return Settle{}, false
	}
}

// Value encodes the record as stored in the local channel.
func (s Settle) Value() state.Value {
	return state.Map(map[string]state.Value{
		"program": state.String(string(s.Program)),
		"preview": state.String(string(s.Preview)),
	})
}

// SlotFor returns the slot holding role ("program" or "preview").
func (s Settle) SlotFor(role string) Slot {
	if role == RolePreview {
		return s.Preview
	}
	return s.Program
}

// Output roles.
const (
	RoleProgram = "program"
	RolePreview = "preview"
)

// SettlePath returns the canonical local path of a screen's settle record.
func SettlePath(screen string) []string {
	return []string{string(state.ChannelLocal), "settle", screen}
}

// ReadSettle returns the settle record of a screen, or DefaultSettle when it
// is missing or malformed.
func ReadSettle(store *state.Store, screen string) Settle {
	v := store.Read(SettlePath(screen))
	program, _ := v.Child("program").AsString()
	preview, _ := v.Child("preview").AsString()
	s := Settle{Program: Slot(program), Preview: Slot(preview)}
	if !validSlot(s.Program) || !validSlot(s.Preview) || s.Program == s.Preview {
		return DefaultSettle
	}
	return s
}

func validSlot(s Slot) bool {
	return s == SlotA || s == SlotB
}

// settleEffect updates a screen's settle record when its transition status
// becomes fully seated, then refreshes the screen's program and preview
// outputs. In-progress values change nothing.
func settleEffect(env *Env, m Match) bool {
	screen := m.Group(0)
	status, _ := m.Value.AsString()
	next, seated := SettleFor(status)
	if screen == "" || !seated {
		return false
	}
	if err := env.Store.Write(SettlePath(screen), next.Value()); err != nil {
		env.Logger.Warn("writing settle record failed", "screen", screen, "error", err)
		return false
	}
	refreshScreenOutputs(env, screen)
	return false
}

// slotFieldsEffect refreshes the program and preview outputs of the screen
// whose slot changed, or of every screen during a sweep.
func slotFieldsEffect(env *Env, m Match) bool {
	if m.Path == "" {
		for _, screen := range allScreenKeys(env) {
			refreshScreenOutputs(env, screen)
		}
		return false
	}
	refreshScreenOutputs(env, m.Group(0))
	return false
}

// refreshScreenOutputs recomputes screen_<key>_{program,preview}_{label,memory}
// from the slots selected by the settle record.
func refreshScreenOutputs(env *Env, screen string) {
	list := listForKey(screen)
	if list == "" {
		return
	}
	settle := ReadSettle(env.Store, screen)
	for _, role := range []string{RoleProgram, RolePreview} {
		base := fmt.Sprintf("hardware/device/%s/items/%s/presetList/items/%s/presetId/status/",
			list, screen, settle.SlotFor(role))
		env.Outputs.SetOutput(ScreenOutput(screen, role+"_label"), env.Store.Read(state.Split(base+"label")))
		env.Outputs.SetOutput(ScreenOutput(screen, role+"_memory"), env.Store.Read(state.Split(base+"memoryId")))
	}
}
