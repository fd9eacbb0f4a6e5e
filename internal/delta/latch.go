package delta

import (
	"time"

	"github.com/zoobzio/clockz"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// DefaultLatchWindow is how long hardware must stay quiet before the last
// full replace is latched.
const DefaultLatchWindow = 800 * time.Millisecond

// RawChange is a raw (path, value) pair as it arrived from the unit.
type RawChange struct {
	Path  []string
	Value state.Value
}

// Latch remembers the last raw hardware change once the stream has been
// quiet for the window. Every Observe restarts the window.
//
// Evaluation is lazy: the latch holds no goroutine or timer, it compares
// timestamps when Last is called.
//
// Thread Safety: owned by the session loop; not safe for concurrent use.
type Latch struct {
	clock  clockz.Clock
	window time.Duration

	pending   *RawChange
	pendingAt time.Time
	last      *RawChange
}

// NewLatch creates a Latch. A nil clock uses clockz.RealClock; a window of
// zero or less uses DefaultLatchWindow.
func NewLatch(clock clockz.Clock, window time.Duration) *Latch {
	if clock == nil {
		clock = clockz.RealClock
	}
	if window <= 0 {
		window = DefaultLatchWindow
	}
	return &Latch{clock: clock, window: window}
}

// Observe records a candidate change and restarts the quiet window.
func (l *Latch) Observe(path []string, v state.Value) {
	l.pending = &RawChange{Path: append([]string(nil), path...), Value: v.Clone()}
	l.pendingAt = l.clock.Now()
}

// Last returns the latched change, committing the pending one first if the
// window has elapsed since it was observed.
func (l *Latch) Last() (RawChange, bool) {
	l.settle()
	if l.last == nil {
		return RawChange{}, false
	}
	return *l.last, true
}

// Pending reports whether a change is waiting for the window to elapse.
func (l *Latch) Pending() bool {
	l.settle()
	return l.pending != nil
}

// Window returns the quiet window.
func (l *Latch) Window() time.Duration {
	return l.window
}

func (l *Latch) settle() {
	if l.pending == nil {
		return
	}
	if l.clock.Now().Sub(l.pendingAt) < l.window {
		return
	}
	l.last = l.pending
	l.pending = nil
}
