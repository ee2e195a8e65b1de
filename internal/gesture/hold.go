package gesture

import "time"

// StaleAfter is the maximum gap between consecutive samples before tracking
// state is abandoned. It is a fixed constant, deliberately independent of the
// configurable hold time.
const StaleAfter = 2 * time.Second

// Phase is the tracker's position in the hold lifecycle.
type Phase int

const (
	// PhaseIdle means no gesture is being tracked.
	PhaseIdle Phase = iota
	// PhaseTracking means a gesture is held and accumulating hold time.
	PhaseTracking
	// PhaseFired means a terminal gesture already triggered its action and
	// further samples of the same label are suppressed.
	PhaseFired
)

// String returns a readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseTracking:
		return "tracking"
	case PhaseFired:
		return "fired"
	default:
		return "idle"
	}
}

// Action is a device action produced by a completed hold.
type Action string

const (
	ActionTurnedOn  Action = "turned_on"
	ActionTurnedOff Action = "turned_off"
)

// Tracker turns a stream of gesture samples into edge-triggered select and
// action events. One tracker belongs to exactly one session and is not safe
// for concurrent use. All timing derives from sample timestamps, never from
// the wall clock, so irregular frame arrival does not skew hold accumulation.
type Tracker struct {
	phase     Phase
	label     Label
	startedAt time.Time
	lastSeen  time.Time
}

// NewTracker returns a tracker in the idle phase.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Phase returns the current phase.
func (t *Tracker) Phase() Phase {
	return t.phase
}

// Label returns the label currently being tracked, LabelNone when idle.
func (t *Tracker) Label() Label {
	return t.label
}

// Reset returns the tracker to idle, discarding any accumulated hold.
func (t *Tracker) Reset() {
	t.phase = PhaseIdle
	t.label = LabelNone
	t.startedAt = time.Time{}
	t.lastSeen = time.Time{}
}

// Result describes the outcome of advancing the tracker by one sample.
type Result struct {
	// Sample is the effective sample after staleness handling. It differs
	// from the input only when a stale gap forced a reset, in which case it
	// reports no hand regardless of what the frame contained.
	Sample Sample

	// HoldDuration is how long the current label has been held.
	HoldDuration time.Duration

	// Selected is the selection label entered by this sample, LabelNone
	// when no select event fired.
	Selected Label

	// Action is the device action triggered by this sample, empty when no
	// action event fired.
	Action Action
}

// Advance feeds one sample through the state machine and reports what it
// produced. A terminal label held for at least holdTime fires its action
// exactly once per unbroken hold; selection labels fire exactly one select
// event per continuous entry; a gap longer than StaleAfter consumes the
// revealing sample as a reset observation.
func (t *Tracker) Advance(s Sample, holdTime time.Duration) Result {
	if !t.lastSeen.IsZero() && s.ObservedAt.Sub(t.lastSeen) > StaleAfter {
		t.phase = PhaseIdle
		t.label = LabelNone
		t.startedAt = time.Time{}
		t.lastSeen = s.ObservedAt
		return Result{Sample: Sample{Label: LabelNone, ObservedAt: s.ObservedAt}}
	}
	t.lastSeen = s.ObservedAt

	if s.Label == LabelNone {
		t.phase = PhaseIdle
		t.label = LabelNone
		t.startedAt = time.Time{}
		return Result{Sample: s}
	}

	res := Result{Sample: s}

	switch {
	case t.phase == PhaseIdle || s.Label != t.label:
		// Entering a label restarts timing from this sample.
		t.phase = PhaseTracking
		t.label = s.Label
		t.startedAt = s.ObservedAt
		if s.Label.IsSelection() {
			res.Selected = s.Label
		}

	case t.phase == PhaseTracking:
		res.HoldDuration = s.ObservedAt.Sub(t.startedAt)
		if s.Label.IsTerminal() && res.HoldDuration >= holdTime {
			t.phase = PhaseFired
			if s.Label == LabelOpenPalm {
				res.Action = ActionTurnedOn
			} else {
				res.Action = ActionTurnedOff
			}
		}

	case t.phase == PhaseFired:
		res.HoldDuration = s.ObservedAt.Sub(t.startedAt)
	}

	return res
}
