// Package gesture provides gesture classification and hold-time tracking.
package gesture

import (
	"time"

	"github.com/tusharNova/hgr/internal/detector"
)

// Label identifies a classified gesture.
type Label int

const (
	// LabelNone means no hand was detected with sufficient confidence.
	LabelNone Label = iota
	// LabelFist is a closed fist (zero fingers), the turn-off gesture.
	LabelFist
	LabelOne
	LabelTwo
	LabelThree
	LabelFour
	// LabelOpenPalm is a fully open hand (five fingers), the turn-on gesture.
	LabelOpenPalm
)

// String returns the wire name of the label.
func (l Label) String() string {
	switch l {
	case LabelFist:
		return "FIST (OFF)"
	case LabelOne:
		return "ONE FINGER"
	case LabelTwo:
		return "TWO FINGERS"
	case LabelThree:
		return "THREE FINGERS"
	case LabelFour:
		return "FOUR FINGERS"
	case LabelOpenPalm:
		return "OPEN PALM (ON)"
	default:
		return "No Hand"
	}
}

// FingerCount returns the number of extended fingers the label stands for.
func (l Label) FingerCount() int {
	switch l {
	case LabelOne:
		return 1
	case LabelTwo:
		return 2
	case LabelThree:
		return 3
	case LabelFour:
		return 4
	case LabelOpenPalm:
		return 5
	default:
		return 0
	}
}

// IsTerminal reports whether the label triggers a device action when held.
func (l Label) IsTerminal() bool {
	return l == LabelFist || l == LabelOpenPalm
}

// IsSelection reports whether the label selects a device.
func (l Label) IsSelection() bool {
	return l >= LabelOne && l <= LabelFour
}

// Ordinal returns the 1-based device ordinal for selection labels, 0 otherwise.
func (l Label) Ordinal() int {
	if !l.IsSelection() {
		return 0
	}
	return int(l - LabelFist)
}

// FromCount maps an extended finger count to a label, clamping to 0..5.
func FromCount(count int) Label {
	switch {
	case count <= 0:
		return LabelFist
	case count >= 5:
		return LabelOpenPalm
	default:
		return LabelFist + Label(count)
	}
}

// Sample is one classified observation derived from a single frame.
type Sample struct {
	Label        Label
	FingerCount  int
	HandDetected bool
	ObservedAt   time.Time
}

// Classify maps detected hands to a gesture sample. At most maxHands hands
// are considered and the best-scoring one is classified; no hand, or a best
// score below the confidence threshold, yields LabelNone. Classification is
// pure: identical inputs always produce the identical sample.
func Classify(hands []detector.HandLandmarks, confidence float64, maxHands int, at time.Time) Sample {
	hand := detector.BestHand(hands, maxHands)
	if hand == nil || hand.Score < confidence {
		return Sample{Label: LabelNone, ObservedAt: at}
	}

	count := CountFingers(hand)
	return Sample{
		Label:        FromCount(count),
		FingerCount:  count,
		HandDetected: true,
		ObservedAt:   at,
	}
}

// CountFingers counts extended fingers from landmark geometry. Index through
// pinky are extended when the fingertip sits above the PIP joint (smaller Y).
// The thumb flexes laterally: it is extended when the tip passes the IP joint
// away from the palm, toward decreasing X for a right hand in the mirrored
// camera view and toward increasing X for a left hand.
func CountFingers(hand *detector.HandLandmarks) int {
	if hand == nil {
		return 0
	}

	count := 0
	if thumbExtended(hand) {
		count++
	}

	for _, finger := range detector.Fingers {
		if hand.Points[finger.Tip].Y < hand.Points[finger.PIP].Y {
			count++
		}
	}

	return count
}

func thumbExtended(hand *detector.HandLandmarks) bool {
	tip := hand.Points[detector.ThumbTip]
	ip := hand.Points[detector.ThumbIP]

	if hand.Handedness == "Left" {
		return tip.X > ip.X
	}
	return tip.X < ip.X
}
