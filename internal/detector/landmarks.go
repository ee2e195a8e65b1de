// Package detector provides hand landmark extraction interfaces and types.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// Coordinates are normalized to the frame: x and y in [0,1] with the
// origin at the top-left corner, z relative depth from the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected for one hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Finger identifies the landmark indices used to judge whether one of the
// four longitudinal fingers is extended: the fingertip and the PIP joint
// two indices below it.
type Finger struct {
	Tip int
	PIP int
}

// Fingers lists index, middle, ring and pinky in counting order. The thumb
// is excluded because it flexes laterally and needs its own test.
var Fingers = [4]Finger{
	{Tip: IndexTip, PIP: IndexPIP},
	{Tip: MiddleTip, PIP: MiddlePIP},
	{Tip: RingTip, PIP: RingPIP},
	{Tip: PinkyTip, PIP: PinkyPIP},
}

// BestHand returns the hand with the highest detection score, or nil if the
// slice is empty. At most max hands are considered; max <= 0 means all.
func BestHand(hands []HandLandmarks, max int) *HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	if max <= 0 || max > len(hands) {
		max = len(hands)
	}

	best := 0
	for i := 1; i < max; i++ {
		if hands[i].Score > hands[best].Score {
			best = i
		}
	}
	return &hands[best]
}
