package detector

import "sync"

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results and is safe for
// concurrent use across sessions.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame []byte) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fingerPose holds the four joint positions of one finger, base to tip.
type fingerPose [4]Point3D

// Poses are laid out for a right hand seen in a mirrored camera view:
// the thumb sits on the low-x side and extends toward decreasing x,
// index through pinky fan out toward increasing x. Y grows downward,
// so an extended fingertip has a smaller Y than its PIP joint.
var (
	thumbExtended = fingerPose{{X: 0.45, Y: 0.75, Z: 0.02}, {X: 0.38, Y: 0.70, Z: 0.03}, {X: 0.32, Y: 0.65, Z: 0.03}, {X: 0.27, Y: 0.60, Z: 0.03}}
	thumbCurled   = fingerPose{{X: 0.45, Y: 0.75, Z: 0.0}, {X: 0.42, Y: 0.70, Z: -0.02}, {X: 0.44, Y: 0.68, Z: -0.04}, {X: 0.48, Y: 0.67, Z: -0.02}}

	indexExtended = fingerPose{{X: 0.45, Y: 0.68, Z: 0.0}, {X: 0.44, Y: 0.55, Z: 0.0}, {X: 0.44, Y: 0.45, Z: 0.0}, {X: 0.43, Y: 0.35, Z: 0.0}}
	indexCurled   = fingerPose{{X: 0.45, Y: 0.70, Z: -0.02}, {X: 0.45, Y: 0.68, Z: -0.05}, {X: 0.47, Y: 0.70, Z: -0.04}, {X: 0.48, Y: 0.72, Z: -0.02}}

	middleExtended = fingerPose{{X: 0.50, Y: 0.66, Z: 0.0}, {X: 0.50, Y: 0.52, Z: 0.0}, {X: 0.50, Y: 0.40, Z: 0.0}, {X: 0.50, Y: 0.28, Z: 0.0}}
	middleCurled   = fingerPose{{X: 0.50, Y: 0.68, Z: -0.02}, {X: 0.50, Y: 0.66, Z: -0.05}, {X: 0.52, Y: 0.68, Z: -0.04}, {X: 0.53, Y: 0.70, Z: -0.02}}

	ringExtended = fingerPose{{X: 0.55, Y: 0.68, Z: 0.0}, {X: 0.56, Y: 0.55, Z: 0.0}, {X: 0.57, Y: 0.45, Z: 0.0}, {X: 0.57, Y: 0.35, Z: 0.0}}
	ringCurled   = fingerPose{{X: 0.55, Y: 0.70, Z: -0.02}, {X: 0.55, Y: 0.68, Z: -0.05}, {X: 0.57, Y: 0.70, Z: -0.04}, {X: 0.58, Y: 0.72, Z: -0.02}}

	pinkyExtended = fingerPose{{X: 0.60, Y: 0.70, Z: 0.0}, {X: 0.62, Y: 0.60, Z: 0.0}, {X: 0.63, Y: 0.50, Z: 0.0}, {X: 0.64, Y: 0.42, Z: 0.0}}
	pinkyCurled   = fingerPose{{X: 0.60, Y: 0.72, Z: -0.02}, {X: 0.60, Y: 0.70, Z: -0.05}, {X: 0.62, Y: 0.72, Z: -0.04}, {X: 0.63, Y: 0.74, Z: -0.02}}
)

// CountLandmarks returns a preset right hand showing count extended fingers,
// in human counting order: index first, then middle, ring, pinky, and the
// thumb only for a full open palm. Counts outside 0..5 are clamped.
func CountLandmarks(count int) HandLandmarks {
	if count < 0 {
		count = 0
	}
	if count > 5 {
		count = 5
	}

	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	poses := []struct {
		base     int
		extended fingerPose
		curled   fingerPose
		extend   bool
	}{
		{ThumbCMC, thumbExtended, thumbCurled, count == 5},
		{IndexMCP, indexExtended, indexCurled, count >= 1},
		{MiddleMCP, middleExtended, middleCurled, count >= 2},
		{RingMCP, ringExtended, ringCurled, count >= 3},
		{PinkyMCP, pinkyExtended, pinkyCurled, count >= 4},
	}

	for _, p := range poses {
		pose := p.curled
		if p.extend {
			pose = p.extended
		}
		for i, pt := range pose {
			landmarks.Points[p.base+i] = pt
		}
	}

	return landmarks
}

// FistLandmarks returns a preset HandLandmarks representing a closed fist.
func FistLandmarks() HandLandmarks {
	return CountLandmarks(0)
}

// OpenPalmLandmarks returns a preset HandLandmarks with all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return CountLandmarks(5)
}
