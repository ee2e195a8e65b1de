package detector

// Detector defines the interface for hand landmark extraction backends.
// Frames are JPEG-encoded image bytes as received from clients.
type Detector interface {
	// Detect analyzes a frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame []byte) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection backends.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Script overrides the autodiscovered landmark service script path.
	Script string

	// Python overrides the autodiscovered Python interpreter path.
	Python string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
