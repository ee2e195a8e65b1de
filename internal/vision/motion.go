// Package vision provides frame-differencing motion gating for inbound
// video frames, so static scenes skip the landmark detector entirely.
package vision

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion gating constants.
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21).
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection.
	DiffThreshold = 25
)

// Gate decides per frame whether detection is worth running, by comparing
// each JPEG frame against the previous one. One gate belongs to one
// session; frames from different cameras must not share a gate.
type Gate struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewGate creates a motion gate. The threshold is the percentage of pixels
// that must change for a frame to count as motion; a threshold of 1.0 means
// 1% of pixels.
func NewGate(threshold float64) *Gate {
	return &Gate{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// ShouldProcess reports whether the frame differs enough from the previous
// one to run detection. The first frame always processes, as does any frame
// that fails to decode (the detector owns the real decode error).
//
// Algorithm: grayscale decode, Gaussian blur (21x21) to reduce noise,
// absolute difference against the previous frame, binary threshold, then
// changed-pixel percentage against the configured threshold.
func (g *Gate) ShouldProcess(frame []byte) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(frame) == 0 {
		return true
	}

	gray, err := gocv.IMDecode(frame, gocv.IMReadGrayScale)
	if err != nil || gray.Empty() {
		return true
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	// First frame establishes the baseline and is always processed.
	if !g.initialized {
		blurred.CopyTo(&g.prevGray)
		g.initialized = true
		return true
	}

	// A resolution change invalidates the baseline.
	if blurred.Rows() != g.prevGray.Rows() || blurred.Cols() != g.prevGray.Cols() {
		blurred.CopyTo(&g.prevGray)
		return true
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&g.prevGray)

	return changePercent > g.threshold
}

// Reset clears the baseline so the next frame always processes.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.initialized = false
}

// Close releases resources held by the gate.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.initialized = false
}
