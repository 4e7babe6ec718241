package features

import "math"

// Pitch tracking range, C2 to C7
const (
	pitchFloorHz = 65.406
	pitchCeilHz  = 2093.005
)

// yinThreshold is the aperiodicity cutoff on the cumulative mean
// normalized difference. Frames with no dip below it are unvoiced.
const yinThreshold = 0.15

// pitchTracker estimates per-frame fundamental frequency with the YIN
// cumulative-mean-normalized-difference method, restricted to the
// musical range C2-C7. Unvoiced frames are dropped from the output.
type pitchTracker struct {
	sampleRate  int
	frameLength int
	hopLength   int
}

func newPitchTracker(sampleRate, frameLength, hopLength int) *pitchTracker {
	return &pitchTracker{
		sampleRate:  sampleRate,
		frameLength: frameLength,
		hopLength:   hopLength,
	}
}

// Track returns f0 estimates for the voiced frames of pcm, in order.
// The returned slice may be empty when nothing periodic is found.
func (pt *pitchTracker) Track(pcm []float64) []float64 {
	if len(pcm) < pt.frameLength {
		// One zero-padded frame still gives a usable estimate for very
		// short clips as long as a couple of periods fit
		if len(pcm) < 2*int(float64(pt.sampleRate)/pitchCeilHz) {
			return nil
		}
	}

	tauMin := int(float64(pt.sampleRate) / pitchCeilHz)
	if tauMin < 2 {
		tauMin = 2
	}
	tauMax := int(float64(pt.sampleRate)/pitchFloorHz) + 1
	if tauMax > pt.frameLength/2 {
		tauMax = pt.frameLength / 2
	}

	var voiced []float64
	diff := make([]float64, tauMax+1)
	cmnd := make([]float64, tauMax+1)

	for start := 0; start < len(pcm); start += pt.hopLength {
		end := start + pt.frameLength
		if end > len(pcm) {
			end = len(pcm)
		}
		frame := pcm[start:end]
		if len(frame) < 2*tauMin {
			break
		}

		if f0, ok := pt.estimateFrame(frame, tauMin, tauMax, diff, cmnd); ok {
			voiced = append(voiced, f0)
		}
	}

	return voiced
}

// estimateFrame runs YIN on a single frame. Returns false for unvoiced
// or silent frames.
func (pt *pitchTracker) estimateFrame(frame []float64, tauMin, tauMax int, diff, cmnd []float64) (float64, bool) {
	maxTau := tauMax
	if maxTau > len(frame)/2 {
		maxTau = len(frame) / 2
	}
	if maxTau <= tauMin {
		return 0, false
	}

	// Silent frames carry no pitch
	energy := 0.0
	for _, s := range frame {
		energy += s * s
	}
	if energy < 1e-9 {
		return 0, false
	}

	// Difference function
	diff[0] = 0
	for tau := 1; tau <= maxTau; tau++ {
		sum := 0.0
		n := len(frame) - tau
		for j := 0; j < n; j++ {
			d := frame[j] - frame[j+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference
	cmnd[0] = 1
	runningSum := 0.0
	for tau := 1; tau <= maxTau; tau++ {
		runningSum += diff[tau]
		if runningSum == 0 {
			cmnd[tau] = 1
		} else {
			cmnd[tau] = diff[tau] * float64(tau) / runningSum
		}
	}

	// First dip under the threshold, refined to its local minimum
	bestTau := -1
	for tau := tauMin; tau <= maxTau; tau++ {
		if cmnd[tau] < yinThreshold {
			for tau+1 <= maxTau && cmnd[tau+1] < cmnd[tau] {
				tau++
			}
			bestTau = tau
			break
		}
	}
	if bestTau < 0 {
		return 0, false
	}

	refined := parabolicInterpolate(cmnd, bestTau, maxTau)
	f0 := float64(pt.sampleRate) / refined
	if f0 < pitchFloorHz || f0 > pitchCeilHz || math.IsNaN(f0) {
		return 0, false
	}
	return f0, true
}

// parabolicInterpolate refines a lag estimate to sub-sample precision
// by fitting a parabola through the minimum and its neighbors
func parabolicInterpolate(cmnd []float64, tau, maxTau int) float64 {
	if tau <= 0 || tau >= maxTau {
		return float64(tau)
	}
	a := cmnd[tau-1]
	b := cmnd[tau]
	c := cmnd[tau+1]
	denom := a - 2*b + c
	if denom == 0 {
		return float64(tau)
	}
	shift := 0.5 * (a - c) / denom
	if shift > 1 || shift < -1 {
		return float64(tau)
	}
	return float64(tau) + shift
}
