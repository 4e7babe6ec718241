package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Fallback values used when a nonlinear measure cannot be computed.
// Downstream classification expects both features in a sane range at
// all times, so insufficient data and numerical failure map to the
// same defined constants.
const (
	rpdeDefault = 0.4
	dfaDefault  = 0.7
)

const (
	rpdeEmbedDim = 10
	rpdeLag      = 1
	rpdeBins     = 20
	dfaMinScale  = 4
	dfaNumScales = 10

	// rpdeMaxPoints bounds the pairwise-distance stage; the embedded
	// series is stride-sampled down to this many points first
	rpdeMaxPoints = 2000
)

// ComplexityResult carries a nonlinear complexity value and whether it
// came from the actual computation or the defined fallback constant
type ComplexityResult struct {
	Value    float64 `json:"value"`
	Fallback bool    `json:"fallback"`
}

func computed(v float64) ComplexityResult { return ComplexityResult{Value: v} }
func fallback(v float64) ComplexityResult { return ComplexityResult{Value: v, Fallback: true} }

// RPDE computes recurrence period density entropy: the Shannon entropy
// of the distribution of gaps between recurrences in a delay-embedded
// view of the signal. Signals too short to embed return the fallback.
func RPDE(signal []float64) ComplexityResult {
	n := len(signal)
	if n < rpdeEmbedDim*rpdeLag*2 {
		return fallback(rpdeDefault)
	}

	numVectors := n - rpdeEmbedDim*rpdeLag
	stride := 1
	if numVectors > rpdeMaxPoints {
		stride = (numVectors + rpdeMaxPoints - 1) / rpdeMaxPoints
	}

	var points [][]float64
	for i := 0; i < numVectors; i += stride {
		points = append(points, signal[i:i+rpdeEmbedDim*rpdeLag])
	}
	if len(points) < 2 {
		return fallback(rpdeDefault)
	}

	threshold := 0.1 * stat.PopStdDev(signal, nil)
	if threshold <= 0 || math.IsNaN(threshold) {
		return fallback(rpdeDefault)
	}

	// Gaps between recurrence indices per reference point
	var periods []float64
	for i := range points {
		prev := -1
		for j := range points {
			if embedDistance(points[i], points[j]) < threshold {
				if prev >= 0 {
					periods = append(periods, float64(j-prev))
				}
				prev = j
			}
		}
	}
	if len(periods) == 0 {
		return fallback(rpdeDefault)
	}

	hist := densityHistogram(periods, rpdeBins)
	if hist == nil {
		return fallback(rpdeDefault)
	}

	return computed(shannonEntropy(hist))
}

func embedDistance(a, b []float64) float64 {
	sum := 0.0
	for k := range a {
		d := a[k] - b[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// densityHistogram bins values into a density-normalized histogram and
// drops empty bins. Degenerate input (all values identical) yields a
// single full bin.
func densityHistogram(values []float64, bins int) []float64 {
	lo := floats.Min(values)
	hi := floats.Max(values)
	if hi == lo {
		return []float64{1}
	}

	counts := make([]float64, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	total := float64(len(values))
	var density []float64
	for _, c := range counts {
		if c > 0 {
			density = append(density, c/(total*width))
		}
	}
	return density
}

// shannonEntropy normalizes the input to a probability distribution and
// returns its entropy in nats
func shannonEntropy(pk []float64) float64 {
	sum := floats.Sum(pk)
	if sum <= 0 {
		return 0
	}
	entropy := 0.0
	for _, p := range pk {
		p /= sum
		if p > 0 {
			entropy -= p * math.Log(p)
		}
	}
	return entropy
}

// DFA computes the detrended fluctuation analysis exponent: the log-log
// slope of RMS residual against window scale after per-window linear
// detrending of the integrated signal. Signals without at least two
// usable scales return the fallback, as does any numerical failure.
func DFA(signal []float64) ComplexityResult {
	n := len(signal)
	maxScale := n / 4
	if maxScale < dfaMinScale {
		return fallback(dfaDefault)
	}

	// Integrate the mean-centered signal
	mean := stat.Mean(signal, nil)
	integrated := make([]float64, n)
	cum := 0.0
	for i, v := range signal {
		cum += v - mean
		integrated[i] = cum
	}

	scales := logSpacedScales(dfaMinScale, maxScale, dfaNumScales)
	xs := make([]float64, 0, maxScale)
	for i := 0; i < maxScale; i++ {
		xs = append(xs, float64(i))
	}

	var logScales, logFlucts []float64
	for _, scale := range scales {
		numSegments := n / scale
		if numSegments < 1 {
			continue
		}

		sum := 0.0
		for seg := range numSegments {
			window := integrated[seg*scale : (seg+1)*scale]
			alpha, beta := stat.LinearRegression(xs[:scale], window, nil, false)
			residual := 0.0
			for i, y := range window {
				fit := alpha + beta*float64(i)
				residual += (y - fit) * (y - fit)
			}
			sum += math.Sqrt(residual / float64(scale))
		}

		fluct := sum / float64(numSegments)
		if fluct <= 0 || math.IsNaN(fluct) {
			return fallback(dfaDefault)
		}
		logScales = append(logScales, math.Log10(float64(scale)))
		logFlucts = append(logFlucts, fluct)
	}

	if len(logFlucts) < 2 {
		return fallback(dfaDefault)
	}
	for i := range logFlucts {
		logFlucts[i] = math.Log10(logFlucts[i])
	}

	_, slope := stat.LinearRegression(logScales, logFlucts, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return fallback(dfaDefault)
	}
	return computed(slope)
}

// logSpacedScales returns up to count logarithmically spaced integer
// scales in [lo, hi], deduplicated after rounding
func logSpacedScales(lo, hi, count int) []int {
	logLo := math.Log10(float64(lo))
	logHi := math.Log10(float64(hi))

	var scales []int
	seen := map[int]bool{}
	for i := range count {
		frac := 0.0
		if count > 1 {
			frac = float64(i) / float64(count-1)
		}
		scale := int(math.Pow(10, logLo+frac*(logHi-logLo)))
		if scale < lo {
			scale = lo
		}
		if scale > hi {
			scale = hi
		}
		if !seen[scale] {
			seen[scale] = true
			scales = append(scales, scale)
		}
	}
	return scales
}
