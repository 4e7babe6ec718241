package analyzers

import "math"

// WindowGenerator produces and caches analysis window functions
type WindowGenerator struct {
	hannCache map[int][]float64
}

// NewWindowGenerator creates a window generator
func NewWindowGenerator() *WindowGenerator {
	return &WindowGenerator{
		hannCache: make(map[int][]float64),
	}
}

// Hann returns a periodic Hann window of the given size
func (wg *WindowGenerator) Hann(size int) []float64 {
	if w, ok := wg.hannCache[size]; ok {
		return w
	}

	w := make([]float64, size)
	for i := range size {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size)))
	}
	wg.hannCache[size] = w
	return w
}
