package model

import (
	"fmt"
	"math"
)

// StandardScaler standardizes features to zero mean and unit variance.
// Fitted parameters are exported so the scaler serializes as part of
// the persisted model pair.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Fit computes per-feature mean and standard deviation from the rows
// of X. Features with zero variance get scale 1 so transforming them
// is a no-op rather than a division by zero.
func (s *StandardScaler) Fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	dim := len(X[0])
	s.Mean = make([]float64, dim)
	s.Scale = make([]float64, dim)

	for j := range dim {
		sum := 0.0
		for _, row := range X {
			sum += row[j]
		}
		mean := sum / float64(len(X))

		variance := 0.0
		for _, row := range X {
			d := row[j] - mean
			variance += d * d
		}
		variance /= float64(len(X))

		s.Mean[j] = mean
		if variance > 0 {
			s.Scale[j] = math.Sqrt(variance)
		} else {
			s.Scale[j] = 1
		}
	}
}

// Transform standardizes a single vector using the fitted parameters
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(s.Mean) == 0 {
		return nil, fmt.Errorf("scaler is not fitted")
	}
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("dimension mismatch: got %d features, scaler fitted on %d", len(x), len(s.Mean))
	}

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// TransformAll standardizes every row of X, returning new slices
func (s *StandardScaler) TransformAll(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// Fitted reports whether Fit has been called
func (s *StandardScaler) Fitted() bool {
	return len(s.Mean) > 0 && len(s.Mean) == len(s.Scale)
}
