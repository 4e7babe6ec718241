package features

// Feature names computed by the extractor
const (
	PitchMean            = "pitch_mean"
	PitchStd             = "pitch_std"
	PitchMin             = "pitch_min"
	PitchMax             = "pitch_max"
	JitterLocal          = "jitter_local"
	JitterRAP            = "jitter_rap"
	JitterPPQ5           = "jitter_ppq5"
	ShimmerLocal         = "shimmer_local"
	ShimmerAPQ3          = "shimmer_apq3"
	ShimmerAPQ5          = "shimmer_apq5"
	HNR                  = "hnr"
	SpectralCentroidMean = "spectral_centroid_mean"
	SpectralCentroidStd  = "spectral_centroid_std"
	SpectralRolloffMean  = "spectral_rolloff_mean"
	ZCRMean              = "zcr_mean"
	RPDEKey              = "rpde"
	DFAKey               = "dfa"
)

// FeatureOrder is the canonical feature ordering consumed by the
// classifier. It is a binding contract with any persisted scaler/model
// state: reordering it invalidates trained artifacts.
var FeatureOrder = []string{
	PitchMean, PitchStd, PitchMin, PitchMax,
	JitterLocal, JitterRAP, JitterPPQ5,
	ShimmerLocal, ShimmerAPQ3, ShimmerAPQ5,
	HNR,
	SpectralCentroidMean, SpectralCentroidStd,
	SpectralRolloffMean, ZCRMean,
	RPDEKey, DFAKey,
}

// NumFeatures is the classifier input dimension
var NumFeatures = len(FeatureOrder)

// FeatureSet maps feature names to scalar values for one analyzed clip
type FeatureSet map[string]float64

// Vector returns the features as a fixed-order array of length
// NumFeatures. Missing keys default to 0.
func (fs FeatureSet) Vector() []float64 {
	vector := make([]float64, NumFeatures)
	for i, name := range FeatureOrder {
		vector[i] = fs[name]
	}
	return vector
}
