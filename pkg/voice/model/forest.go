package model

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted decision tree. Leaves carry the
// weighted class counts observed during training.
type TreeNode struct {
	Feature     int        `json:"feature"`
	Threshold   float64    `json:"threshold"`
	Left        *TreeNode  `json:"left,omitempty"`
	Right       *TreeNode  `json:"right,omitempty"`
	Leaf        bool       `json:"leaf"`
	ClassCounts [2]float64 `json:"class_counts"`
}

// RandomForest is a bagged ensemble of binary decision trees with
// random feature subsets per split. Fitting is fully deterministic for
// a given seed: trees are built sequentially from one seeded source.
type RandomForest struct {
	Trees       []*TreeNode `json:"trees"`
	NumTrees    int         `json:"num_trees"`
	MaxDepth    int         `json:"max_depth"`
	FeatureDim  int         `json:"feature_dim"`
	SplitTryMax int         `json:"split_try_max"`
}

// NewRandomForest creates an unfitted forest
func NewRandomForest(numTrees, maxDepth int) *RandomForest {
	return &RandomForest{
		NumTrees: numTrees,
		MaxDepth: maxDepth,
	}
}

// Fit trains the forest on X/y with per-class sample weights. Each
// tree sees a bootstrap sample and considers sqrt(dim) random features
// per split.
func (f *RandomForest) Fit(X [][]float64, y []int, classWeights [2]float64, rng *rand.Rand) {
	if len(X) == 0 {
		return
	}
	f.FeatureDim = len(X[0])
	f.SplitTryMax = int(math.Ceil(math.Sqrt(float64(f.FeatureDim))))
	f.Trees = make([]*TreeNode, f.NumTrees)

	for t := range f.NumTrees {
		indices := make([]int, len(X))
		for i := range indices {
			indices[i] = rng.Intn(len(X))
		}
		f.Trees[t] = f.buildNode(X, y, classWeights, indices, 0, rng)
	}
}

// buildNode grows a subtree over the given sample indices
func (f *RandomForest) buildNode(X [][]float64, y []int, classWeights [2]float64, indices []int, depth int, rng *rand.Rand) *TreeNode {
	counts := [2]float64{}
	for _, i := range indices {
		counts[y[i]] += classWeights[y[i]]
	}

	if depth >= f.MaxDepth || len(indices) < 2 || counts[0] == 0 || counts[1] == 0 {
		return &TreeNode{Leaf: true, ClassCounts: counts}
	}

	feature, threshold, ok := f.bestSplit(X, y, classWeights, indices, counts, rng)
	if !ok {
		return &TreeNode{Leaf: true, ClassCounts: counts}
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{Leaf: true, ClassCounts: counts}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      f.buildNode(X, y, classWeights, left, depth+1, rng),
		Right:     f.buildNode(X, y, classWeights, right, depth+1, rng),
	}
}

// bestSplit searches a random feature subset for the weighted-Gini
// optimal threshold
func (f *RandomForest) bestSplit(X [][]float64, y []int, classWeights [2]float64, indices []int, parentCounts [2]float64, rng *rand.Rand) (int, float64, bool) {
	parentTotal := parentCounts[0] + parentCounts[1]
	parentGini := giniImpurity(parentCounts)

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	perm := rng.Perm(f.FeatureDim)
	for _, feature := range perm[:f.SplitTryMax] {
		sorted := make([]int, len(indices))
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return X[sorted[a]][feature] < X[sorted[b]][feature]
		})

		leftCounts := [2]float64{}
		rightCounts := parentCounts

		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			w := classWeights[y[i]]
			leftCounts[y[i]] += w
			rightCounts[y[i]] -= w

			cur := X[i][feature]
			next := X[sorted[pos+1]][feature]
			if cur == next {
				continue
			}

			leftTotal := leftCounts[0] + leftCounts[1]
			rightTotal := rightCounts[0] + rightCounts[1]
			weighted := (leftTotal*giniImpurity(leftCounts) + rightTotal*giniImpurity(rightCounts)) / parentTotal
			gain := parentGini - weighted
			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func giniImpurity(counts [2]float64) float64 {
	total := counts[0] + counts[1]
	if total == 0 {
		return 0
	}
	p0 := counts[0] / total
	p1 := counts[1] / total
	return 1 - p0*p0 - p1*p1
}

// PredictProba averages the leaf class distributions across all trees
func (f *RandomForest) PredictProba(x []float64) [2]float64 {
	var proba [2]float64
	if len(f.Trees) == 0 {
		return proba
	}

	for _, root := range f.Trees {
		node := root
		for !node.Leaf {
			if x[node.Feature] <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		total := node.ClassCounts[0] + node.ClassCounts[1]
		if total > 0 {
			proba[0] += node.ClassCounts[0] / total
			proba[1] += node.ClassCounts[1] / total
		}
	}

	proba[0] /= float64(len(f.Trees))
	proba[1] /= float64(len(f.Trees))
	return proba
}

// Fitted reports whether the forest has trained trees
func (f *RandomForest) Fitted() bool {
	return len(f.Trees) > 0
}
