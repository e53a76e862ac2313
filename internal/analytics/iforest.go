package analytics

import (
	"math"
	"math/rand"
)

// Isolation forest over small per-district time series. Outliers isolate in
// fewer random splits, so shorter average path lengths mean more anomalous.
// Scores follow the score_samples convention of the reference model: values
// in (-1, 0), lower meaning more anomalous.

const (
	iforestTrees     = 100
	iforestMaxSample = 256

	eulerGamma = 0.5772156649015329
)

type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int // leaf only: number of sampled points that reached it
}

func (n *isoNode) leaf() bool { return n.left == nil }

type isolationForest struct {
	trees       []*isoNode
	sampleSize  int
	heightLimit int
}

// fitIsolationForest builds the forest over data with a fixed seed. The same
// seed and data always produce the same forest regardless of caller
// scheduling, which keeps the pipeline reproducible when districts are
// fitted in parallel.
func fitIsolationForest(data [][]float64, seed int64) *isolationForest {
	rng := rand.New(rand.NewSource(seed))

	n := len(data)
	sampleSize := n
	if sampleSize > iforestMaxSample {
		sampleSize = iforestMaxSample
	}

	f := &isolationForest{
		trees:       make([]*isoNode, iforestTrees),
		sampleSize:  sampleSize,
		heightLimit: int(math.Ceil(math.Log2(math.Max(float64(sampleSize), 2)))),
	}

	for t := range f.trees {
		idx := rng.Perm(n)[:sampleSize]
		f.trees[t] = buildIsoTree(data, idx, 0, f.heightLimit, rng)
	}
	return f
}

func buildIsoTree(data [][]float64, idx []int, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(idx) <= 1 {
		return &isoNode{size: len(idx)}
	}

	dims := len(data[idx[0]])
	splittable := make([]int, 0, dims)
	for d := 0; d < dims; d++ {
		lo, hi := featureRange(data, idx, d)
		if hi > lo {
			splittable = append(splittable, d)
		}
	}
	if len(splittable) == 0 {
		// All remaining points are identical; no split can separate them.
		return &isoNode{size: len(idx)}
	}

	feature := splittable[rng.Intn(len(splittable))]
	lo, hi := featureRange(data, idx, feature)
	split := lo + rng.Float64()*(hi-lo)

	var left, right []int
	for _, i := range idx {
		if data[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildIsoTree(data, left, depth+1, limit, rng),
		right:   buildIsoTree(data, right, depth+1, limit, rng),
	}
}

func featureRange(data [][]float64, idx []int, d int) (lo, hi float64) {
	lo, hi = data[idx[0]][d], data[idx[0]][d]
	for _, i := range idx[1:] {
		v := data[i][d]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// scoreSamples returns one score per input point: -2^(-E[h(x)]/c(sampleSize)).
func (f *isolationForest) scoreSamples(data [][]float64) []float64 {
	norm := avgPathLength(f.sampleSize)
	scores := make([]float64, len(data))
	for i, x := range data {
		var sum float64
		for _, tree := range f.trees {
			sum += pathLength(x, tree, 0)
		}
		mean := sum / float64(len(f.trees))
		scores[i] = -math.Pow(2, -mean/norm)
	}
	return scores
}

func pathLength(x []float64, node *isoNode, depth float64) float64 {
	if node.leaf() {
		return depth + avgPathLength(node.size)
	}
	if x[node.feature] < node.split {
		return pathLength(x, node.left, depth+1)
	}
	return pathLength(x, node.right, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful BST
// search among n points, used to normalize isolation depths.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		h := math.Log(float64(n-1)) + eulerGamma
		return 2*h - 2*float64(n-1)/float64(n)
	}
}
