package forest

import (
	"context"
	"math/bits"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

// Explain returns exact Shapley values of the failure probability, with a
// missing feature's value function taken as the cover-weighted expectation
// over both branches. The result is per class: the no-failure vector is the
// negation of the failure vector.
func (m *Model) Explain(ctx context.Context, x model.FeatureVector) (outbound.ExplainerOutput, error) {
	if err := ctx.Err(); err != nil {
		return outbound.ExplainerOutput{}, err
	}
	phi := m.shapley(x)
	neg := make([]float64, len(phi))
	floats.ScaleTo(neg, -1, phi)
	return outbound.ExplainerOutput{
		PerClass: [][]float64{outbound.ClassNoFailure: neg, outbound.ClassFailure: phi},
	}, nil
}

// ExpectedValue is the failure probability with every feature missing. For
// any x, the Shapley values sum to PredictProba(x)[1] - ExpectedValue().
func (m *Model) ExpectedValue() float64 {
	var x model.FeatureVector
	return m.value(x, 0)
}

func (m *Model) shapley(x model.FeatureVector) []float64 {
	nFeatures := len(x)
	subsets := 1 << nFeatures

	// Value of every coalition, indexed by bitmask.
	values := make([]float64, subsets)
	for mask := range values {
		values[mask] = m.value(x, mask)
	}

	phi := make([]float64, nFeatures)
	for i := 0; i < nFeatures; i++ {
		bit := 1 << i
		for mask := 0; mask < subsets; mask++ {
			if mask&bit != 0 {
				continue
			}
			size := bits.OnesCount(uint(mask))
			// |S|!(M-|S|-1)!/M! == 1 / (M * C(M-1, |S|))
			w := 1 / float64(nFeatures*combin.Binomial(nFeatures-1, size))
			phi[i] += w * (values[mask|bit] - values[mask])
		}
	}
	return phi
}

// value is the ensemble's expected failure probability when only the
// features in mask are known.
func (m *Model) value(x model.FeatureVector, mask int) float64 {
	sum := 0.0
	for _, t := range m.trees {
		sum += t.expected(x, mask, 0)
	}
	return sum / float64(len(m.trees))
}

func (t tree) expected(x model.FeatureVector, mask, i int) float64 {
	n := t.nodes[i]
	if n.isLeaf() {
		return t.dist[i][outbound.ClassFailure]
	}
	if mask&(1<<n.Feature) != 0 {
		if x[n.Feature] <= n.Threshold {
			return t.expected(x, mask, n.Left)
		}
		return t.expected(x, mask, n.Right)
	}
	l, r := t.nodes[n.Left], t.nodes[n.Right]
	total := l.Cover + r.Cover
	return (l.Cover*t.expected(x, mask, n.Left) + r.Cover*t.expected(x, mask, n.Right)) / total
}
