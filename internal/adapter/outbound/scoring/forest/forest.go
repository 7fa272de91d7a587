// Package forest scores readings with a random-forest classifier loaded from
// a JSON artifact and explains them with exact path-dependent TreeSHAP.
package forest

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

const providerName = "forest"

// Model is an immutable tree ensemble. It is safe for concurrent use.
type Model struct {
	version  string
	features []string
	trees    []tree
}

// tree keeps each leaf's normalized class distribution next to the node array.
type tree struct {
	nodes []Node
	dist  [][]float64
}

// Load reads, validates and prepares the artifact at path. Any failure wraps
// model.ErrModelUnavailable.
func Load(path string) (*Model, error) {
	a, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(a)
}

// New prepares a validated artifact for scoring.
func New(a Artifact) (*Model, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrModelUnavailable, err)
	}
	m := &Model{
		version:  a.Version,
		features: append([]string(nil), a.FeatureNames...),
		trees:    make([]tree, 0, len(a.Trees)),
	}
	for _, t := range a.Trees {
		prepared := tree{nodes: t.Nodes, dist: make([][]float64, len(t.Nodes))}
		for i, n := range t.Nodes {
			if !n.isLeaf() {
				continue
			}
			d := append([]float64(nil), n.Value...)
			floats.Scale(1/floats.Sum(d), d)
			prepared.dist[i] = d
		}
		m.trees = append(m.trees, prepared)
	}
	return m, nil
}

var (
	_ outbound.Classifier = (*Model)(nil)
	_ outbound.Explainer  = (*Model)(nil)
)

// PredictProba averages the leaf class distributions reached in every tree.
func (m *Model) PredictProba(ctx context.Context, x model.FeatureVector) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, 2)
	for _, t := range m.trees {
		floats.Add(out, t.dist[t.leaf(x)])
	}
	floats.Scale(1/float64(len(m.trees)), out)
	return out, nil
}

// HealthCheck always succeeds; the model lives in memory.
func (m *Model) HealthCheck(_ context.Context) error { return nil }

// ModelInfo describes the loaded ensemble.
func (m *Model) ModelInfo(_ context.Context) (outbound.ModelInfo, error) {
	return outbound.ModelInfo{
		Provider: providerName,
		Version:  m.version,
		Trees:    len(m.trees),
		Features: append([]string(nil), m.features...),
	}, nil
}

func (t tree) leaf(x model.FeatureVector) int {
	i := 0
	for {
		n := t.nodes[i]
		if n.isLeaf() {
			return i
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
