package forest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/jonny/pdm-service/internal/domain/model"
)

// Format identifies the artifact schema this package reads.
const Format = "pdm-forest/v1"

const leafIndex = -1

// Artifact is the on-disk form of a trained tree ensemble.
type Artifact struct {
	Format       string   `json:"format"`
	Version      string   `json:"version"`
	FeatureNames []string `json:"feature_names"`
	Trees        []Tree   `json:"trees"`
}

// Tree is a flat node array; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is either a split (Left/Right >= 0) or a leaf (Left == Right == -1).
// Samples with x[Feature] <= Threshold go left. Cover is the training weight
// that reached the node. Value holds per-class weights at a leaf.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Cover     float64   `json:"cover"`
	Value     []float64 `json:"value,omitempty"`
}

func (n Node) isLeaf() bool { return n.Left == leafIndex && n.Right == leafIndex }

// ReadFile decodes and validates the artifact at path.
func ReadFile(path string) (Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: open %s: %w", model.ErrModelUnavailable, path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads and validates an artifact.
func Decode(r io.Reader) (Artifact, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return Artifact{}, fmt.Errorf("%w: decode artifact: %w", model.ErrModelUnavailable, err)
	}
	if err := a.Validate(); err != nil {
		return Artifact{}, fmt.Errorf("%w: %w", model.ErrModelUnavailable, err)
	}
	return a, nil
}

// Validate checks that the artifact matches the service's feature order and
// that every tree is a well-formed binary tree.
func (a Artifact) Validate() error {
	if a.Format != Format {
		return fmt.Errorf("unsupported artifact format %q, want %q", a.Format, Format)
	}
	if !slices.Equal(a.FeatureNames, model.FeatureNames) {
		return fmt.Errorf("artifact features %v do not match %v", a.FeatureNames, model.FeatureNames)
	}
	if len(a.Trees) == 0 {
		return fmt.Errorf("artifact has no trees")
	}
	for i, t := range a.Trees {
		if err := t.validate(len(a.FeatureNames)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("no nodes")
	}
	for i, n := range t.Nodes {
		if n.Cover < 0 || math.IsNaN(n.Cover) {
			return fmt.Errorf("node %d: invalid cover %v", i, n.Cover)
		}
		if n.isLeaf() {
			if len(n.Value) != 2 {
				return fmt.Errorf("node %d: leaf has %d class values, want 2", i, len(n.Value))
			}
			sum := 0.0
			for _, v := range n.Value {
				if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("node %d: invalid class value %v", i, v)
				}
				sum += v
			}
			if sum == 0 {
				return fmt.Errorf("node %d: leaf has zero weight", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if math.IsNaN(n.Threshold) || math.IsInf(n.Threshold, 0) {
			return fmt.Errorf("node %d: threshold is not finite", i)
		}
		// Children after their parent rules out cycles.
		for _, c := range []int{n.Left, n.Right} {
			if c <= i || c >= len(t.Nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, c)
			}
		}
		if t.Nodes[n.Left].Cover+t.Nodes[n.Right].Cover <= 0 {
			return fmt.Errorf("node %d: children carry no cover", i)
		}
	}
	return nil
}
