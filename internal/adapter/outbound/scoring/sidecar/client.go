// Package sidecar scores readings through an HTTP model server that hosts
// the trained classifier and its tree explainer.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
)

const maxResponseBytes = 1 << 20

// Config holds configuration for the sidecar client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements outbound.Classifier and outbound.Explainer over HTTP.
// Requests are not retried.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new sidecar Client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

var (
	_ outbound.Classifier = (*Client)(nil)
	_ outbound.Explainer  = (*Client)(nil)
)

// --- sidecar API types ---

type featuresRequest struct {
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names"`
}

type probaResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

type explainResponse struct {
	ShapValues json.RawMessage `json:"shap_values"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Trees   int    `json:"trees"`
}

// --- Classifier implementation ---

// PredictProba calls POST /predict_proba.
func (c *Client) PredictProba(ctx context.Context, x model.FeatureVector) ([]float64, error) {
	var resp probaResponse
	if err := c.post(ctx, "/predict_proba", x, &resp); err != nil {
		return nil, err
	}
	if len(resp.Probabilities) != 2 {
		return nil, fmt.Errorf("sidecar returned %d probabilities, want 2", len(resp.Probabilities))
	}
	return resp.Probabilities, nil
}

// HealthCheck performs GET /health to verify the sidecar is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.health(ctx)
	return err
}

// ModelInfo reports the version the sidecar advertises on /health.
func (c *Client) ModelInfo(ctx context.Context) (outbound.ModelInfo, error) {
	h, err := c.health(ctx)
	if err != nil {
		return outbound.ModelInfo{}, err
	}
	return outbound.ModelInfo{
		Provider: "sidecar",
		Version:  h.Version,
		Trees:    h.Trees,
		Features: append([]string(nil), model.FeatureNames...),
	}, nil
}

// --- Explainer implementation ---

// Explain calls POST /explain. The sidecar may answer with a flat vector, one
// vector per class, or a features x classes matrix.
func (c *Client) Explain(ctx context.Context, x model.FeatureVector) (outbound.ExplainerOutput, error) {
	var resp explainResponse
	if err := c.post(ctx, "/explain", x, &resp); err != nil {
		return outbound.ExplainerOutput{}, err
	}
	return decodeShapValues(resp.ShapValues)
}

func decodeShapValues(raw json.RawMessage) (outbound.ExplainerOutput, error) {
	if len(raw) == 0 {
		return outbound.ExplainerOutput{}, fmt.Errorf("sidecar response has no shap_values")
	}
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return outbound.ExplainerOutput{Values: flat}, nil
	}
	var matrix [][]float64
	if err := json.Unmarshal(raw, &matrix); err != nil {
		return outbound.ExplainerOutput{}, fmt.Errorf("decoding shap_values: %w", err)
	}
	if len(matrix) == len(model.FeatureNames) && len(matrix[0]) == 2 {
		return outbound.ExplainerOutput{PerClass: transpose(matrix)}, nil
	}
	return outbound.ExplainerOutput{PerClass: matrix}, nil
}

func transpose(m [][]float64) [][]float64 {
	out := make([][]float64, len(m[0]))
	for j := range out {
		out[j] = make([]float64, len(m))
		for i := range m {
			if j < len(m[i]) {
				out[j][i] = m[i][j]
			}
		}
	}
	return out
}

// --- internal helpers ---

func (c *Client) health(ctx context.Context) (healthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return healthResponse{}, fmt.Errorf("creating health check request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return healthResponse{}, fmt.Errorf("%w: sidecar health check: %w", model.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return healthResponse{}, fmt.Errorf("%w: sidecar health check: unexpected status %d", model.ErrModelUnavailable, resp.StatusCode)
	}
	var h healthResponse
	// Older sidecars answer with an empty body.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return healthResponse{}, fmt.Errorf("reading sidecar health: %w", err)
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &h); err != nil {
			return healthResponse{}, fmt.Errorf("decoding sidecar health: %w", err)
		}
	}
	return h, nil
}

func (c *Client) post(ctx context.Context, path string, x model.FeatureVector, dst any) error {
	encoded, err := json.Marshal(featuresRequest{Features: x.Slice(), FeatureNames: model.FeatureNames})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling sidecar %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading sidecar response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sidecar %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, dst); err != nil {
		return fmt.Errorf("decoding sidecar %s response: %w", path, err)
	}
	return nil
}
