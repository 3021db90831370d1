package plagiarism

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

const embedTimeout = 10 * time.Second

// Embedder produces a dense vector for normalized code, grounded on
// original_source/.../utils/embed.py's fixed-tokenizer (512 token
// truncation) mean-pool-of-last-hidden-state embedding.
type Embedder interface {
	Embed(ctx context.Context, code string) ([]float32, error)
}

// HTTPEmbedder calls an out-of-process embedding model server. Like
// coreclient, no pack library specializes in serving a code-embedding model;
// the Python original itself talks to a locally loaded transformers model
// through a plain function call, so a bare net/http client to an embedding
// sidecar is the matching idiom for a Go service that doesn't host the model
// in-process.
type HTTPEmbedder struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPEmbedder builds an HTTPEmbedder. httpClient may be nil to use a
// default client with embedTimeout.
func NewHTTPEmbedder(baseURL string, httpClient *http.Client) *HTTPEmbedder {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: embedTimeout}
	}
	return &HTTPEmbedder{baseURL: baseURL, httpClient: httpClient}
}

// Embed posts code to {baseURL}/embed and returns the returned vector.
func (e *HTTPEmbedder) Embed(ctx context.Context, code string) ([]float32, error) {
	payload, err := json.Marshal(struct {
		Code string `json:"code"`
	}{Code: code})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embed service returned status %d", resp.StatusCode)
	}

	var body struct {
		Vector []float32 `json:"vector"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Vector, nil
}

// l2Normalize scales v to unit length in place, matching faiss.normalize_L2
// so that inner product equals cosine similarity. A zero vector is left
// unchanged.
func l2Normalize(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range v {
		v[i] /= norm
	}
}
