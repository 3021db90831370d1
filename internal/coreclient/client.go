// Package coreclient calls the external core-service: submission count,
// submission store, and leaderboard update (spec.md 6), grounded on
// original_source/services/code_manager/app/services/code_evaluate.py's
// httpx calls with the same x-internal-api-key header and 5s timeout.
// No pack library specializes in a 3-endpoint internal HTTP client; the
// Python original itself uses a bare httpx client with no framework, so
// net/http with a small wrapper is the matching idiom here.
package coreclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"
)

const sideEffectTimeout = 5 * time.Second

// TestcaseResultRecord mirrors the wire shape of a single testcase result
// inside a submission record posted to the core-service.
type TestcaseResultRecord struct {
	TestID   string `json:"test_id"`
	Status   string `json:"status"`
	Score    int    `json:"score"`
	Expected string `json:"expected,omitempty"`
}

// SubmissionRecord is the body POSTed to {core}/submission.
type SubmissionRecord struct {
	UserID           string                 `json:"user_id"`
	Contest          string                 `json:"contest"`
	Problem          string                 `json:"problem"`
	Code             string                 `json:"code"`
	Language         string                 `json:"language"`
	Processor        string                 `json:"processor"`
	Score            int                    `json:"score"`
	TestcaseResults  []TestcaseResultRecord `json:"testcaseResults"`
}

// LeaderboardUpdate is the body POSTed to {core}/leaderboard/update.
type LeaderboardUpdate struct {
	ContestID string `json:"contest_id"`
	ProblemID string `json:"problem_id"`
	UserID    string `json:"user_id"`
	Score     int    `json:"score"`
}

// Client calls the core-service over HTTP with the internal API key.
type Client struct {
	baseURL        string
	internalAPIKey string
	httpClient     *http.Client
}

// New constructs a Client. httpClient may be nil to use a default client
// with the spec's 5s side-effect timeout.
func New(baseURL, internalAPIKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: sideEffectTimeout}
	}
	return &Client{baseURL: baseURL, internalAPIKey: internalAPIKey, httpClient: httpClient}
}

// SubmissionCount fetches the caller's current submission count for a
// contest/problem, used to enforce max_submissions (spec.md 4.3.2 step 5).
func (c *Client) SubmissionCount(ctx context.Context, userID, contestID, problemID string) (int, error) {
	url := fmt.Sprintf("%s/submission/count?userId=%s&contestId=%s&problemId=%s", c.baseURL, userID, contestID, problemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.InternalServerError)
	}
	req.Header.Set("x-internal-api-key", c.internalAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, errors.ServiceUnavailable)
	}
	defer resp.Body.Close()

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, errors.Wrap(err, errors.InternalServerError)
	}
	return body.Count, nil
}

// PostSubmission posts rec to {core}/submission. Failures are logged and
// returned for the caller to log-and-swallow per spec.md's side-effect
// propagation policy (never surfaces to the gateway response).
func (c *Client) PostSubmission(ctx context.Context, rec SubmissionRecord) error {
	return c.postJSON(ctx, "/submission", rec)
}

// PostLeaderboardUpdate posts u to {core}/leaderboard/update.
func (c *Client) PostLeaderboardUpdate(ctx context.Context, u LeaderboardUpdate) error {
	return c.postJSON(ctx, "/leaderboard/update", u)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-internal-api-key", c.internalAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warnf(ctx, "core-service %s failed: %v", path, err)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.Warnf(ctx, "core-service %s returned status %d", path, resp.StatusCode)
		return fmt.Errorf("core-service %s: status %d", path, resp.StatusCode)
	}
	return nil
}
