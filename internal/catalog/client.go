// Package catalog reads the contest/problem catalog from Redis
// (spec.md 6: key contest_{id}), grounded on the teacher's go-redis
// wrapper (internal/common/cache/redis.go) but trimmed to the single
// read operation this spec needs — the full Cache interface's hash/set/
// zset/list/lock surface has no caller in this spec's scope (the
// leaderboard and submission store live in the external core-service).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"judgecore/pkg/errors"
)

// Registration is one contest registration entry.
type Registration struct {
	User struct {
		ID string `json:"_id"`
	} `json:"user"`
	Status string `json:"status"`
}

// Testcase mirrors the wire shape of a single testcase inside a
// contest's problem list.
type Testcase struct {
	ID       string `json:"id"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Score    int    `json:"score"`
	IsPublic bool   `json:"isPublic"`
}

// Problem is one problem entry within a contest.
type Problem struct {
	ID             string     `json:"_id"`
	Testcases      []Testcase `json:"testcases"`
	MaxSubmissions int        `json:"maxSubmissions"`
}

// Contest is the JSON document stored at contest_{id}.
type Contest struct {
	Registrations []Registration `json:"registrations"`
	Problems      []Problem      `json:"problems"`
}

// IsApproved reports whether userID has an approved registration.
func (c Contest) IsApproved(userID string) bool {
	for _, r := range c.Registrations {
		if r.User.ID == userID && r.Status == "approved" {
			return true
		}
	}
	return false
}

// Problem returns the problem with the given id, if present.
func (c Contest) Problem(problemID string) (Problem, bool) {
	for _, p := range c.Problems {
		if p.ID == problemID {
			return p, true
		}
	}
	return Problem{}, false
}

// Client reads contest documents from Redis.
type Client struct {
	rdb *redis.Client
}

// New constructs a Client from a redis:// URL.
func New(url string) (*Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, errors.InternalServerError)
	}
	return &Client{rdb: redis.NewClient(opt)}, nil
}

// NewFromClient wraps an existing *redis.Client (used by tests with
// miniredis).
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// GetContest loads and parses contest_{contestID}. Returns NotFound if
// the key is absent.
func (c *Client) GetContest(ctx context.Context, contestID string) (Contest, error) {
	key := fmt.Sprintf("contest_%s", contestID)
	raw, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return Contest{}, errors.NotFoundError("contest")
	}
	if err != nil {
		return Contest{}, errors.Wrap(err, errors.CacheError)
	}
	var contest Contest
	if err := json.Unmarshal([]byte(raw), &contest); err != nil {
		return Contest{}, errors.Wrap(err, errors.InternalServerError)
	}
	return contest, nil
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
