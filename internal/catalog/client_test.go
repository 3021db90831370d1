package catalog

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFromClient(rdb), mr
}

func TestGetContestNotFound(t *testing.T) {
	c, _ := newTestClient(t)
	if _, err := c.GetContest(context.Background(), "missing"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestGetContestParsesRegistrationsAndProblems(t *testing.T) {
	c, mr := newTestClient(t)
	doc := `{
		"registrations": [{"user": {"_id": "u1"}, "status": "approved"}],
		"problems": [{"_id": "p1", "maxSubmissions": 5, "testcases": [
			{"id": "t1", "input": "1", "expected": "1", "score": 10, "isPublic": true}
		]}]
	}`
	mr.Set("contest_c1", doc)

	contest, err := c.GetContest(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetContest: %v", err)
	}
	if !contest.IsApproved("u1") {
		t.Fatal("expected u1 to be approved")
	}
	if contest.IsApproved("u2") {
		t.Fatal("u2 should not be approved")
	}
	p, ok := contest.Problem("p1")
	if !ok || p.MaxSubmissions != 5 || len(p.Testcases) != 1 {
		t.Fatalf("unexpected problem: %+v ok=%v", p, ok)
	}
}
