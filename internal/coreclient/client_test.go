package coreclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSubmissionCountParsesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-internal-api-key") != "secret" {
			t.Errorf("missing internal api key header")
		}
		w.Write([]byte(`{"count": 3}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", nil)
	count, err := c.SubmissionCount(context.Background(), "u1", "c1", "p1")
	if err != nil || count != 3 {
		t.Fatalf("count=%d err=%v", count, err)
	}
}

func TestPostSubmissionFailureIsReturnedNotPanicked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", nil)
	if err := c.PostSubmission(context.Background(), SubmissionRecord{UserID: "u1"}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
