package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"judgecore/internal/broker/mq"
	"judgecore/internal/catalog"
	"judgecore/internal/judgemodel"
)

type stubCatalog struct {
	contest catalog.Contest
	err     error
}

func (s stubCatalog) GetContest(ctx context.Context, contestID string) (catalog.Contest, error) {
	return s.contest, s.err
}

type stubCounter struct {
	count int
	err   error
}

func (s stubCounter) SubmissionCount(ctx context.Context, userID, contestID, problemID string) (int, error) {
	return s.count, s.err
}

// runFakeWorker drains queue and, for every task it sees, publishes a
// canned result back onto the response queue under the task's
// correlation id.
func runFakeWorker(t *testing.T, broker *mq.Fake, queue, responseQueue string, result json.RawMessage) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go broker.Consume(ctx, queue, func(ctx context.Context, msg mq.Message) error {
		var task judgemodel.Task
		if err := json.Unmarshal(msg.Body, &task); err != nil {
			return nil
		}
		resp := judgemodel.Response{CorrelationID: task.CorrelationID, Result: result}
		body, _ := json.Marshal(resp)
		return broker.Publish(ctx, responseQueue, mq.Message{Body: body})
	})
	return cancel
}

func newTestHandler(t *testing.T, broker *mq.Fake, cat CatalogClient, counter SubmissionCounter) (*Handler, context.CancelFunc) {
	t.Helper()
	d := NewDispatcher(broker, "response_queue")
	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	cfg := Config{
		ExecuteQueue:    "execute_queue",
		EvaluateQueue:   "evaluate_queue",
		ExecuteTimeout:  time.Second,
		EvaluateTimeout: time.Second,
	}
	return NewHandler(broker, d, cat, counter, cfg), cancel
}

func TestExecuteRoundTripsThroughBroker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := mq.NewFake()
	result := json.RawMessage(`{"status":"success","output":"3\n"}`)
	stopWorker := runFakeWorker(t, broker, "execute_queue", "response_queue", result)
	defer stopWorker()

	h, stop := newTestHandler(t, broker, stubCatalog{}, stubCounter{})
	defer stop()

	r := gin.New()
	r.POST("/execute", h.Execute)

	body := strings.NewReader(`{"processor_id":"python3","code":"print(1+2)","stdin":""}`)
	req := httptest.NewRequest(http.MethodPost, "/execute", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "success") {
		t.Fatalf("expected forwarded result, got %s", w.Body.String())
	}
}

func TestExecuteTimesOutWhenNoWorkerResponds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := mq.NewFake()
	h, stop := newTestHandler(t, broker, stubCatalog{}, stubCounter{})
	stop()
	h.cfg.ExecuteTimeout = 30 * time.Millisecond

	r := gin.New()
	r.POST("/execute", h.Execute)

	req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{"processor_id":"python3","code":"x"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEvaluateRejectsUnapprovedRegistration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := mq.NewFake()
	h, stop := newTestHandler(t, broker, stubCatalog{contest: catalog.Contest{}}, stubCounter{})
	defer stop()

	r := gin.New()
	r.POST("/evaluate", h.Evaluate)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"processor_id":"c++17","code":"x","contest_id":"c1","problem_id":"p1"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEvaluateRejectsAtSubmissionLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := mq.NewFake()
	contest := catalog.Contest{
		Registrations: []catalog.Registration{{Status: "approved"}},
		Problems:      []catalog.Problem{{ID: "p1", MaxSubmissions: 1}},
	}
	h, stop := newTestHandler(t, broker, stubCatalog{contest: contest}, stubCounter{count: 1})
	defer stop()

	r := gin.New()
	r.POST("/evaluate", h.Evaluate)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"processor_id":"c++17","code":"x","contest_id":"c1","problem_id":"p1"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEvaluateRoundTripsWithAttachedTestcases(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := mq.NewFake()
	result := json.RawMessage(`{"results":[],"summary":{"passed":0,"failed":0,"total":0,"total_score":0}}`)
	stopWorker := runFakeWorker(t, broker, "evaluate_queue", "response_queue", result)
	defer stopWorker()

	contest := catalog.Contest{
		Registrations: []catalog.Registration{{Status: "approved"}},
		Problems:      []catalog.Problem{{ID: "p1", MaxSubmissions: 0, Testcases: []catalog.Testcase{{ID: "1", Input: "1", Expected: "1", Score: 100, IsPublic: true}}}},
	}
	h, stop := newTestHandler(t, broker, stubCatalog{contest: contest}, stubCounter{count: 0})
	defer stop()

	r := gin.New()
	r.POST("/evaluate", h.Evaluate)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"processor_id":"c++17","code":"x","contest_id":"c1","problem_id":"p1"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
