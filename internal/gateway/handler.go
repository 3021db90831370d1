// Package gateway implements the HTTP surface spec.md 6 names: GET /,
// POST /execute, POST /evaluate. Grounded on the teacher's gin controller
// style (internal/judge/controller) and cmd/gateway/main.go wiring.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"judgecore/internal/auth"
	"judgecore/internal/broker/mq"
	"judgecore/internal/catalog"
	"judgecore/internal/judgemodel"
	"judgecore/pkg/errors"
	"judgecore/pkg/utils/response"
)

// CatalogClient is the narrow contest-catalog surface the gateway needs.
type CatalogClient interface {
	GetContest(ctx context.Context, contestID string) (catalog.Contest, error)
}

// SubmissionCounter is the narrow core-service surface the gateway needs
// to enforce max_submissions.
type SubmissionCounter interface {
	SubmissionCount(ctx context.Context, userID, contestID, problemID string) (int, error)
}

// Config carries the queue names and poll timeouts spec.md 4.3.2 fixes:
// execute = 10s, evaluate = 30s.
type Config struct {
	ExecuteQueue     string
	EvaluateQueue    string
	ExecuteTimeout   time.Duration
	EvaluateTimeout  time.Duration
}

// Handler wires the gateway's HTTP surface to the broker and the
// external collaborators.
type Handler struct {
	broker     mq.MessageQueue
	dispatcher *Dispatcher
	catalog    CatalogClient
	counter    SubmissionCounter
	cfg        Config
}

// NewHandler builds a gateway Handler.
func NewHandler(broker mq.MessageQueue, dispatcher *Dispatcher, catalogClient CatalogClient, counter SubmissionCounter, cfg Config) *Handler {
	return &Handler{broker: broker, dispatcher: dispatcher, catalog: catalogClient, counter: counter, cfg: cfg}
}

// Health implements GET / and GET /healthz, reporting the broker
// connection's liveness alongside process liveness.
func (h *Handler) Health(c *gin.Context) {
	if err := h.broker.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "broker unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// Execute implements POST /execute.
func (h *Handler) Execute(c *gin.Context) {
	var req judgemodel.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.publishAndWait(c.Request.Context(), judgemodel.TaskExecute, req, h.cfg.ExecuteQueue, h.cfg.ExecuteTimeout)
	if err != nil {
		response.ErrorWithCode(c, errors.GetCode(err), err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json", resp.Result)
}

// Evaluate implements POST /evaluate: authenticate, validate
// contest/problem ids, check registration and submission quota, attach
// testcases, then publish+poll like Execute.
func (h *Handler) Evaluate(c *gin.Context) {
	var req judgemodel.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	req.UserID = auth.UserID(c)

	if req.ContestID == "" || req.ProblemID == "" {
		response.BadRequest(c, "contest_id and problem_id are required")
		return
	}

	ctx := c.Request.Context()
	contest, err := h.catalog.GetContest(ctx, req.ContestID)
	if err != nil {
		response.Forbidden(c, "contest not found")
		return
	}
	if !contest.IsApproved(req.UserID) {
		response.Forbidden(c, "user is not an approved registration")
		return
	}
	problem, ok := contest.Problem(req.ProblemID)
	if !ok {
		response.Forbidden(c, "problem not found in contest")
		return
	}

	count, err := h.counter.SubmissionCount(ctx, req.UserID, req.ContestID, req.ProblemID)
	if err != nil {
		response.InternalServerError(c, err)
		return
	}
	if problem.MaxSubmissions > 0 && count >= problem.MaxSubmissions {
		response.Forbidden(c, "submission limit reached")
		return
	}

	req.Testcases = make([]judgemodel.Testcase, 0, len(problem.Testcases))
	for _, tc := range problem.Testcases {
		req.Testcases = append(req.Testcases, judgemodel.Testcase{
			ID:       tc.ID,
			Input:    tc.Input,
			Expected: tc.Expected,
			Score:    tc.Score,
			IsPublic: tc.IsPublic,
		})
	}

	resp, err := h.publishAndWait(ctx, judgemodel.TaskEvaluate, req, h.cfg.EvaluateQueue, h.cfg.EvaluateTimeout)
	if err != nil {
		response.ErrorWithCode(c, errors.GetCode(err), err.Error())
		return
	}
	var result judgemodel.EvaluationResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		response.InternalServerError(c, err)
		return
	}
	response.Success(c, gin.H{"result": result})
}

// publishAndWait builds a fresh-correlation-id Task, publishes it to
// queue, and blocks on the dispatcher's notifier channel up to timeout
// (spec.md 4.3.2's poll loop, reimplemented as the §9 notifier pattern).
func (h *Handler) publishAndWait(ctx context.Context, taskType judgemodel.TaskType, payload interface{}, queue string, timeout time.Duration) (judgemodel.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return judgemodel.Response{}, errors.Wrap(err, errors.InvalidParams)
	}

	correlationID := uuid.NewString()
	task := judgemodel.Task{Type: taskType, Payload: body, CorrelationID: correlationID}
	taskBody, err := json.Marshal(task)
	if err != nil {
		return judgemodel.Response{}, errors.Wrap(err, errors.InvalidParams)
	}

	waitCh := h.dispatcher.Register(correlationID)
	defer h.dispatcher.Forget(correlationID)

	if err := h.broker.Publish(ctx, queue, mq.Message{Body: taskBody}); err != nil {
		return judgemodel.Response{}, errors.Wrap(err, errors.BrokerFailure)
	}

	select {
	case resp := <-waitCh:
		if resp.Error != "" {
			return judgemodel.Response{}, errors.Newf(errors.JudgeSystemError, "%s", resp.Error)
		}
		return resp, nil
	case <-time.After(timeout):
		return judgemodel.Response{}, errors.New(errors.GatewayTimeout)
	case <-ctx.Done():
		return judgemodel.Response{}, errors.New(errors.GatewayTimeout)
	}
}
