// Side-effect posting after an evaluate task: submit the scored
// submission and update the leaderboard, grounded on worker.py's
// update_leaderboard/submit_to_core (httpx POST, x-internal-api-key
// header, 5s timeout) — failures are logged and never propagate back
// into the Response already published to the caller.
package worker

import (
	"context"

	"judgecore/internal/coreclient"
	"judgecore/internal/judgemodel"
	"judgecore/internal/processor"
	"judgecore/pkg/utils/logger"
)

// CoreClient is the narrow core-service surface side effects need.
type CoreClient interface {
	PostSubmission(ctx context.Context, rec coreclient.SubmissionRecord) error
	PostLeaderboardUpdate(ctx context.Context, u coreclient.LeaderboardUpdate) error
}

// postSideEffects submits the scored result and updates the leaderboard.
// Best-effort: every failure is logged, none is returned to the caller.
func postSideEffects(ctx context.Context, client CoreClient, req judgemodel.EvaluateRequest, res judgemodel.EvaluationResult) {
	if client == nil {
		return
	}

	score := res.Summary.TotalScore
	language := ""
	if p, err := processor.Lookup(req.ProcessorID); err == nil {
		language = p.Language
	}

	records := make([]coreclient.TestcaseResultRecord, 0, len(res.Results))
	for _, r := range res.Results {
		records = append(records, coreclient.TestcaseResultRecord{
			TestID:   r.TestID,
			Status:   r.Status,
			Score:    r.Score,
			Expected: r.Expected,
		})
	}

	if err := client.PostSubmission(ctx, coreclient.SubmissionRecord{
		UserID:          req.UserID,
		Contest:         req.ContestID,
		Problem:         req.ProblemID,
		Code:            req.Code,
		Language:        language,
		Processor:       req.ProcessorID,
		Score:           score,
		TestcaseResults: records,
	}); err != nil {
		logger.Warnf(ctx, "submit to core failed for user %s: %v", req.UserID, err)
	}

	if err := client.PostLeaderboardUpdate(ctx, coreclient.LeaderboardUpdate{
		ContestID: req.ContestID,
		ProblemID: req.ProblemID,
		UserID:    req.UserID,
		Score:     score,
	}); err != nil {
		logger.Warnf(ctx, "leaderboard update failed for user %s in contest %s: %v", req.UserID, req.ContestID, err)
	}
}
