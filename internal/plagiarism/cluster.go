package plagiarism

import (
	"context"

	"judgecore/pkg/utils/logger"
)

// Pipeline runs the collect/normalize/embed/search/cluster algorithm,
// grounded on check_pipeline.py's SemanticSimilarityPipeline.
type Pipeline struct {
	normalizer Normalizer
	embedder   Embedder
	threshold  float64
}

// NewPipeline builds a Pipeline. threshold <= 0 defaults to DefaultThreshold.
func NewPipeline(normalizer Normalizer, embedder Embedder, threshold float64) *Pipeline {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Pipeline{normalizer: normalizer, embedder: embedder, threshold: threshold}
}

// Run clusters copies per problem. The set of problems checked is taken
// from the first user's problem list, matching check_pipeline.py's
// `submissions_data[0].problems` iteration: every other user's submissions
// to those same problem ids are then pulled in.
func (p *Pipeline) Run(ctx context.Context, users []UserData) ([]ProblemResult, error) {
	if len(users) == 0 || len(users[0].Problems) == 0 {
		return nil, nil
	}

	var results []ProblemResult
	for _, prob := range users[0].Problems {
		problemID := prob.Problem.ID
		problemName := prob.Problem.Name

		entries, err := p.collectAndEmbed(ctx, users, problemID)
		if err != nil {
			return nil, err
		}

		pairs := findSuspiciousPairs(entries, p.threshold)
		clusters := groupCopies(pairs, p.threshold)

		results = append(results, ProblemResult{
			ProblemID:   problemID,
			ProblemName: problemName,
			CheckResult: clusters,
		})
	}
	return results, nil
}

func (p *Pipeline) collectAndEmbed(ctx context.Context, users []UserData, problemID string) ([]vectorEntry, error) {
	var entries []vectorEntry
	seen := make(map[string]bool)

	for _, u := range users {
		var matching *ProblemData
		for i := range u.Problems {
			if u.Problems[i].Problem.ID == problemID {
				matching = &u.Problems[i]
				break
			}
		}
		if matching == nil {
			continue
		}

		for _, s := range matching.Submissions {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true

			normalized, err := p.normalizer.Normalize(ctx, s.Code)
			if err != nil {
				logger.Warnf(ctx, "plagiarism: normalize failed for submission %s, using raw code: %v", s.ID, err)
				normalized = s.Code
			}

			vec, err := p.embedder.Embed(ctx, normalized)
			if err != nil {
				return nil, err
			}
			l2Normalize(vec)

			entries = append(entries, vectorEntry{
				UserID:       u.User.ID,
				Username:     u.User.Username,
				SubmissionID: s.ID,
				RawCode:      s.Code,
				Vector:       vec,
			})
		}
	}
	return entries, nil
}
