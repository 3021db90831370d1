// Package plagiarism implements the semantic-copy detection engine (spec.md
// 4.4): collect submissions per problem, normalize, embed, L2-normalize,
// search for suspicious pairs, and union-find into clusters. Grounded on
// original_source/services/check_code/app/{models/schemas.py,core/check_pipeline.py}.
package plagiarism

// Submission mirrors original_source's Submission schema: a single code
// artifact scored by the judge pipeline.
type Submission struct {
	ID        string  `json:"_id"`
	Code      string  `json:"code"`
	Language  string  `json:"language"`
	Processor string  `json:"processor"`
	Score     float64 `json:"score"`
}

// ProblemInfo identifies a problem within a ProblemData entry.
type ProblemInfo struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ProblemData is one user's submissions to one problem.
type ProblemData struct {
	Problem     ProblemInfo  `json:"problem"`
	Submissions []Submission `json:"submissions"`
}

// UserInfo identifies the submitting user.
type UserInfo struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserData is the request body shape for POST /semantic-code: one user's
// submissions across every problem they attempted.
type UserData struct {
	User     UserInfo      `json:"user"`
	Problems []ProblemData `json:"problems"`
}

// SuspiciousPair is an ordered match between two distinct users' submissions
// to the same problem, carrying the cosine similarity that triggered it.
type SuspiciousPair struct {
	UserA       string
	UsernameA   string
	SubmissionA string
	RawCodeA    string
	UserB       string
	UsernameB   string
	SubmissionB string
	RawCodeB    string
	Similarity  float64
}

// ClusterMember is one submission inside an emitted copy cluster.
type ClusterMember struct {
	SubmissionID string `json:"submission_id"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Code         string `json:"code"`
}

// Cluster is a connected component of suspicious pairs, size >= 2.
type Cluster []ClusterMember

// ProblemResult is one problem's clustering outcome.
type ProblemResult struct {
	ProblemID   string    `json:"problem_id"`
	ProblemName string    `json:"problem_name"`
	CheckResult []Cluster `json:"checkResult"`
}

// DefaultThreshold is the cosine-similarity cutoff above which two
// submissions are considered copies, matching similarity.py's THRESHOLD.
const DefaultThreshold = 0.97
