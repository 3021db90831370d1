package plagiarism

import "testing"

func TestFindSuspiciousPairsMatchesAboveThreshold(t *testing.T) {
	entries := []vectorEntry{
		{UserID: "u1", Username: "alice", SubmissionID: "s1", RawCode: "a", Vector: []float32{1, 0}},
		{UserID: "u2", Username: "bob", SubmissionID: "s2", RawCode: "b", Vector: []float32{1, 0}},
	}

	pairs := findSuspiciousPairs(entries, 0.97)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 ordered pairs (u1->u2 and u2->u1), got %d", len(pairs))
	}
	for _, p := range pairs {
		if p.Similarity <= 0.97 {
			t.Fatalf("expected similarity above threshold, got %f", p.Similarity)
		}
	}
}

func TestFindSuspiciousPairsSkipsSameUser(t *testing.T) {
	entries := []vectorEntry{
		{UserID: "u1", SubmissionID: "s1", Vector: []float32{1, 0}},
		{UserID: "u1", SubmissionID: "s2", Vector: []float32{1, 0}},
	}

	pairs := findSuspiciousPairs(entries, 0.97)
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs for a single user's own submissions, got %d", len(pairs))
	}
}

func TestFindSuspiciousPairsBelowThresholdOmitted(t *testing.T) {
	entries := []vectorEntry{
		{UserID: "u1", SubmissionID: "s1", Vector: []float32{1, 0}},
		{UserID: "u2", SubmissionID: "s2", Vector: []float32{0, 1}},
	}

	pairs := findSuspiciousPairs(entries, 0.97)
	if len(pairs) != 0 {
		t.Fatalf("expected orthogonal vectors to produce no suspicious pairs, got %d", len(pairs))
	}
}

func TestFindSuspiciousPairsPicksTopOneMatch(t *testing.T) {
	entries := []vectorEntry{
		{UserID: "u1", SubmissionID: "s1", Vector: []float32{1, 0}},
		{UserID: "u2", SubmissionID: "close", Vector: []float32{0.99, 0.01}},
		{UserID: "u2", SubmissionID: "far", Vector: []float32{0, 1}},
	}

	pairs := findSuspiciousPairs(entries, 0.5)
	var matched int
	for _, p := range pairs {
		if p.UserA == "u1" && p.UserB == "u2" {
			matched++
			if p.SubmissionB != "close" {
				t.Fatalf("expected top-1 match to be 'close', got %q", p.SubmissionB)
			}
		}
	}
	if matched != 1 {
		t.Fatalf("expected exactly one u1->u2 match (top-1 only), got %d", matched)
	}
}
