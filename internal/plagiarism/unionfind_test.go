package plagiarism

import "testing"

func TestGroupCopiesUnionsTransitiveChain(t *testing.T) {
	pairs := []SuspiciousPair{
		{SubmissionA: "s1", UserA: "u1", SubmissionB: "s2", UserB: "u2", Similarity: 0.99},
		{SubmissionA: "s2", UserA: "u2", SubmissionB: "s3", UserB: "u3", Similarity: 0.98},
	}

	clusters := groupCopies(pairs, 0.97)
	if len(clusters) != 1 {
		t.Fatalf("expected one transitive cluster, got %d", len(clusters))
	}
	if len(clusters[0]) != 3 {
		t.Fatalf("expected cluster of 3 submissions, got %d", len(clusters[0]))
	}
}

func TestGroupCopiesOmitsSingletons(t *testing.T) {
	pairs := []SuspiciousPair{
		{SubmissionA: "s1", UserA: "u1", SubmissionB: "s2", UserB: "u2", Similarity: 0.5},
	}

	clusters := groupCopies(pairs, 0.97)
	if len(clusters) != 0 {
		t.Fatalf("expected no clusters below threshold, got %d", len(clusters))
	}
}

func TestGroupCopiesSeparatesDisjointPairs(t *testing.T) {
	pairs := []SuspiciousPair{
		{SubmissionA: "s1", UserA: "u1", SubmissionB: "s2", UserB: "u2", Similarity: 0.99},
		{SubmissionA: "s3", UserA: "u3", SubmissionB: "s4", UserB: "u4", Similarity: 0.99},
	}

	clusters := groupCopies(pairs, 0.97)
	if len(clusters) != 2 {
		t.Fatalf("expected two disjoint clusters, got %d", len(clusters))
	}
}
