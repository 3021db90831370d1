package plagiarism

// vectorEntry pairs a submission's metadata with its L2-normalized
// embedding, the unit of work for findSuspiciousPairs.
type vectorEntry struct {
	UserID       string
	Username     string
	SubmissionID string
	RawCode      string
	Vector       []float32
}

// findSuspiciousPairs searches, for every ordered pair of distinct users,
// each of A's vectors against B's vectors for its top-1 inner-product
// match, emitting a pair when the score exceeds threshold. Grounded on
// similarity.py's find_suspicious_pairs (per-user-pair IndexFlatIP, k=1),
// reimplemented as a brute-force scan since the pack has no FAISS
// equivalent and per-problem submission counts are small.
func findSuspiciousPairs(entries []vectorEntry, threshold float64) []SuspiciousPair {
	byUser := make(map[string][]int)
	for i, e := range entries {
		byUser[e.UserID] = append(byUser[e.UserID], i)
	}

	var pairs []SuspiciousPair
	for userA, idxA := range byUser {
		for userB, idxB := range byUser {
			if userA == userB {
				continue
			}
			for _, i := range idxA {
				bestJ := -1
				bestScore := -1.0
				for _, j := range idxB {
					score := innerProduct(entries[i].Vector, entries[j].Vector)
					if score > bestScore {
						bestScore = score
						bestJ = j
					}
				}
				if bestJ == -1 || bestScore <= threshold {
					continue
				}
				a, b := entries[i], entries[bestJ]
				pairs = append(pairs, SuspiciousPair{
					UserA: a.UserID, UsernameA: a.Username, SubmissionA: a.SubmissionID, RawCodeA: a.RawCode,
					UserB: b.UserID, UsernameB: b.Username, SubmissionB: b.SubmissionID, RawCodeB: b.RawCode,
					Similarity: bestScore,
				})
			}
		}
	}
	return pairs
}

func innerProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
