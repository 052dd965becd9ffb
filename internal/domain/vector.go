package domain

import "math"

// Vector is an embedding stored in the similarity index.
type Vector struct {
	ID     string
	Values []float64
}

// Match is one result of a similarity query, ordered by descending Score.
type Match struct {
	ID    string
	Score float64
}

// IndexMarkerID is the reserved vector ID recording the newest issue number
// already indexed for a repository.
const IndexMarkerID = "LAST"

// Cosine returns the cosine similarity of a and b. Mismatched lengths and zero
// vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
