package search

import (
	"math"
	"sort"
)

// DefaultTopK is the number of ranked results retained.
const DefaultTopK = 20

// floorScore ranks below every real cosine similarity (which lives in
// [-1, 1]); candidates with a zero-magnitude or mismatched vector get it so
// they sort last instead of injecting NaN into the ordering.
const floorScore = -2.0

// Candidate pairs a file with its stored embedding vector. The caller scopes
// candidates to the requesting principal; the engine does no ownership
// filtering.
type Candidate struct {
	FileID string
	Vector []float32
}

// Match is one ranked result.
type Match struct {
	FileID string
	Score  float64
}

// Rank scores every candidate by cosine similarity to the query and returns
// the top k in descending order. Ties keep first-seen input order, so
// identical inputs always produce identical rankings. k <= 0 selects
// DefaultTopK.
func Rank(query []float32, cands []Candidate, k int) []Match {
	if k <= 0 {
		k = DefaultTopK
	}

	matches := make([]Match, 0, len(cands))
	for _, c := range cands {
		matches = append(matches, Match{FileID: c.FileID, Score: Cosine(query, c.Vector)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// Cosine computes dot(a,b) / (|a|*|b|) in float64. A zero-magnitude vector
// or a length mismatch yields floorScore rather than NaN, keeping the sort
// order well defined.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return floorScore
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return floorScore
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
