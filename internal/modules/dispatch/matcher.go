// README: Pure rider selection by weighted distance/rating score.
package dispatch

import (
	"khabar/internal/modules/rider"
	"khabar/internal/types"
)

// maxRating is the ceiling of the rider rating scale; a lower rating adds
// (maxRating - rating) * ratingWeight to the score.
const maxRating = 5.0

// Candidate pairs a rider with their distance to the restaurant, the only
// geography the score cares about.
type Candidate struct {
	Rider      rider.Rider
	DistanceKm float64
}

// Matcher scores candidates; lower is better. It never mutates rider or
// order state — the claim is the coordinator's job.
type Matcher struct {
	DistanceWeight float64
	RatingWeight   float64
}

// Score is distanceWeight*distanceKm + ratingWeight*(maxRating - rating).
func (m Matcher) Score(c Candidate) float64 {
	return m.DistanceWeight*c.DistanceKm + m.RatingWeight*(maxRating-c.Rider.Rating)
}

// Select returns the single best-scoring candidate. Ties break on ascending
// rider id so matching is reproducible. Empty input is ErrNoEligibleRider.
func (m Matcher) Select(candidates []Candidate) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoEligibleRider
	}
	best := candidates[0]
	bestScore := m.Score(best)
	for _, c := range candidates[1:] {
		score := m.Score(c)
		if score < bestScore || (score == bestScore && c.Rider.ID < best.Rider.ID) {
			best = c
			bestScore = score
		}
	}
	return best, nil
}

// exclusions is the shrinking-pool bookkeeping for claim retries.
type exclusions map[types.ID]struct{}

func (e exclusions) add(id types.ID) { e[id] = struct{}{} }

func (e exclusions) has(id types.ID) bool { _, ok := e[id]; return ok }
