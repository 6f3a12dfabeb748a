package rating

import "mytutor/models"

// averageScore is the arithmetic mean of the scores, or DefaultRating when
// there are none.
func averageScore(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return models.DefaultRating
	}
	total := 0
	for _, r := range reviews {
		total += r.Score
	}
	return float64(total) / float64(len(reviews))
}

func validScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
