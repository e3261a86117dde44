package discovery

import "github.com/futig/coach-backend/internal/entity"

// CalculateRecommendation scores answers against the matrix and returns every model that
// attains the maximum, in declaration order. It accepts partial answer sets and never fails.
func CalculateRecommendation(answers entity.UserAnswers) entity.BusinessRecommendation {
	breakdown := make(entity.ScoreBreakdown, len(entity.ModelOrder))
	for _, m := range entity.ModelOrder {
		breakdown[m] = 0
	}

	for category, value := range answers {
		w, ok := contribution(category, value)
		if !ok {
			continue
		}
		for i, m := range entity.ModelOrder {
			breakdown[m] += w[i]
		}
	}

	best := -1
	for _, m := range entity.ModelOrder {
		if breakdown[m] > best {
			best = breakdown[m]
		}
	}

	recommended := make([]entity.ModelKey, 0, 1)
	for _, m := range entity.ModelOrder {
		if breakdown[m] == best {
			recommended = append(recommended, m)
		}
	}

	return entity.BusinessRecommendation{
		RecommendedModels: recommended,
		ScoreBreakdown:    breakdown,
	}
}
