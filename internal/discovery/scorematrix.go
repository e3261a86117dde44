package discovery

import "github.com/futig/coach-backend/internal/entity"

// weights is a per-model point vector in entity.ModelOrder order:
// ecom, copy, smma, sales, saas.
type weights [5]int

// scoreMatrix holds the hand-tuned scoring table. Changing a weight silently changes
// recommendations, so every value here is pinned by tests.
var scoreMatrix = map[entity.Category]map[entity.AnswerValue]weights{
	entity.CategoryCapital: {
		CapitalLow:  {0, 3, 2, 3, 0},
		CapitalMid:  {2, 2, 2, 2, 1},
		CapitalHigh: {3, 1, 1, 1, 3},
	},
	entity.CategoryTimePerWeek: {
		TimeLow:  {1, 2, 0, 1, 0},
		TimeMid:  {2, 2, 2, 2, 1},
		TimeHigh: {2, 1, 2, 2, 3},
	},
	entity.CategoryTargetProfit: {
		ProfitLow:  {1, 3, 1, 2, 0},
		ProfitMid:  {2, 2, 3, 3, 1},
		ProfitHigh: {3, 1, 2, 2, 3},
	},
	entity.CategoryNaturalSkill: {
		SkillWriting:   {0, 4, 1, 0, 0},
		SkillSales:     {1, 0, 2, 4, 0},
		SkillTechnical: {1, 0, 0, 0, 4},
		SkillCreative:  {3, 1, 2, 0, 0},
	},
	entity.CategoryOpenToSales: {
		Yes: {0, 1, 2, 3, 0},
		No:  {2, 1, 0, 0, 2},
	},
	entity.CategoryContentCreation: {
		Yes: {1, 1, 3, 0, 0},
		No:  {0, 0, 0, 1, 1},
	},
	entity.CategoryEnjoyWriting: {
		Yes: {0, 3, 1, 0, 0},
		No:  {1, 0, 0, 1, 1},
	},
	entity.CategoryTechProblemSolving: {
		Yes: {1, 0, 0, 0, 3},
		No:  {0, 1, 1, 1, 0},
	},
	entity.CategoryClientPreference: {
		PreferClients:  {0, 2, 2, 2, 0},
		PreferProducts: {3, 0, 0, 0, 3},
	},
	entity.CategoryTeamPreference: {
		WorkSolo: {1, 2, 0, 1, 0},
		WorkTeam: {1, 0, 2, 1, 2},
	},
}

// contribution returns the points an answer adds per model. Unknown categories or
// values contribute nothing.
func contribution(category entity.Category, value entity.AnswerValue) (weights, bool) {
	row, ok := scoreMatrix[category]
	if !ok {
		return weights{}, false
	}
	w, ok := row[value]
	return w, ok
}
