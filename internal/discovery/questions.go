// Package discovery decides which business model fits a user: it normalizes free-text
// questionnaire answers, walks the questionnaire state machine and scores the answers.
package discovery

import "github.com/futig/coach-backend/internal/entity"

// Canonical answer values per category
const (
	CapitalLow  entity.AnswerValue = "$0-500"
	CapitalMid  entity.AnswerValue = "$500-2000"
	CapitalHigh entity.AnswerValue = "$2000+"

	TimeLow  entity.AnswerValue = "<10 hours"
	TimeMid  entity.AnswerValue = "10-20 hours"
	TimeHigh entity.AnswerValue = "20+ hours"

	ProfitLow  entity.AnswerValue = "1-2k"
	ProfitMid  entity.AnswerValue = "3-5k"
	ProfitHigh entity.AnswerValue = "5k+"

	SkillWriting   entity.AnswerValue = "writing"
	SkillSales     entity.AnswerValue = "sales"
	SkillTechnical entity.AnswerValue = "technical"
	SkillCreative  entity.AnswerValue = "creative"

	Yes entity.AnswerValue = "yes"
	No  entity.AnswerValue = "no"

	PreferClients  entity.AnswerValue = "clients"
	PreferProducts entity.AnswerValue = "products"

	WorkSolo entity.AnswerValue = "solo"
	WorkTeam entity.AnswerValue = "team"
)

var questions = []entity.Question{
	{Index: 0, Category: entity.CategoryCapital, Text: "How much money can you invest to get started? ($0-500, $500-2000, or $2000+)"},
	{Index: 1, Category: entity.CategoryTimePerWeek, Text: "How many hours per week can you dedicate to your business? (<10, 10-20, or 20+ hours)"},
	{Index: 2, Category: entity.CategoryTargetProfit, Text: "What monthly profit are you aiming for in the first year? (1-2k, 3-5k, or 5k+)"},
	{Index: 3, Category: entity.CategoryNaturalSkill, Text: "Which of these comes most naturally to you: writing, sales, technical work, or creative work?"},
	{Index: 4, Category: entity.CategoryOpenToSales, Text: "Are you open to getting on sales calls with potential clients? (yes/no)"},
	{Index: 5, Category: entity.CategoryContentCreation, Text: "Would you enjoy creating content for social media? (yes/no)"},
	{Index: 6, Category: entity.CategoryEnjoyWriting, Text: "Do you enjoy writing for long stretches? (yes/no)"},
	{Index: 7, Category: entity.CategoryTechProblemSolving, Text: "Do you like solving technical problems, like building tools or automations? (yes/no)"},
	{Index: 8, Category: entity.CategoryClientPreference, Text: "Would you rather work with clients or sell products?"},
	{Index: 9, Category: entity.CategoryTeamPreference, Text: "Do you see yourself working solo or building a team?"},
}

var categoryValues = map[entity.Category][]entity.AnswerValue{
	entity.CategoryCapital:            {CapitalLow, CapitalMid, CapitalHigh},
	entity.CategoryTimePerWeek:        {TimeLow, TimeMid, TimeHigh},
	entity.CategoryTargetProfit:       {ProfitLow, ProfitMid, ProfitHigh},
	entity.CategoryNaturalSkill:       {SkillWriting, SkillSales, SkillTechnical, SkillCreative},
	entity.CategoryOpenToSales:        {Yes, No},
	entity.CategoryContentCreation:    {Yes, No},
	entity.CategoryEnjoyWriting:       {Yes, No},
	entity.CategoryTechProblemSolving: {Yes, No},
	entity.CategoryClientPreference:   {PreferClients, PreferProducts},
	entity.CategoryTeamPreference:     {WorkSolo, WorkTeam},
}

// Questions returns a copy of the fixed question list
func Questions() []entity.Question {
	out := make([]entity.Question, len(questions))
	copy(out, questions)
	return out
}

// QuestionCount is the length of the questionnaire
func QuestionCount() int {
	return len(questions)
}

// QuestionAt returns the question at index, false when out of range
func QuestionAt(index int) (entity.Question, bool) {
	if index < 0 || index >= len(questions) {
		return entity.Question{}, false
	}
	return questions[index], true
}

// AllowedValues returns the closed answer set of a category
func AllowedValues(category entity.Category) []entity.AnswerValue {
	values := categoryValues[category]
	out := make([]entity.AnswerValue, len(values))
	copy(out, values)
	return out
}
