package entity

type StartDiscoveryRequest struct {
	Input string `json:"input"`
}

type SubmitDiscoveryAnswerRequest struct {
	Answer string `json:"answer"`
}

// DiscoveryReply is what the discovery flow answers to one user message
type DiscoveryReply struct {
	Message        string                  `json:"message"`
	Question       *Question               `json:"question,omitempty"`
	KnownModel     *ModelKey               `json:"known_model,omitempty"`
	Completed      bool                    `json:"completed"`
	Recommendation *BusinessRecommendation `json:"recommendation,omitempty"`
}

type RecommendationDTO struct {
	Label          string         `json:"label"`
	Models         []ModelKey     `json:"models"`
	IsTie          bool           `json:"is_tie"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
	AnsweredCount  int            `json:"answered_count"`
}
