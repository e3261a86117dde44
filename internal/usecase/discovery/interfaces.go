package discovery

// Metrics counts discovery outcomes
type Metrics interface {
	Recommendation(models []string)
	QuestionnaireCompleted()
}
