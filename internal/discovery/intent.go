package discovery

import (
	"fmt"
	"strings"

	"github.com/futig/coach-backend/internal/entity"
)

// KnownModelAcknowledgement is returned when the user already names a business model
const KnownModelAcknowledgement = "Great, you already know what you want to build! Let's set up your project and start with the first stage of your roadmap."

// intentRules is checked top to bottom; the first model whose rule matches wins.
var intentRules = []struct {
	model entity.ModelKey
	rule  rule
}{
	{entity.ModelEcom, rule{contains: []string{"ecommerce", "e-commerce", "dropship", "online store", "shopify"}, words: []string{"ecom"}}},
	{entity.ModelSMMA, rule{contains: []string{"smma", "agency", "social media marketing"}}},
	{entity.ModelCopy, rule{contains: []string{"copywrit"}}},
	{entity.ModelSales, rule{contains: []string{"high ticket", "high-ticket", "closer"}}},
	{entity.ModelSaaS, rule{contains: []string{"saas", "software"}}},
}

// DetectKnownModel reports which business model the text names, if any
func DetectKnownModel(input string) (entity.ModelKey, bool) {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		return "", false
	}
	words := tokenize(text)
	for _, ir := range intentRules {
		if ir.rule.matches(text, words) {
			return ir.model, true
		}
	}
	return "", false
}

// Begin is the entry point of discovery. A message naming a known model short-circuits
// the questionnaire with a fixed acknowledgement; anything else starts it with the first question.
func Begin(input string) entity.DiscoveryReply {
	if model, ok := DetectKnownModel(input); ok {
		return entity.DiscoveryReply{
			Message:    KnownModelAcknowledgement,
			KnownModel: &model,
		}
	}

	first := questions[0]
	return entity.DiscoveryReply{
		Message:  first.Text,
		Question: &first,
	}
}

// RecommendationMessage renders a recommendation for the user. Ties ask the user to choose.
func RecommendationMessage(rec entity.BusinessRecommendation) string {
	if rec.IsTie() {
		return fmt.Sprintf("Your answers fit %s equally well. Which one would you like to pursue?", rec.Label())
	}
	return fmt.Sprintf("Based on your answers, the best fit for you is %s.", rec.Label())
}
