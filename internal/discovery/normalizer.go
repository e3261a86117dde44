package discovery

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/futig/coach-backend/internal/entity"
)

// rule maps raw text to value when any substring or whole word matches.
type rule struct {
	value    entity.AnswerValue
	contains []string
	words    []string
}

// ruleSet normalizes one question. When amount is set the first number in the text
// decides the bucket and the keyword rules only see text without a number.
type ruleSet struct {
	amount   func(n float64) entity.AnswerValue
	rules    []rule
	fallback entity.AnswerValue
}

var yesNoRules = ruleSet{
	rules: []rule{
		{value: No, contains: []string{"n't", "n’t", "no way", "rather not"}, words: []string{"no", "n", "nah", "nope", "not", "never", "dont", "cant", "wont", "hate"}},
		{value: Yes, contains: []string{"yes", "yeah", "yep", "sure", "definitely", "absolutely", "love", "enjoy", "like", "open", "of course"}, words: []string{"y", "ok", "okay"}},
	},
	fallback: No,
}

// normalizationRules is indexed by question index. Order inside a set matters:
// the first matching rule wins, so specific patterns come before their substrings.
var normalizationRules = []ruleSet{
	// capital
	{
		amount: func(n float64) entity.AnswerValue {
			switch {
			case n < 500:
				return CapitalLow
			case n < 2000:
				return CapitalMid
			default:
				return CapitalHigh
			}
		},
		rules: []rule{
			{value: CapitalLow, contains: []string{"less", "little", "nothing", "none", "zero", "broke"}},
			{value: CapitalHigh, contains: []string{"more", "plenty", "lots"}},
			{value: CapitalMid, contains: []string{"between"}},
		},
		fallback: CapitalMid,
	},
	// timePerWeek
	{
		amount: func(n float64) entity.AnswerValue {
			switch {
			case n < 10:
				return TimeLow
			case n < 20:
				return TimeMid
			default:
				return TimeHigh
			}
		},
		rules: []rule{
			{value: TimeMid, contains: []string{"part time", "part-time", "evenings", "weekends"}},
			{value: TimeHigh, contains: []string{"full", "lots", "plenty"}},
			{value: TimeLow, contains: []string{"less", "few", "little", "not much"}},
		},
		fallback: TimeMid,
	},
	// targetProfit
	{
		amount: func(n float64) entity.AnswerValue {
			// "3" or "3-5" means thousands a month
			if n < 100 {
				n *= 1000
			}
			switch {
			case n < 2500:
				return ProfitLow
			case n < 5000:
				return ProfitMid
			default:
				return ProfitHigh
			}
		},
		rules: []rule{
			{value: ProfitHigh, contains: []string{"more", "lots", "rich", "million"}},
			{value: ProfitLow, contains: []string{"side", "extra"}},
		},
		fallback: ProfitMid,
	},
	// naturalSkill
	{
		rules: []rule{
			{value: SkillWriting, contains: []string{"writ", "copy", "words", "blog"}},
			{value: SkillSales, contains: []string{"sell", "sales", "persua", "talk", "communicat", "negotiat", "people"}},
			{value: SkillTechnical, contains: []string{"tech", "code", "coding", "program", "develop", "engineer", "software", "build"}},
			{value: SkillCreative, contains: []string{"design", "creativ", "video", "art", "photo", "edit", "market"}},
		},
		fallback: SkillCreative,
	},
	// openToSales
	yesNoRules,
	// contentCreation
	yesNoRules,
	// enjoyWriting
	yesNoRules,
	// techProblemSolving
	yesNoRules,
	// clientPreference
	{
		rules: []rule{
			{value: PreferProducts, contains: []string{"product", "store", "brand", "software", "app", "inventory", "ecom", "shop"}},
			{value: PreferClients, contains: []string{"client", "service", "people", "agency", "freelanc", "customer"}},
		},
		fallback: PreferClients,
	},
	// teamPreference
	{
		rules: []rule{
			{value: WorkSolo, contains: []string{"solo", "alone", "myself", "on my own", "by my own", "independent", "just me"}},
			{value: WorkTeam, contains: []string{"team", "hire", "staff", "employ", "partner", "together", "people", "scale"}},
		},
		fallback: WorkSolo,
	},
}

// Normalize coerces raw text into the closed answer set of the question at questionIndex.
// It never fails: unmatched input falls back to the question's default bucket. An index
// outside the questionnaire yields the empty value, which scores zero.
func Normalize(rawText string, questionIndex int) entity.AnswerValue {
	question, ok := QuestionAt(questionIndex)
	if !ok {
		return ""
	}

	text := strings.ToLower(strings.TrimSpace(rawText))

	for _, v := range categoryValues[question.Category] {
		if text == strings.ToLower(string(v)) {
			return v
		}
	}

	set := normalizationRules[questionIndex]
	if set.amount != nil {
		if n, ok := parseAmount(text); ok {
			return set.amount(n)
		}
	}

	words := tokenize(text)
	for _, r := range set.rules {
		if r.matches(text, words) {
			return r.value
		}
	}

	return set.fallback
}

func (r rule) matches(text string, words map[string]struct{}) bool {
	for _, s := range r.contains {
		if strings.Contains(text, s) {
			return true
		}
	}
	for _, w := range r.words {
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}

func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		words[f] = struct{}{}
	}
	return words
}

const number = `(\d[\d,]*(?:\.\d+)?)\s*(k\b)?`

var (
	rangePattern  = regexp.MustCompile(number + `\s*(?:-|–|to)\s*` + number)
	amountPattern = regexp.MustCompile(number + `(\+)?`)

	belowQualifiers = []string{"under", "less than", "below", "fewer than", "<"}
	aboveQualifiers = []string{"over", "more than", "above", "at least", ">"}
)

// parseAmount reads the first number in text. "12k" and "1,500" are understood, a range
// yields its midpoint and a qualifier such as "under" or a trailing "+" nudges the value
// off a bucket boundary.
func parseAmount(text string) (float64, bool) {
	if m := rangePattern.FindStringSubmatchIndex(text); m != nil {
		amountLoc := amountPattern.FindStringIndex(text)
		if amountLoc != nil && amountLoc[0] == m[0] {
			low, lowOK := parseNumber(text[m[2]:m[3]], m[4] >= 0)
			high, highOK := parseNumber(text[m[6]:m[7]], m[8] >= 0)
			if lowOK && highOK {
				// "3-5k" shares the suffix
				if m[4] < 0 && m[8] >= 0 && low < high/1000 {
					low *= 1000
				}
				return (low + high) / 2, true
			}
		}
	}

	m := amountPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return 0, false
	}
	n, ok := parseNumber(text[m[2]:m[3]], m[4] >= 0)
	if !ok {
		return 0, false
	}

	prefix := strings.TrimSpace(strings.TrimRight(text[:m[0]], "$ "))
	switch {
	case m[6] >= 0 || hasAnySuffix(prefix, aboveQualifiers):
		n += 0.5
	case hasAnySuffix(prefix, belowQualifiers):
		n -= 0.5
	}
	return n, true
}

func parseNumber(s string, thousands bool) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if thousands {
		n *= 1000
	}
	return n, true
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
