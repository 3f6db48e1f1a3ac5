package assistant

import (
	"strings"

	"sakanka/pkg/domain"
)

// KeywordIntentDetector flags selling intent when a selling keyword shows up
// in the latest utterance or anywhere earlier in the user's side of the
// conversation. It is a deliberately simple heuristic; swap in a classifier
// behind the IntentDetector interface if it proves too eager.
type KeywordIntentDetector struct {
	keywords []string
}

func NewKeywordIntentDetector() *KeywordIntentDetector {
	return &KeywordIntentDetector{
		// "tɔn" is Twi, "sayar" is Hausa; both mean to sell.
		keywords: []string{
			"sell", "selling", "for sale", "i have", "i want to sell",
			"tɔn", "sayar",
		},
	}
}

func (d *KeywordIntentDetector) SellingIntent(latest string, history []domain.Turn) bool {
	if d.matches(latest) {
		return true
	}
	for _, turn := range history {
		if turn.Role == domain.TurnRoleUser && d.matches(turn.Content) {
			return true
		}
	}
	return false
}

func (d *KeywordIntentDetector) matches(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
