package app

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"sakanka/pkg/ai"
	"sakanka/pkg/domain"
)

const extractionSystemPrompt = `You are a helpful assistant for a marketplace in Ghana.
Extract product information from voice transcriptions in Twi, Ga, Hausa, or English.

Extract and structure the following information:
- Product name/title
- Description
- Price (convert to GHS if mentioned)
- Quantity
- Location

Return ONLY valid JSON with this exact structure:
{
  "title": "product name",
  "description": "detailed description",
  "price": 0.00,
  "quantity": 1,
  "location": "location name"
}

If information is missing, use reasonable defaults:
- quantity: 1
- price: 0 (if not mentioned)
- location: "Not specified"`

var (
	fencedJSON = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")
	fencedAny  = regexp.MustCompile("```\\n([\\s\\S]*?)\\n```")
)

// Extractor turns a raw transcription into a structured product draft.
type Extractor struct {
	chat ai.ChatCompleter
}

func NewExtractor(chat ai.ChatCompleter) *Extractor {
	return &Extractor{chat: chat}
}

// Extract asks the model for the five listing fields. An unparsable model
// reply never fails the call: the transcript itself becomes the draft. Only
// upstream transport errors and non-2xx statuses are returned to the caller.
// The second return reports whether the raw-transcript fallback was used.
func (e *Extractor) Extract(ctx context.Context, text string, language domain.Language, action domain.Action) (domain.ProductDraft, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ProductDraft{}, false, ErrEmptyText
	}

	side := "seller"
	if action == domain.ActionBuy {
		side = "buyer"
	}
	reply, err := e.chat.Complete(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: `Extract product information from this ` + side + ` message: "` + text + `"`},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return domain.ProductDraft{}, false, err
	}

	draft, fellBack := parseDraft(reply, text)
	draft.Language = language
	draft.OriginalText = text
	return draft, fellBack, nil
}

// rawDraft tolerates the model returning price and quantity as numbers or
// strings.
type rawDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Quantity    json.RawMessage `json:"quantity"`
	Location    string          `json:"location"`
}

func parseDraft(reply, text string) (domain.ProductDraft, bool) {
	payload := stripFences(reply)
	var raw rawDraft
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return fallbackDraft(text), true
	}
	draft := domain.ProductDraft{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Price:       coerceFloat(raw.Price),
		Quantity:    coerceInt(raw.Quantity),
		Location:    strings.TrimSpace(raw.Location),
	}
	if draft.Title == "" {
		draft.Title = "Product"
	}
	if draft.Description == "" {
		draft.Description = text
	}
	if draft.Location == "" {
		draft.Location = "Not specified"
	}
	return draft, false
}

// fallbackDraft builds a usable draft straight from the transcript.
func fallbackDraft(text string) domain.ProductDraft {
	title := text
	if runes := []rune(text); len(runes) > 50 {
		title = string(runes[:50])
	}
	return domain.ProductDraft{
		Title:       title,
		Description: text,
		Price:       0,
		Quantity:    1,
		Location:    "Not specified",
	}
}

// stripFences unwraps a ```json or bare ``` code block; replies without
// fences pass through unchanged.
func stripFences(reply string) string {
	if m := fencedJSON.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fencedAny.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(reply)
}

func coerceFloat(raw json.RawMessage) float64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func coerceInt(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 1
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 1 {
		return 1
	}
	// int(f) is implementation-defined once f exceeds the int range.
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
