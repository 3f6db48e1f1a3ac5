package app

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"sakanka/pkg/ai"
	"sakanka/pkg/domain"
)

type fakeChat struct {
	reply string
	err   error
	got   ai.ChatRequest
}

func (f *fakeChat) Complete(_ context.Context, req ai.ChatRequest) (string, error) {
	f.got = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestExtractParsesPlainJSON(t *testing.T) {
	chat := &fakeChat{reply: `{"title":"Fresh tomatoes","description":"Ripe tomatoes from Kumasi","price":25.5,"quantity":3,"location":"Kumasi"}`}
	ex := NewExtractor(chat)

	draft, fellBack, err := ex.Extract(context.Background(), "I have fresh tomatoes", domain.LanguageTwi, domain.ActionSell)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if fellBack {
		t.Fatalf("expected parsed draft, got fallback")
	}
	if draft.Title != "Fresh tomatoes" || draft.Price != 25.5 || draft.Quantity != 3 || draft.Location != "Kumasi" {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.Language != domain.LanguageTwi {
		t.Fatalf("language = %q", draft.Language)
	}
	if draft.OriginalText != "I have fresh tomatoes" {
		t.Fatalf("originalText = %q", draft.OriginalText)
	}
}

func TestExtractFencedAndUnfencedParseIdentically(t *testing.T) {
	payload := `{"title":"Yam","description":"Tubers","price":10,"quantity":2,"location":"Tamale"}`
	replies := []string{
		payload,
		"```json\n" + payload + "\n```",
		"```\n" + payload + "\n```",
	}
	var drafts []domain.ProductDraft
	for _, reply := range replies {
		ex := NewExtractor(&fakeChat{reply: reply})
		draft, fellBack, err := ex.Extract(context.Background(), "yam for sale", domain.LanguageEnglish, domain.ActionSell)
		if err != nil {
			t.Fatalf("extract %q: %v", reply, err)
		}
		if fellBack {
			t.Fatalf("unexpected fallback for %q", reply)
		}
		drafts = append(drafts, draft)
	}
	for i := 1; i < len(drafts); i++ {
		if drafts[i] != drafts[0] {
			t.Fatalf("drafts differ: %+v vs %+v", drafts[0], drafts[i])
		}
	}
}

func TestExtractFallsBackOnGarbageReply(t *testing.T) {
	longText := strings.Repeat("ab", 40) // 80 runes
	ex := NewExtractor(&fakeChat{reply: "Sorry, I could not process that."})

	draft, fellBack, err := ex.Extract(context.Background(), longText, domain.LanguageGa, domain.ActionSell)
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if !fellBack {
		t.Fatalf("expected fallback draft")
	}
	if len([]rune(draft.Title)) != 50 {
		t.Fatalf("fallback title length = %d, want 50", len([]rune(draft.Title)))
	}
	if draft.Description != longText {
		t.Fatalf("fallback description must be the full transcript")
	}
	if draft.Price != 0 || draft.Quantity != 1 || draft.Location != "Not specified" {
		t.Fatalf("fallback defaults wrong: %+v", draft)
	}
}

func TestExtractCoercesStringNumbers(t *testing.T) {
	ex := NewExtractor(&fakeChat{reply: `{"title":"Rice","description":"Bags","price":"45.00","quantity":"5","location":"Accra"}`})
	draft, _, err := ex.Extract(context.Background(), "rice", domain.LanguageEnglish, domain.ActionSell)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if draft.Price != 45 || draft.Quantity != 5 {
		t.Fatalf("coercion failed: price=%v quantity=%v", draft.Price, draft.Quantity)
	}
}

func TestExtractClampsInvalidNumbers(t *testing.T) {
	ex := NewExtractor(&fakeChat{reply: `{"title":"Beans","description":"","price":-12,"quantity":0,"location":""}`})
	draft, _, err := ex.Extract(context.Background(), "beans in bulk", domain.LanguageEnglish, domain.ActionSell)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if draft.Price != 0 {
		t.Fatalf("negative price must clamp to 0, got %v", draft.Price)
	}
	if draft.Quantity != 1 {
		t.Fatalf("quantity below 1 must clamp to 1, got %d", draft.Quantity)
	}
	if draft.Description != "beans in bulk" {
		t.Fatalf("empty description must default to transcript, got %q", draft.Description)
	}
	if draft.Location != "Not specified" {
		t.Fatalf("empty location must default, got %q", draft.Location)
	}
}

func TestExtractCapsOversizedQuantities(t *testing.T) {
	for _, reply := range []string{
		`{"title":"Maize","description":"Bulk maize","price":10,"quantity":1e20,"location":"Tamale"}`,
		`{"title":"Maize","description":"Bulk maize","price":10,"quantity":1e308,"location":"Tamale"}`,
	} {
		ex := NewExtractor(&fakeChat{reply: reply})
		draft, _, err := ex.Extract(context.Background(), "maize in bulk", domain.LanguageEnglish, domain.ActionSell)
		if err != nil {
			t.Fatalf("extract: %v", err)
		}
		if draft.Quantity < 1 {
			t.Fatalf("oversized quantity must stay positive, got %d", draft.Quantity)
		}
		if draft.Quantity != math.MaxInt32 {
			t.Fatalf("oversized quantity must cap at %d, got %d", math.MaxInt32, draft.Quantity)
		}
	}
}

func TestExtractRequestShape(t *testing.T) {
	chat := &fakeChat{reply: `{"title":"x","description":"y","price":1,"quantity":1,"location":"z"}`}
	ex := NewExtractor(chat)

	if _, _, err := ex.Extract(context.Background(), "two goats", domain.LanguageHausa, domain.ActionBuy); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if chat.got.Temperature != 0.3 {
		t.Fatalf("temperature = %v, want 0.3", chat.got.Temperature)
	}
	if chat.got.MaxTokens != 500 {
		t.Fatalf("maxTokens = %d, want 500", chat.got.MaxTokens)
	}
	if len(chat.got.Messages) != 2 || chat.got.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", chat.got.Messages)
	}
	if !strings.Contains(chat.got.Messages[1].Content, "buyer message") {
		t.Fatalf("buy action must produce a buyer prompt, got %q", chat.got.Messages[1].Content)
	}
}

func TestExtractSurfacesUpstreamErrors(t *testing.T) {
	ex := NewExtractor(&fakeChat{err: ai.ErrRateLimited})
	if _, _, err := ex.Extract(context.Background(), "tomatoes", domain.LanguageTwi, domain.ActionSell); !errors.Is(err, ai.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	ex = NewExtractor(&fakeChat{reply: "ignored"})
	if _, _, err := ex.Extract(context.Background(), "   ", domain.LanguageTwi, domain.ActionSell); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}
