package app

import (
	"context"
	"errors"
	"testing"

	"sakanka/pkg/domain"
)

func TestAssistantReplyPrependsPersona(t *testing.T) {
	chat := &fakeChat{reply: "Akwaaba! What would you like to sell?"}
	assistant := NewAssistantChat(chat)

	history := []domain.Turn{
		{Role: domain.TurnRoleUser, Content: "Hello"},
		{Role: domain.TurnRoleAssistant, Content: "Hi there"},
		{Role: domain.TurnRoleUser, Content: "I want to sell tomatoes"},
	}
	reply, err := assistant.Reply(context.Background(), history, domain.LanguageTwi)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply != "Akwaaba! What would you like to sell?" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	msgs := chat.got.Messages
	if len(msgs) != 4 {
		t.Fatalf("expected persona + 3 turns, got %d messages", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != domain.PersonaFor(domain.LanguageTwi).SystemPrompt {
		t.Fatalf("first message must be the Twi persona prompt, got %+v", msgs[0])
	}
	for i, turn := range history {
		if msgs[i+1].Role != turn.Role || msgs[i+1].Content != turn.Content {
			t.Fatalf("turn %d reordered: %+v", i, msgs[i+1])
		}
	}
}

func TestAssistantReplyUnknownLanguageUsesEnglishPersona(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	assistant := NewAssistantChat(chat)

	if _, err := assistant.Reply(context.Background(), []domain.Turn{{Role: domain.TurnRoleUser, Content: "hi"}}, domain.Language("swahili")); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if chat.got.Messages[0].Content != domain.PersonaFor(domain.LanguageEnglish).SystemPrompt {
		t.Fatalf("unknown language must use the English persona")
	}
}

func TestAssistantReplyRejectsEmptyHistory(t *testing.T) {
	assistant := NewAssistantChat(&fakeChat{reply: "ok"})
	if _, err := assistant.Reply(context.Background(), nil, domain.LanguageEnglish); !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
}
