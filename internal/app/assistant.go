package app

import (
	"context"

	"sakanka/pkg/ai"
	"sakanka/pkg/domain"
)

// AssistantChat answers one conversational turn. The persona system prompt
// for the requested language is prepended and the caller's history follows
// in exactly the order given.
type AssistantChat struct {
	chat ai.ChatCompleter
}

func NewAssistantChat(chat ai.ChatCompleter) *AssistantChat {
	return &AssistantChat{chat: chat}
}

func (a *AssistantChat) Reply(ctx context.Context, history []domain.Turn, language domain.Language) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}
	persona := domain.PersonaFor(language)
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: "system", Content: persona.SystemPrompt})
	for _, turn := range history {
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Content})
	}
	return a.chat.Complete(ctx, ai.ChatRequest{Messages: messages})
}
