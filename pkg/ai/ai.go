// Package ai holds thin clients for the hosted speech and language-model
// services. Every call is a single attempt: failures surface to the caller
// and the user re-initiates, nothing here retries on its own.
package ai

import "context"

// Transcriber converts an encoded audio buffer into plain text.
// The language hint is advisory; the upstream service auto-detects.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// ChatCompleter answers a chat-completion request with a single reply.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// SpeechSynthesizer renders text into playable audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Message is one chat turn as the completion API sees it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries an ordered message list plus sampling controls.
// Messages are sent exactly in the order given, never reordered.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}
