// Package assistant drives the interactive voice conversation on the client:
// capture, transcription, chat and playback, plus opportunistic listing
// extraction when the user sounds like a seller.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"sakanka/pkg/domain"
)

// State is the session's position in the capture/response cycle.
type State string

const (
	StateIdle         State = "idle"
	StateListening    State = "listening"
	StateTranscribing State = "transcribing"
	StateResponding   State = "responding"
	StateSpeaking     State = "speaking"
)

var (
	ErrNotIdle      = errors.New("assistant is busy, wait for the current turn to finish")
	ErrNotListening = errors.New("no capture in progress")
)

// Recorder owns the microphone. Start acquires the input device, Stop
// finalizes one audio buffer and releases it, Close is idempotent.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() ([]byte, error)
	Close() error
}

// Transcriber converts a captured buffer into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// Responder produces the assistant's next reply from the full history.
type Responder interface {
	Reply(ctx context.Context, history []domain.Turn, language domain.Language) (string, error)
}

// Synthesizer renders reply text as audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Player is the playback sink for synthesized audio.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// Extractor builds a product draft from a transcript.
type Extractor interface {
	Extract(ctx context.Context, text string, language domain.Language, action domain.Action) (domain.ProductDraft, bool, error)
}

// IntentDetector decides whether the conversation shows selling intent.
type IntentDetector interface {
	SellingIntent(latest string, history []domain.Turn) bool
}

// Config wires the session's collaborators.
type Config struct {
	Recorder    Recorder
	Transcriber Transcriber
	Responder   Responder
	Synthesizer Synthesizer
	Player      Player
	Extractor   Extractor
	Intent      IntentDetector
	// OnDraft receives extracted drafts for the confirmation flow.
	OnDraft  func(domain.ProductDraft)
	Language domain.Language
	Logger   *slog.Logger
}

// Session is one user's voice conversation. All methods are safe for
// concurrent use; a turn in flight rejects new capture until it completes.
type Session struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	history []domain.Turn

	closeOnce sync.Once
}

func NewSession(cfg Config) *Session {
	if cfg.Language == "" {
		cfg.Language = domain.LanguageEnglish
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{cfg: cfg, logger: logger, state: StateIdle}
}

// State reports the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the conversation so far, in recording order.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Start greets the user aloud. The greeting is not part of the chat history.
func (s *Session) Start(ctx context.Context) error {
	persona := domain.PersonaFor(s.cfg.Language)
	greeting := fmt.Sprintf("Hello! I am %s, your Sakanka marketplace assistant. How can I help you today?", persona.Name)
	audio, err := s.cfg.Synthesizer.Synthesize(ctx, greeting, string(s.cfg.Language))
	if err != nil {
		return fmt.Errorf("synthesize greeting: %w", err)
	}
	if err := s.cfg.Player.Play(ctx, audio); err != nil {
		return fmt.Errorf("play greeting: %w", err)
	}
	return nil
}

// StartListening opens the microphone. Legal only from idle.
func (s *Session) StartListening(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrNotIdle
	}
	s.state = StateListening
	s.mu.Unlock()

	if err := s.cfg.Recorder.Start(ctx); err != nil {
		s.setState(StateIdle)
		return fmt.Errorf("start capture: %w", err)
	}
	return nil
}

// StopListening finalizes the capture and runs the full turn: transcribe,
// chat, synthesize, play. The session always returns to idle, whatever
// fails along the way; nothing in here retries.
func (s *Session) StopListening(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return "", ErrNotListening
	}
	s.state = StateTranscribing
	s.mu.Unlock()
	defer s.setState(StateIdle)

	audio, err := s.cfg.Recorder.Stop()
	if err != nil {
		return "", fmt.Errorf("finalize capture: %w", err)
	}
	text, err := s.cfg.Transcriber.Transcribe(ctx, audio, string(s.cfg.Language))
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	s.appendTurn(domain.Turn{Role: domain.TurnRoleUser, Content: text})

	s.setState(StateResponding)
	reply, err := s.cfg.Responder.Reply(ctx, s.History(), s.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("assistant reply: %w", err)
	}
	s.appendTurn(domain.Turn{Role: domain.TurnRoleAssistant, Content: reply})

	s.maybeExtract(ctx, text)

	s.setState(StateSpeaking)
	speech, err := s.cfg.Synthesizer.Synthesize(ctx, reply, string(s.cfg.Language))
	if err != nil {
		return reply, fmt.Errorf("synthesize reply: %w", err)
	}
	if err := s.cfg.Player.Play(ctx, speech); err != nil {
		return reply, fmt.Errorf("play reply: %w", err)
	}
	return reply, nil
}

// maybeExtract runs the extractor when the intent detector fires. Extraction
// problems never interrupt the conversation.
func (s *Session) maybeExtract(ctx context.Context, latest string) {
	if s.cfg.Extractor == nil || s.cfg.Intent == nil || s.cfg.OnDraft == nil {
		return
	}
	if !s.cfg.Intent.SellingIntent(latest, s.History()) {
		return
	}
	draft, fellBack, err := s.cfg.Extractor.Extract(ctx, latest, s.cfg.Language, domain.ActionSell)
	if err != nil {
		s.logger.Warn("draft extraction failed", "error", err)
		return
	}
	if fellBack {
		s.logger.Info("draft extraction degraded to raw transcript")
	}
	s.cfg.OnDraft(draft)
}

// Close releases the capture device. Safe to call from every exit path.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.cfg.Recorder.Close()
	})
	return err
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) appendTurn(turn domain.Turn) {
	s.mu.Lock()
	s.history = append(s.history, turn)
	s.mu.Unlock()
}
