package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"sakanka/internal/app"
	"sakanka/internal/util"
	"sakanka/pkg/ai"
	"sakanka/pkg/domain"
)

type transcribeRequest struct {
	Audio    string `json:"audio"`
	Language string `json:"language"`
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.voiceLimiter != nil && !s.voiceLimiter.Allow(util.ClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
		return
	}
	var req transcribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Audio) == "" {
		writeError(w, http.StatusBadRequest, "audio is required")
		return
	}
	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio must be base64-encoded")
		return
	}
	if int64(len(audio)) > s.maxAudioBytes {
		writeError(w, http.StatusBadRequest, "audio too large")
		return
	}
	language := domain.ParseLanguage(req.Language)

	started := time.Now()
	text, err := s.transcriber.Transcribe(r.Context(), audio, string(language))
	if s.metrics != nil {
		s.metrics.RecordTranscription(string(language), time.Since(started).Seconds(), err != nil)
	}
	if err != nil {
		s.writeAIError(w, err,
			"Rate limit exceeded. Please try again in a moment.",
			"AI credits exhausted. Please contact support.",
			"transcription failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"text":     text,
		"language": string(language),
	})
}

type extractRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Action   string `json:"action"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req extractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	language := domain.ParseLanguage(req.Language)
	action := domain.ParseAction(req.Action)

	draft, fellBack, err := s.extractor.Extract(r.Context(), req.Text, language, action)
	if s.metrics != nil && err == nil {
		s.metrics.RecordExtraction(fellBack)
	}
	if err != nil {
		if errors.Is(err, app.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, "No text provided")
			return
		}
		s.writeAIError(w, err,
			"Rate limit exceeded. Please try again in a moment.",
			"AI credits exhausted. Please contact support.",
			"extraction failed")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

type assistantRequest struct {
	Messages []domain.Turn `json:"messages"`
	Language string        `json:"language"`
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req assistantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	language := domain.ParseLanguage(req.Language)

	reply, err := s.assistant.Reply(r.Context(), req.Messages, language)
	if err != nil {
		if errors.Is(err, app.ErrEmptyHistory) {
			writeError(w, http.StatusBadRequest, "messages are required")
			return
		}
		s.writeAIError(w, err,
			"Rate limit exceeded. Please try again later.",
			"AI service temporarily unavailable.",
			"AI service error")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordAssistantTurn(string(language))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}

type speechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.synthesizer == nil {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis not configured")
		return
	}
	var req speechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	language := domain.ParseLanguage(req.Language)

	audio, err := s.synthesizer.Synthesize(r.Context(), req.Text, string(language))
	if s.metrics != nil {
		s.metrics.RecordSpeech(err != nil)
	}
	if err != nil {
		s.writeAIError(w, err,
			"Rate limit exceeded. Please try again in a moment.",
			"AI credits exhausted. Please contact support.",
			"speech synthesis failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"audioContent": base64.StdEncoding.EncodeToString(audio),
	})
}

// writeAIError maps upstream AI failures onto distinct client-visible
// statuses: 429 and 402 keep their meaning, everything else is a 500.
func (s *Server) writeAIError(w http.ResponseWriter, err error, rateMsg, quotaMsg, genericMsg string) {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		if s.metrics != nil {
			s.metrics.UpstreamRateLimits.Inc()
		}
		writeError(w, http.StatusTooManyRequests, rateMsg)
	case errors.Is(err, ai.ErrQuotaExhausted):
		if s.metrics != nil {
			s.metrics.UpstreamQuotaExhausted.Inc()
		}
		writeError(w, http.StatusPaymentRequired, quotaMsg)
	default:
		writeError(w, http.StatusInternalServerError, genericMsg)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 16<<20)).Decode(dst)
}
