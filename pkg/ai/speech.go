package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SpeechClient renders assistant replies into audio through an
// elevenlabs-style text-to-speech API. Each language can map to its own
// voice; unmapped languages use the default voice.
type SpeechClient struct {
	baseURL      string
	apiKey       string
	modelID      string
	voices       map[string]string
	defaultVoice string
	httpClient   *http.Client
}

// NewSpeechClient builds a synthesis client. voices maps language names to
// voice IDs; defaultVoice is required.
func NewSpeechClient(baseURL, apiKey, modelID, defaultVoice string, voices map[string]string) (*SpeechClient, error) {
	if strings.TrimSpace(defaultVoice) == "" {
		return nil, fmt.Errorf("speech default voice required")
	}
	if modelID == "" {
		modelID = "eleven_multilingual_v2"
	}
	return &SpeechClient{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:       strings.TrimSpace(apiKey),
		modelID:      modelID,
		voices:       voices,
		defaultVoice: defaultVoice,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type speechRequestBody struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings map[string]float64 `json:"voice_settings,omitempty"`
}

// Synthesize returns the rendered audio bytes for the given text.
func (c *SpeechClient) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text to synthesize")
	}
	voice := c.voices[language]
	if voice == "" {
		voice = c.defaultVoice
	}

	body, err := json.Marshal(speechRequestBody{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: map[string]float64{
			"stability":        0.75,
			"similarity_boost": 0.7,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, errFromStatus(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio from speech api")
	}
	return audio, nil
}
