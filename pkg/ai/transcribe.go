package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// whisperLanguageHints maps marketplace languages onto the ISO hints the
// transcription API understands. Twi and Ga have no whisper language code, so
// they ride on auto-detection with an English hint.
var whisperLanguageHints = map[string]string{
	"twi":     "en",
	"ga":      "en",
	"hausa":   "ha",
	"english": "en",
}

// TranscriptionClient sends recorded audio to a whisper-style transcription
// endpoint. One request per recording attempt, no retry.
type TranscriptionClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewTranscriptionClient builds a transcription client.
func NewTranscriptionClient(baseURL, apiKey, model string) *TranscriptionClient {
	if model == "" {
		model = "whisper-1"
	}
	return &TranscriptionClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio buffer and returns the recognized text.
// The prompt discloses the marketplace domain to bias recognition; the
// language hint is advisory only.
func (c *TranscriptionClient) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.webm")
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err = part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if err = writer.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}
	hint, ok := whisperLanguageHints[language]
	if !ok {
		hint = "en"
	}
	if err = writer.WriteField("language", hint); err != nil {
		return "", fmt.Errorf("writing language field: %w", err)
	}
	prompt := fmt.Sprintf("This is a marketplace listing in %s. The speaker is describing a product they want to sell or buy.", language)
	if err = writer.WriteField("prompt", prompt); err != nil {
		return "", fmt.Errorf("writing prompt field: %w", err)
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("closing writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", errFromStatus(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result transcriptionResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("empty transcription result")
	}
	return result.Text, nil
}
