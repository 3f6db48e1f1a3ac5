package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSpeechClientSynthesize(t *testing.T) {
	var gotPath, gotKey string
	var gotBody speechRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client, err := NewSpeechClient(srv.URL, "key", "", "voice-default", map[string]string{"twi": "voice-akua"})
	if err != nil {
		t.Fatalf("new speech client: %v", err)
	}

	audio, err := client.Synthesize(context.Background(), "akwaaba", "twi")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("unexpected audio %q", audio)
	}
	if gotPath != "/text-to-speech/voice-akua" {
		t.Fatalf("twi should use its mapped voice, got path %s", gotPath)
	}
	if gotKey != "key" {
		t.Fatalf("api key header missing")
	}
	if gotBody.Text != "akwaaba" || gotBody.ModelID != "eleven_multilingual_v2" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}

	// Unmapped language falls back to the default voice.
	if _, err := client.Synthesize(context.Background(), "sannu", "hausa"); err != nil {
		t.Fatalf("synthesize fallback: %v", err)
	}
	if gotPath != "/text-to-speech/voice-default" {
		t.Fatalf("unmapped language should use default voice, got %s", gotPath)
	}
}

func TestSpeechClientRequiresDefaultVoice(t *testing.T) {
	if _, err := NewSpeechClient("http://x", "key", "", "", nil); err == nil {
		t.Fatalf("expected error for missing default voice")
	}
}

func TestSpeechClientEmptyText(t *testing.T) {
	client, err := NewSpeechClient("http://localhost:0", "key", "", "v", nil)
	if err != nil {
		t.Fatalf("new speech client: %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "  ", "twi"); err == nil {
		t.Fatalf("expected error for empty text")
	}
}
