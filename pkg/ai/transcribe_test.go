package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTranscriptionClientSendsMultipartForm(t *testing.T) {
	var gotModel, gotLanguage, gotPrompt string
	var gotAudio []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		gotPrompt = r.FormValue("prompt")
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			buf := make([]byte, 16)
			n, _ := file.Read(buf)
			gotAudio = buf[:n]
			file.Close()
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "medaase"})
	}))
	defer srv.Close()

	client := NewTranscriptionClient(srv.URL+"/v1", "key", "")
	text, err := client.Transcribe(context.Background(), []byte("opus-bytes"), "hausa")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "medaase" {
		t.Fatalf("unexpected text %q", text)
	}
	if gotModel != "whisper-1" {
		t.Fatalf("default model not applied, got %q", gotModel)
	}
	if gotLanguage != "ha" {
		t.Fatalf("hausa should hint 'ha', got %q", gotLanguage)
	}
	if !strings.Contains(gotPrompt, "marketplace") || !strings.Contains(gotPrompt, "hausa") {
		t.Fatalf("domain prompt missing: %q", gotPrompt)
	}
	if string(gotAudio) != "opus-bytes" {
		t.Fatalf("audio not forwarded, got %q", gotAudio)
	}
}

func TestTranscriptionClientLanguageHintDefaultsToEnglish(t *testing.T) {
	for _, lang := range []string{"twi", "ga", "english", "unknown"} {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseMultipartForm(1 << 20)
			got = r.FormValue("language")
			_ = json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
		}))
		client := NewTranscriptionClient(srv.URL, "key", "whisper-1")
		if _, err := client.Transcribe(context.Background(), []byte("a"), lang); err != nil {
			t.Fatalf("%s: transcribe: %v", lang, err)
		}
		srv.Close()
		if got != "en" {
			t.Fatalf("%s: expected hint 'en', got %q", lang, got)
		}
	}
}

func TestTranscriptionClientErrors(t *testing.T) {
	t.Run("empty audio", func(t *testing.T) {
		client := NewTranscriptionClient("http://localhost:0", "key", "")
		if _, err := client.Transcribe(context.Background(), nil, "twi"); err == nil {
			t.Fatalf("expected error for empty audio")
		}
	})

	t.Run("empty transcription text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"text": "  "})
		}))
		defer srv.Close()
		client := NewTranscriptionClient(srv.URL, "key", "")
		if _, err := client.Transcribe(context.Background(), []byte("a"), "twi"); err == nil {
			t.Fatalf("expected error for empty payload")
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()
		client := NewTranscriptionClient(srv.URL, "key", "")
		_, err := client.Transcribe(context.Background(), []byte("a"), "twi")
		if !errors.Is(err, ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
	})
}
