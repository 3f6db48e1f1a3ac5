package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newChatServer(t *testing.T, status int, reply string, capture *chatRequestBody) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "nope"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func TestChatClientComplete(t *testing.T) {
	var got chatRequestBody
	srv := newChatServer(t, http.StatusOK, "hello there", &got)
	defer srv.Close()

	client := NewChatClient(srv.URL+"/v1", "key", "gemini-2.5-flash")
	reply, err := client.Complete(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hi"},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got.Model != "gemini-2.5-flash" {
		t.Fatalf("model not forwarded, got %q", got.Model)
	}
	if got.Temperature != 0.3 || got.MaxTokens != 500 {
		t.Fatalf("sampling controls not forwarded: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("messages reordered or dropped: %+v", got.Messages)
	}
}

func TestChatClientStatusErrors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusPaymentRequired, ErrQuotaExhausted},
	}
	for _, tc := range cases {
		srv := newChatServer(t, tc.status, "", nil)
		client := NewChatClient(srv.URL+"/v1", "key", "m")
		_, err := client.Complete(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}

	srv := newChatServer(t, http.StatusInternalServerError, "", nil)
	defer srv.Close()
	client := NewChatClient(srv.URL+"/v1", "key", "m")
	_, err := client.Complete(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected generic status error, got %v", err)
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("500 must not classify as rate limit or quota: %v", err)
	}
}

func TestChatClientRejectsEmptyRequest(t *testing.T) {
	client := NewChatClient("http://localhost:0/v1", "key", "m")
	if _, err := client.Complete(context.Background(), ChatRequest{}); err == nil {
		t.Fatalf("expected error for empty message list")
	}
}
