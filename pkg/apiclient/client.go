package apiclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"sakanka/pkg/domain"
)

// Client calls the Sakanka API over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError represents an API error response.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs an API client. Voice endpoints can take tens of
// seconds upstream, hence the generous timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetToken stores the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Transcribe sends WAV audio for speech recognition.
func (c *Client) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	payload := map[string]string{
		"audio":    base64.StdEncoding.EncodeToString(audio),
		"language": language,
	}
	var resp struct {
		Text string `json:"text"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/voice/transcribe", payload, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Reply sends the full conversation history and returns the assistant's
// next message.
func (c *Client) Reply(ctx context.Context, history []domain.Turn, language domain.Language) (string, error) {
	payload := map[string]any{
		"messages": history,
		"language": string(language),
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/voice/assistant", payload, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Extract asks the server to pull structured product fields from text.
// The server falls back to a degraded draft rather than failing on
// unparseable model output, so fellBack is always false here.
func (c *Client) Extract(ctx context.Context, text string, language domain.Language, action domain.Action) (domain.ProductDraft, bool, error) {
	payload := map[string]string{
		"text":     text,
		"language": string(language),
		"action":   string(action),
	}
	var draft domain.ProductDraft
	if err := c.doJSON(ctx, http.MethodPost, "/api/voice/extract", payload, &draft); err != nil {
		return domain.ProductDraft{}, false, err
	}
	return draft, false, nil
}

// Synthesize converts text to speech and returns the audio bytes.
func (c *Client) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	payload := map[string]string{
		"text":     text,
		"language": language,
	}
	var resp struct {
		AudioContent string `json:"audioContent"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/voice/speech", payload, &resp); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(resp.AudioContent)
}

// CreateProduct publishes a confirmed draft as a live listing.
func (c *Client) CreateProduct(ctx context.Context, draft domain.ProductDraft, phoneNumber string) (domain.Product, error) {
	payload := map[string]any{
		"title":        draft.Title,
		"description":  draft.Description,
		"price":        draft.Price,
		"quantity":     draft.Quantity,
		"location":     draft.Location,
		"language":     string(draft.Language),
		"phoneNumber":  phoneNumber,
		"originalText": draft.OriginalText,
	}
	var resp struct {
		Product domain.Product `json:"product"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/products", payload, &resp); err != nil {
		return domain.Product{}, err
	}
	return resp.Product, nil
}

// Login authenticates with phone and password, keeping the session token
// for later calls.
func (c *Client) Login(ctx context.Context, phoneNumber, password string) (domain.User, error) {
	payload := map[string]string{
		"phoneNumber": phoneNumber,
		"password":    password,
	}
	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", payload, &resp); err != nil {
		return domain.User{}, err
	}
	c.token = resp.Token
	return resp.User, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Code: strings.TrimSpace(errResp.Code)}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
