package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const (
	testAPIKey = "SECRET-KEY-123"
	testModel  = "gemini-test"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), Config{APIKey: testAPIKey, Model: testModel, BaseURL: baseURL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	return c
}

func TestGenerateTextSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/models/"+testModel+":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != testAPIKey {
			t.Errorf("expected x-goog-api-key %q, got %q", testAPIKey, got)
		}
		if strings.Contains(r.URL.String(), testAPIKey) {
			t.Errorf("api key found in request URL %s", r.URL)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request: %v", err)
			return
		}
		if !strings.Contains(string(body), "make a password") {
			t.Errorf("prompt missing from request %s", body)
		}
		if n := strings.Count(string(body), "BLOCK_NONE"); n != 4 {
			t.Errorf("expected 4 BLOCK_NONE safety settings, got %d", n)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"aB3$"},{"text":"eF7!"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "make a password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "aB3$eF7!" {
		t.Errorf("expected aB3$eF7!, got %q", got)
	}
}

func TestGenerateTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("error should carry the API message, got %v", err)
	}
	if strings.Contains(err.Error(), testAPIKey) {
		t.Errorf("api key leaked into error %v", err)
	}
}

func TestGenerateTextTransportErrorHidesKey(t *testing.T) {
	_, err := newTestClient(t, "http://127.0.0.1:1").GenerateText(context.Background(), "x")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if strings.Contains(err.Error(), testAPIKey) {
		t.Errorf("api key leaked into error %v", err)
	}
}

func TestGenerateTextNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "x")
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestGenerateTextBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("expected blocked prompt error, got %v", err)
	}
}

func TestGenerateTextContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(t, srv.URL).GenerateText(ctx, "x")
	if err == nil {
		t.Fatal("expected error after deadline")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("GenerateText() returned after %v, want prompt return on deadline", elapsed)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerateConfig(t *testing.T) {
	cfg := GenerateConfig()
	if cfg.TopK == nil || *cfg.TopK != 64 || cfg.MaxOutputTokens != 8192 {
		t.Errorf("unexpected generation config %+v", cfg)
	}
	if len(cfg.SafetySettings) != 4 {
		t.Errorf("expected 4 safety settings, got %d", len(cfg.SafetySettings))
	}
}
