package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("TEST_GEN_KEY", "secret")
	c, err := NewClient(ClientConfig{
		BaseURL:     srv.URL,
		APIKeyEnv:   "TEST_GEN_KEY",
		Model:       "test-model",
		Temperature: 0.3,
		MaxTokens:   4096,
		MaxRetries:  maxRetries,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestClient_Generate(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}, 1)

	text, err := c.Generate(context.Background(), "hi", 0)
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello" {
		t.Errorf("got %q", text)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestClient_GenerateRetries(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}, 3)

	text, err := c.Generate(context.Background(), "hi", 0)
	if err != nil {
		t.Fatal(err)
	}
	if text != "ok" {
		t.Errorf("got %q", text)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestClient_GenerateExhaustsRetries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 2)

	_, err := c.Generate(context.Background(), "hi", 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("TEST_GEN_KEY", "")
	if _, err := NewClient(ClientConfig{APIKeyEnv: "TEST_GEN_KEY"}, nil); err == nil {
		t.Error("expected error for missing API key")
	}
}
