package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatClientGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"# Hola"}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL+"/v1/chat/completions", "key", "m1")
	out, err := c.Generate(context.Background(), "user text", GenerateOptions{SystemPrompt: "sys", MaxTokens: 800, Temperature: 0.7})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "# Hola" {
		t.Fatalf("unexpected content %q", out)
	}
	if got.Model != "m1" || got.MaxTokens != 800 || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestChatClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL+"/v1/chat/completions", "key", "m1")
	if _, err := c.Generate(context.Background(), "x", GenerateOptions{}); err == nil {
		t.Fatalf("expected error on 429")
	}
	if c.Probe(context.Background()) {
		t.Fatalf("expected probe to fail")
	}
}

func TestModelsURL(t *testing.T) {
	if got := modelsURL("https://api.example.com/v1/chat/completions"); got != "https://api.example.com/v1/models" {
		t.Fatalf("unexpected models url %q", got)
	}
	if got := modelsURL("http://localhost:11434/v1/"); got != "http://localhost:11434/v1/models" {
		t.Fatalf("unexpected models url %q", got)
	}
}

func TestNewBackendPicksImplementation(t *testing.T) {
	if _, ok := NewBackend(Spec{ID: "groq"}).(*Stub); !ok {
		t.Fatalf("expected stub without endpoint")
	}
	b := NewBackend(Spec{ID: "openai", Endpoint: "http://x/v1/chat/completions"})
	cc, ok := b.(*ChatClient)
	if !ok || cc.model != "gpt-4" {
		t.Fatalf("expected chat client with default model, got %+v", b)
	}
}
