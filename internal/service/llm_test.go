package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLLMService_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "the completion"}},
			},
		})
	}))
	defer srv.Close()

	svc := NewLLMService(&LLMConfig{Model: "test-model", APIKey: "test-key", BaseURL: srv.URL})

	content, err := svc.Complete(context.Background(), "write about go", 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "the completion" {
		t.Errorf("expected completion text, got %q", content)
	}

	if got.Model != "test-model" {
		t.Errorf("expected model passed through, got %q", got.Model)
	}
	if got.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", got.Temperature)
	}
	if got.MaxTokens != 800 {
		t.Errorf("expected max tokens 800, got %d", got.MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "write about go" {
		t.Errorf("expected a single user message with the prompt, got %+v", got.Messages)
	}
}

func TestLLMService_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	defer srv.Close()

	svc := NewLLMService(&LLMConfig{Model: "test-model", APIKey: "k", BaseURL: srv.URL})

	_, err := svc.Complete(context.Background(), "p", 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected upstream message in error, got %v", err)
	}
}

func TestLLMService_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	svc := NewLLMService(&LLMConfig{Model: "m", APIKey: "k", BaseURL: srv.URL})

	_, err := svc.Complete(context.Background(), "p", 10)
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
