package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestCorrectNotInitialized(t *testing.T) {
	config = nil
	if _, err := Correct("some text", "{text}"); err == nil {
		t.Error("Expected error when not initialized")
	}
	if err := Ping(); err == nil {
		t.Error("Expected Ping error when not initialized")
	}
}

func TestCorrectValidation(t *testing.T) {
	Init(&Config{Host: "", Model: "mistral"})
	if _, err := Correct("text", "{text}"); err == nil {
		t.Error("Expected error with missing host")
	}

	Init(&Config{Host: "http://localhost:11434", Model: ""})
	if _, err := Correct("text", "{text}"); err == nil {
		t.Error("Expected error with missing model")
	}

	Init(&Config{Host: "http://localhost:11434", Model: "mistral"})
	if _, err := Correct("   ", "{text}"); err == nil {
		t.Error("Expected error with empty text")
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Fix: {text} end", "hello")
	if got != "Fix: hello end" {
		t.Errorf("BuildPrompt = %q", got)
	}

	// Template without placeholder passes through unchanged.
	if BuildPrompt("no placeholder", "hello") != "no placeholder" {
		t.Error("Expected template without placeholder to pass through")
	}
}

func TestCorrectSuccess(t *testing.T) {
	var gotReq GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(GenerateResponse{Response: "  corrected text \n"})
	}))
	defer server.Close()

	Init(&Config{Host: server.URL, Model: "mistral", MaxRetries: 1})
	corrected, err := Correct("raw text", "Fix: {text}")
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if corrected != "corrected text" {
		t.Errorf("Expected trimmed corrected text, got %q", corrected)
	}
	if gotReq.Model != "mistral" {
		t.Errorf("Expected model in request, got %q", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("Expected stream=false")
	}
	if !strings.Contains(gotReq.Prompt, "raw text") {
		t.Errorf("Expected prompt to embed the text, got %q", gotReq.Prompt)
	}
}

func TestCorrectRetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(GenerateResponse{Error: "model is loading"})
			return
		}
		json.NewEncoder(w).Encode(GenerateResponse{Response: "fixed"})
	}))
	defer server.Close()

	Init(&Config{Host: server.URL, Model: "mistral", MaxRetries: 3})
	corrected, err := Correct("text", "{text}")
	if err != nil {
		t.Fatalf("Correct failed after retry: %v", err)
	}
	if corrected != "fixed" {
		t.Errorf("Expected 'fixed', got %q", corrected)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestCorrectExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GenerateResponse{Error: "out of memory"})
	}))
	defer server.Close()

	Init(&Config{Host: server.URL, Model: "mistral", MaxRetries: 2})
	if _, err := Correct("text", "{text}"); err == nil {
		t.Error("Expected error when all attempts fail")
	}
}

func TestPingAndModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(TagsResponse{Models: []ModelInfo{{Name: "mistral:latest"}}})
	}))
	defer server.Close()

	Init(&Config{Host: server.URL, Model: "mistral"})
	if err := Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	models, err := Models()
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if len(models) != 1 || models[0].Name != "mistral:latest" {
		t.Errorf("Unexpected models: %+v", models)
	}
}

func TestPingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // deliberately closed

	Init(&Config{Host: server.URL, Model: "mistral"})
	if err := Ping(); err == nil {
		t.Error("Expected Ping error for closed server")
	}
}
