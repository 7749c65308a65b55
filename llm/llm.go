package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"
	"time"
)

type Config struct {
	Host       string // e.g. http://localhost:11434
	Model      string
	TimeoutSec int
	MaxRetries int
}

var config *Config

func Init(cfg *Config) {
	config = cfg
}

// Ollama API structures
type GenerateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
}

type GenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type TagsResponse struct {
	Models []ModelInfo `json:"models"`
}

type ModelInfo struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
}

const (
	defaultTimeout = 120 * time.Second
	initialDelay   = 1 * time.Second
	// temperature stays low for deterministic corrections
	correctionTemperature = 0.3
)

// BuildPrompt substitutes the raw text into a correction template.
// Templates use a {text} placeholder.
func BuildPrompt(template, text string) string {
	return strings.ReplaceAll(template, "{text}", text)
}

// Correct sends the text to the Ollama server for grammar correction
// using the given prompt template.
func Correct(text, template string) (string, error) {
	if config == nil {
		return "", fmt.Errorf("LLM client not initialized")
	}
	if config.Host == "" {
		return "", fmt.Errorf("Ollama host is required")
	}
	if config.Model == "" {
		return "", fmt.Errorf("model is required")
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text")
	}

	request := GenerateRequest{
		Model:       config.Model,
		Prompt:      BuildPrompt(template, text),
		Stream:      false,
		Temperature: correctionTemperature,
	}

	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	// Retry with backoff; connection refusal is terminal since the server
	// will not appear between attempts.
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(initialDelay) * (1.5 * float64(attempt)))
			time.Sleep(delay)
		}

		response, err := makeGenerateRequest(request)
		if err != nil {
			if isConnectionRefused(err) {
				return "", fmt.Errorf("cannot reach Ollama server at %s: %v (is 'ollama serve' running?)", config.Host, err)
			}
			lastErr = err
			continue
		}

		corrected := strings.TrimSpace(response.Response)
		if corrected == "" {
			lastErr = fmt.Errorf("empty response from model")
			continue
		}
		return corrected, nil
	}

	return "", fmt.Errorf("failed after %d attempts: %v", maxRetries, lastErr)
}

func makeGenerateRequest(request GenerateRequest) (*GenerateResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	url := config.Host + "/api/generate"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var response GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	if response.Error != "" {
		return nil, fmt.Errorf("server error: %s", response.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return &response, nil
}

// Ping verifies the Ollama server is reachable.
func Ping() error {
	if config == nil {
		return fmt.Errorf("LLM client not initialized")
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(config.Host + "/api/tags")
	if err != nil {
		return fmt.Errorf("cannot reach Ollama server at %s: %v (is 'ollama serve' running?)", config.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama server returned status %d", resp.StatusCode)
	}
	return nil
}

// Models lists the models available on the Ollama server.
func Models() ([]ModelInfo, error) {
	if config == nil {
		return nil, fmt.Errorf("LLM client not initialized")
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(config.Host + "/api/tags")
	if err != nil {
		return nil, fmt.Errorf("cannot reach Ollama server at %s: %v", config.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama server returned status %d", resp.StatusCode)
	}

	var tags TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return tags.Models, nil
}

// Model returns the configured model name, for recording in results.
func Model() string {
	if config == nil {
		return ""
	}
	return config.Model
}

func httpClient() *http.Client {
	timeout := defaultTimeout
	if config.TimeoutSec > 0 {
		timeout = time.Duration(config.TimeoutSec) * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func isConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
