package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"OLLAMA_HOST", "OLLAMA_MODEL", "OCR_LANGUAGES", "OCR_GPU",
		"CORRECTION_PROMPT", "CORRECTION_PROMPT_FILE", "SAVE_RAW_TEXT",
		"SAVE_CORRECTED_TEXT", "SAVE_JSON_RESULT", "WORKERS",
	} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.OllamaHost != DefaultOllamaHost {
		t.Errorf("Expected OllamaHost %q, got %q", DefaultOllamaHost, cfg.OllamaHost)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Expected Model %q, got %q", DefaultModel, cfg.Model)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "kor" || cfg.Languages[1] != "eng" {
		t.Errorf("Expected default languages [kor eng], got %v", cfg.Languages)
	}
	if cfg.UseGPU {
		t.Error("Expected UseGPU to default to false")
	}
	if !cfg.SaveRawText || !cfg.SaveCorrectedText || !cfg.SaveJSONResult {
		t.Error("Expected all save toggles to default to true")
	}
	if cfg.PromptTemplate != DefaultPromptTemplate {
		t.Error("Expected default prompt template")
	}
	if cfg.Workers != 1 {
		t.Errorf("Expected Workers to default to 1, got %d", cfg.Workers)
	}
	if cfg.LLMTimeoutSec != 120 {
		t.Errorf("Expected LLMTimeoutSec 120, got %d", cfg.LLMTimeoutSec)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("OLLAMA_HOST", "http://10.0.0.5:11434/")
	os.Setenv("OLLAMA_MODEL", "llama2")
	os.Setenv("OCR_LANGUAGES", " eng , deu ")
	os.Setenv("OCR_GPU", "true")
	os.Setenv("SAVE_RAW_TEXT", "false")
	os.Setenv("WORKERS", "4")

	defer func() {
		os.Unsetenv("OLLAMA_HOST")
		os.Unsetenv("OLLAMA_MODEL")
		os.Unsetenv("OCR_LANGUAGES")
		os.Unsetenv("OCR_GPU")
		os.Unsetenv("SAVE_RAW_TEXT")
		os.Unsetenv("WORKERS")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	// Trailing slash must be stripped so URL joins stay clean.
	if cfg.OllamaHost != "http://10.0.0.5:11434" {
		t.Errorf("Expected trimmed host, got %q", cfg.OllamaHost)
	}
	if cfg.Model != "llama2" {
		t.Errorf("Expected Model 'llama2', got %q", cfg.Model)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "eng" || cfg.Languages[1] != "deu" {
		t.Errorf("Expected languages [eng deu], got %v", cfg.Languages)
	}
	if !cfg.UseGPU {
		t.Error("Expected UseGPU to be true")
	}
	if cfg.SaveRawText {
		t.Error("Expected SaveRawText to be false")
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected Workers 4, got %d", cfg.Workers)
	}
}

func TestPromptTemplateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("Fix this: {text}"), 0o644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("CORRECTION_PROMPT_FILE", path)
	defer os.Unsetenv("CORRECTION_PROMPT_FILE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.PromptTemplate != "Fix this: {text}" {
		t.Errorf("Expected template from file, got %q", cfg.PromptTemplate)
	}

	// Inline template wins over the file.
	os.Setenv("CORRECTION_PROMPT", "inline {text}")
	defer os.Unsetenv("CORRECTION_PROMPT")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.PromptTemplate != "inline {text}" {
		t.Errorf("Expected inline template to win, got %q", cfg.PromptTemplate)
	}
}

func TestInvalidNumericEnvFallsBack(t *testing.T) {
	os.Setenv("WORKERS", "not-a-number")
	os.Setenv("LLM_TIMEOUT_SEC", "-5")
	defer func() {
		os.Unsetenv("WORKERS")
		os.Unsetenv("LLM_TIMEOUT_SEC")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Workers != 1 {
		t.Errorf("Expected Workers fallback 1, got %d", cfg.Workers)
	}
	if cfg.LLMTimeoutSec != 120 {
		t.Errorf("Expected LLMTimeoutSec fallback 120, got %d", cfg.LLMTimeoutSec)
	}
}
