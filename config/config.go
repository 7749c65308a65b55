package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultOllamaHost = "http://localhost:11434"
	DefaultModel      = "mistral"
	DefaultLanguages  = "kor,eng"
	DefaultImagesDir  = "images"
	DefaultOutputDir  = "output"
	DefaultHistoryDB  = "image_ocr_history.db"
	DefaultHotkey     = "ctrl+alt+s"

	// EnvFileVar points at an alternate .env when none sits next to the executable.
	EnvFileVar = "IMAGE_OCR_LLM"
)

// DefaultPromptTemplate is used when no custom template is configured.
// The {text} placeholder is replaced with the raw OCR output.
const DefaultPromptTemplate = `The following text was extracted from an image with OCR. Please:
1. Fix character substitutions caused by OCR errors
2. Fix spacing and grammar mistakes
3. Preserve the original meaning as closely as possible

[Original text]
{text}

[Output only the corrected text]`

type Config struct {
	OllamaHost     string
	Model          string
	Languages      []string
	UseGPU         bool
	PromptTemplate string

	ImagesDir string
	OutputDir string

	SaveRawText       bool
	SaveCorrectedText bool
	SaveJSONResult    bool

	EnableFileLogging bool
	LLMTimeoutSec     int
	LLMMaxRetries     int
	Workers           int
	HistoryDB         string
	Hotkey            string
}

func Load() (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use IMAGE_OCR_LLM env var as a path to a config file
	// Environment variables already set take precedence over the file.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		OllamaHost:        strings.TrimRight(getEnvWithDefault("OLLAMA_HOST", DefaultOllamaHost), "/"),
		Model:             getEnvWithDefault("OLLAMA_MODEL", DefaultModel),
		Languages:         parseList(getEnvWithDefault("OCR_LANGUAGES", DefaultLanguages)),
		UseGPU:            boolEnv("OCR_GPU", false),
		PromptTemplate:    resolvePromptTemplate(),
		ImagesDir:         getEnvWithDefault("IMAGES_DIR", DefaultImagesDir),
		OutputDir:         getEnvWithDefault("OUTPUT_DIR", DefaultOutputDir),
		SaveRawText:       boolEnv("SAVE_RAW_TEXT", true),
		SaveCorrectedText: boolEnv("SAVE_CORRECTED_TEXT", true),
		SaveJSONResult:    boolEnv("SAVE_JSON_RESULT", true),
		EnableFileLogging: boolEnv("ENABLE_FILE_LOGGING", false),
		LLMTimeoutSec:     intEnv("LLM_TIMEOUT_SEC", 120),
		LLMMaxRetries:     intEnv("LLM_MAX_RETRIES", 3),
		Workers:           intEnv("WORKERS", 1),
		HistoryDB:         getEnvWithDefault("HISTORY_DB", DefaultHistoryDB),
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvFileVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// resolvePromptTemplate prefers an inline template, then a template file,
// then the built-in default.
func resolvePromptTemplate() string {
	if inline := os.Getenv("CORRECTION_PROMPT"); strings.TrimSpace(inline) != "" {
		return inline
	}
	if path := os.Getenv("CORRECTION_PROMPT_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(data)) != "" {
			return string(data)
		}
	}
	return DefaultPromptTemplate
}

func parseList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func boolEnv(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func intEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
