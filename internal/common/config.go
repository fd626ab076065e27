package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Paths     PathsConfig
	Inference InferenceConfig
	OCR       OCRConfig
	Ledger    LedgerConfig
}

// PathsConfig holds directory roots and external binaries
type PathsConfig struct {
	InputRoot   string // unsigned letters, keyed by year/month/day-of-run
	OutputRoot  string // renamed copies awaiting signature
	JournalPath string // sqlite run journal
	Pdftotext   string // binary name or absolute path
	Pdftoppm    string
	Tesseract   string
}

// InferenceConfig holds the local model endpoint settings
type InferenceConfig struct {
	BaseURL        string
	Model          string
	Temperature    float64
	KeepAlive      string
	Timeout        time.Duration // per-document generate deadline; minutes on slow hardware
	WarmupTimeout  time.Duration
	MaxPromptChars int // normalized-text budget embedded in the prompt
}

// OCRConfig holds optical-extraction settings
type OCRConfig struct {
	DefaultDPI int    // used when an issuer has no dedicated DPI
	Languages  string // tesseract language set
	MaxPages   int    // 0 = no limit
}

// LedgerConfig holds ledger and filing settings
type LedgerConfig struct {
	BaseID      int    // first sequential identifier of a batch
	PDFPassword string // decryption passphrase for encrypted letters
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			InputRoot:   getEnv("NDF_INPUT_ROOT", ""),
			OutputRoot:  getEnv("NDF_OUTPUT_ROOT", ""),
			JournalPath: getEnv("NDF_JOURNAL_PATH", "./ndf-journal.db"),
			Pdftotext:   getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
		},
		Inference: InferenceConfig{
			BaseURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:          getEnv("OLLAMA_MODEL", "llama3.2:3b"),
			Temperature:    getEnvAsFloat64("OLLAMA_TEMPERATURE", 0.1),
			KeepAlive:      getEnv("OLLAMA_KEEP_ALIVE", "30m"),
			Timeout:        getEnvAsDuration("OLLAMA_TIMEOUT", 3*time.Minute),
			WarmupTimeout:  getEnvAsDuration("OLLAMA_WARMUP_TIMEOUT", 30*time.Second),
			MaxPromptChars: getEnvAsInt("NDF_MAX_PROMPT_CHARS", 12000),
		},
		OCR: OCRConfig{
			DefaultDPI: getEnvAsInt("OCR_DEFAULT_DPI", 300),
			Languages:  getEnv("OCR_LANGUAGES", "eng+spa"),
			MaxPages:   getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Ledger: LedgerConfig{
			BaseID:      getEnvAsInt("NDF_LEDGER_BASE_ID", 1001),
			PDFPassword: getEnv("NDF_PDF_PASSWORD", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Paths.InputRoot == "" {
		return NewAppError("CONFIG_ERROR", "NDF_INPUT_ROOT is required", ErrInvalidInput)
	}
	if c.Paths.OutputRoot == "" {
		return NewAppError("CONFIG_ERROR", "NDF_OUTPUT_ROOT is required", ErrInvalidInput)
	}
	if c.Inference.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "OLLAMA_URL is required", ErrInvalidInput)
	}
	if c.Ledger.BaseID <= 0 {
		return NewAppError("CONFIG_ERROR", "NDF_LEDGER_BASE_ID must be positive", ErrInvalidInput)
	}
	return nil
}
