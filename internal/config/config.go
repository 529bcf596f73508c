package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	OCR      OCRConfig
	Matching MatchingConfig
	LLM      LLMConfig
	Upload   UploadConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds sqlite configuration.
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// OCRConfig holds text extraction configuration. Library state that used to
// be ambient (binary paths, page segmentation mode, blur radius) is passed
// explicitly into the extractor.
type OCRConfig struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int // 6 = uniform block of text
	MedianRadius  int // median blur window radius, default 2 (5x5 window)
	Workers       int // extraction worker pool size
	Timeout       time.Duration
}

// MatchingConfig names the domain tolerance thresholds. The values encode
// product decisions; do not change them without sign-off.
type MatchingConfig struct {
	VendorSimilarityThreshold float64 // min vendor ratio to count toward the score
	ItemSimilarityThreshold   float64 // min item ratio to count toward the score
	VendorWeight              float64
	ItemWeight                float64
	MinOverallScore           float64 // candidates below this are dropped
	PriceTolerancePct         float64 // relative price/total tolerance
	TopCandidates             int     // POs examined in detail per validation
}

// LLMConfig holds the optional OpenAI translation settings for the
// natural-language query helper.
type LLMConfig struct {
	APIKey      string // empty disables the LLM path (pattern fallback only)
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// UploadConfig holds invoice upload handling configuration.
type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// Load reads configuration from environment variables, applying defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":5000"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Path:        getEnv("DB_PATH", "invoice_po_matching.db"),
			BusyTimeout: getEnvAsDuration("DB_BUSY_TIMEOUT", 5*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("TESSERACT_PSM", 6),
			MedianRadius:  getEnvAsInt("OCR_MEDIAN_RADIUS", 2),
			Workers:       getEnvAsInt("OCR_WORKERS", 2),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 2*time.Minute),
		},
		Matching: MatchingConfig{
			VendorSimilarityThreshold: getEnvAsFloat("VENDOR_SIMILARITY_THRESHOLD", 80),
			ItemSimilarityThreshold:   getEnvAsFloat("ITEM_SIMILARITY_THRESHOLD", 75),
			VendorWeight:              0.6,
			ItemWeight:                0.4,
			MinOverallScore:           getEnvAsFloat("MIN_OVERALL_SCORE", 50),
			PriceTolerancePct:         getEnvAsFloat("PRICE_TOLERANCE_PCT", 5),
			TopCandidates:             3,
		},
		LLM: LLMConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
		},
		Upload: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 16<<20),
		},
	}
}

// Helper functions for environment variable parsing.
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
