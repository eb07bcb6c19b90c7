package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	StoreLocal = "local"
	StoreS3    = "s3"
)

type Config struct {
	// Server
	Port     string
	Env      string // development, staging, production
	LogLevel string

	// Database (empty: in-memory repositories)
	DatabaseURL string

	// Firebase (empty: guest identity from X-Guest-Id)
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// LLM
	LLMProvider     string
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
	LLMTimeout      time.Duration
	TTSVoice        string

	// Circuit breaker around every LLM provider
	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerMinRequests      uint32
	BreakerFailureThreshold float64

	// Edit sessions
	SessionTTL      time.Duration
	DiffGranularity string
	MaxUploadBytes  int64

	// Object storage for saved uploads
	ObjectStore   string
	LocalStoreDir string
	S3Bucket      string
	S3Prefix      string
	AWSRegion     string

	// Rate Limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// .env is optional; real env vars take precedence.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		LLMProvider:             strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMModel:                getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:            getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:         getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		LLMTimeout:              getEnvDuration("LLM_TIMEOUT", 90*time.Second),
		TTSVoice:                getEnv("TTS_VOICE", "alloy"),
		BreakerMaxRequests:      uint32(getEnvInt("BREAKER_MAX_REQUESTS", 2)),
		BreakerInterval:         getEnvDuration("BREAKER_INTERVAL", time.Minute),
		BreakerTimeout:          getEnvDuration("BREAKER_TIMEOUT", 30*time.Second),
		BreakerMinRequests:      uint32(getEnvInt("BREAKER_MIN_REQUESTS", 5)),
		BreakerFailureThreshold: getEnvFloat("BREAKER_FAILURE_THRESHOLD", 0.6),
		SessionTTL:              getEnvDuration("SESSION_TTL", 2*time.Hour),
		DiffGranularity:         getEnv("DIFF_GRANULARITY", "words"),
		MaxUploadBytes:          int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		ObjectStore:             strings.ToLower(getEnv("OBJECT_STORE", StoreLocal)),
		LocalStoreDir:           getEnv("LOCAL_STORE_DIR", "./data/uploads"),
		S3Bucket:                getEnv("S3_BUCKET", ""),
		S3Prefix:                getEnv("S3_PREFIX", "careerops"),
		AWSRegion:               getEnv("AWS_REGION", ""),
		RateLimitRPS:            getEnvInt("RATE_LIMIT_RPS", 10),
		AllowedOrigins:          getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai, anthropic or gemini, got %q", c.LLMProvider)
	}
	switch c.ObjectStore {
	case StoreLocal:
	case StoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when OBJECT_STORE=s3")
		}
	default:
		return fmt.Errorf("OBJECT_STORE must be local or s3, got %q", c.ObjectStore)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.BreakerFailureThreshold <= 0 || c.BreakerFailureThreshold > 1 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be in (0, 1]")
	}
	return nil
}

// APIKey returns the key for the selected chat provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
