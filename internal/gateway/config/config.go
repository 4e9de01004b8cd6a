package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	Env    string
	LLM    LLMConfig
	Images ImageConfig
	Inbox  InboxConfig
	Chat   ChatConfig

	GenerationTimeout  time.Duration
	ContactSubmitDelay time.Duration
}

type LLMConfig struct {
	Fake       bool
	APIKey     string
	TextModel  string
	ImageModel string
}

type ImageConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

type InboxConfig struct {
	DatabaseURL string
}

type ChatConfig struct {
	MaxSessions  int
	SessionTTL   time.Duration
	ReplyTimeout time.Duration
}

// CanUseS3 reports whether generated images should go to a bucket instead
// of being inlined as data URLs.
func (c ImageConfig) CanUseS3() bool {
	return c.Enabled && c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}
	apiKey := firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("API_KEY")))

	return &Config{
		Port: resolvePort(os.Getenv("PORT"), ":8081"),
		Env:  env,
		LLM: LLMConfig{
			Fake:       envBool("LLM_FAKE", apiKey == ""),
			APIKey:     apiKey,
			TextModel:  strings.TrimSpace(os.Getenv("GEMINI_TEXT_MODEL")),
			ImageModel: strings.TrimSpace(os.Getenv("GEMINI_IMAGE_MODEL")),
		},
		Images: loadImageConfig(env),
		Inbox: InboxConfig{
			DatabaseURL: strings.TrimSpace(os.Getenv("CONTACT_INBOX_PG_DSN")),
		},
		Chat: ChatConfig{
			MaxSessions:  envInt("CHAT_MAX_SESSIONS", 1024),
			SessionTTL:   envDuration("CHAT_SESSION_TTL", 30*time.Minute),
			ReplyTimeout: envDuration("CHAT_REPLY_TIMEOUT", 45*time.Second),
		},
		GenerationTimeout:  envDuration("GENERATION_TIMEOUT", 2*time.Minute),
		ContactSubmitDelay: envDuration("CONTACT_SUBMIT_DELAY", 1500*time.Millisecond),
	}, nil
}

// resolvePort normalizes "8080" and ":8080" to ":8080".
func resolvePort(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if strings.HasPrefix(raw, ":") {
		return raw
	}
	return ":" + raw
}

func loadImageConfig(env string) ImageConfig {
	endpoint := strings.TrimSpace(os.Getenv("IMAGE_S3_ENDPOINT"))
	return ImageConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_BUCKET")), "nexus-portfolio"),
		UseSSL:    resolveUseSSL(env),
		URLExpiry: envDuration("IMAGE_URL_EXPIRY", 7*24*time.Hour),
	}
}

func resolveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	return envBool("IMAGE_S3_USE_SSL", true)
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
