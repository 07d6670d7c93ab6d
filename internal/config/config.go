package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the FashBot gateway.
type Config struct {
	Port         int
	Version      string
	PingMessage  string
	GeneratedDir string
	PythonBin    string
	Providers    ProviderConfig
	Telemetry    TelemetryConfig
}

// ProviderConfig carries credentials and endpoint overrides for every
// external provider. Endpoints default to the public APIs; overriding them is
// primarily a test hook.
type ProviderConfig struct {
	GeminiAPIKey    string
	OpenAIAPIKey    string
	QwenAPIKey      string
	AnthropicAPIKey string
	FalAPIKey       string
	UnsplashKey     string

	GeminiEndpoint    string
	OpenAIEndpoint    string
	QwenEndpoint      string
	AnthropicEndpoint string
	FalEndpoint       string
	UnsplashEndpoint  string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present, matching
// the dotenv behavior the front-end toolchain relies on.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         envInt("FASHBOT_PORT", 8080),
		Version:      envStr("FASHBOT_VERSION", "1.2.0"),
		PingMessage:  envStr("PING_MESSAGE", "ping"),
		GeneratedDir: envStr("FASHBOT_GENERATED_DIR", "generated_images"),
		PythonBin:    envStr("PYTHON_BIN", "python3"),
		Providers: ProviderConfig{
			GeminiAPIKey:    envKey("GEMINI_API_KEY"),
			OpenAIAPIKey:    envKey("OPENAI_API_KEY"),
			QwenAPIKey:      envKey("QWEN_API_KEY"),
			AnthropicAPIKey: envKey("ANTHROPIC_API_KEY"),
			FalAPIKey:       envKey("FAL_API_KEY"),
			UnsplashKey:     firstNonEmpty(envKey("UNSPLASH_ACCESS_KEY"), envKey("UNSPLASH_APP_ID")),

			GeminiEndpoint:    envStr("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com"),
			OpenAIEndpoint:    envStr("OPENAI_ENDPOINT", "https://api.openai.com"),
			QwenEndpoint:      envStr("QWEN_ENDPOINT", "https://api.qwen.ai"),
			AnthropicEndpoint: envStr("ANTHROPIC_ENDPOINT", "https://api.anthropic.com"),
			FalEndpoint:       envStr("FAL_ENDPOINT", "https://api.fal.ai"),
			UnsplashEndpoint:  envStr("UNSPLASH_ENDPOINT", "https://api.unsplash.com"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "fashbot-gateway"),
		},
	}
}

// envKey reads a credential, also accepting the VITE_-prefixed name the
// front-end build historically used for the same value.
func envKey(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return os.Getenv("VITE_" + key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
