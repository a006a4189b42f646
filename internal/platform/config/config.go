package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Host     string `env:"HOST" envDefault:"0.0.0.0"`
	Port     int    `env:"PORT" envDefault:"3000"`

	// Completion provider (primary, OpenAI-compatible)
	LLMAPIKey           string        `env:"LLM_API_KEY"`
	LLMBaseURL          string        `env:"LLM_BASE_URL"`
	LLMModel            string        `env:"LLM_MODEL" envDefault:"gpt-4o"`
	LLMTemperature      float32       `env:"LLM_TEMPERATURE" envDefault:"0.8"`
	LLMTimeout          time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	LLMRateLimitRPS     float64       `env:"LLM_RPS" envDefault:"5"`
	LLMCircuitThreshold int           `env:"LLM_CIRCUIT_THRESHOLD" envDefault:"5"`
	LLMCircuitTimeout   time.Duration `env:"LLM_CIRCUIT_TIMEOUT" envDefault:"1m"`

	// Fallback providers, registered only when a key is present
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel  string `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-4o-mini"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5"`
	GoogleAPIKey     string `env:"GOOGLE_API_KEY"`
	GoogleModel      string `env:"GOOGLE_MODEL" envDefault:"gemini-2.5-flash-lite"`

	// Link resolution. WEB_FETCH_ALLOW_PRIVATE lets previews reach loopback
	// and private addresses and is meant for local development only.
	WebFetchRPS          float64       `env:"WEB_FETCH_RPS" envDefault:"2"`
	WebFetchTimeout      time.Duration `env:"WEB_FETCH_TIMEOUT" envDefault:"10s"`
	WebFetchAllowPrivate bool          `env:"WEB_FETCH_ALLOW_PRIVATE" envDefault:"false"`
	TitleCacheSize       int           `env:"TITLE_CACHE_SIZE" envDefault:"512"`
	TitleCacheTTL        time.Duration `env:"TITLE_CACHE_TTL" envDefault:"1h"`
	MaxInputRunes        int           `env:"MAX_INPUT_RUNES" envDefault:"2000"`

	// Ingress
	RateLimitRequests  int           `env:"RATE_LIMIT_REQUESTS" envDefault:"20"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitBackend   string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RedisURL           string        `env:"REDIS_URL"`
	StaticDir          string        `env:"STATIC_DIR"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	TrustedProxies     []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"65536"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Telegram surface
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyAliases(cfg)

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// applyAliases honors the variable names the original deployment used.
func applyAliases(cfg *Config) {
	if !hasEnv("LLM_API_KEY") {
		setStringFromEnv("OPENAI_API_KEY", &cfg.LLMAPIKey)
	}

	if !hasEnv("LLM_BASE_URL") {
		setStringFromEnv("OPENAI_BASE_URL", &cfg.LLMBaseURL)
	}

	if !hasEnv("TELEGRAM_BOT_TOKEN") {
		setStringFromEnv("BOT_TOKEN", &cfg.TelegramBotToken)
	}

	if !hasEnv("RATE_LIMIT_REQUESTS") {
		setIntFromEnv("RATE_LIMIT_MAX", &cfg.RateLimitRequests)
	}

	if !hasEnv("RATE_LIMIT_WINDOW") {
		setDurationFromEnv("RATE_LIMIT_WINDOW_MS", &cfg.RateLimitWindow)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setIntFromEnv(key string, target *int) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}

// setDurationFromEnv accepts Go durations and bare millisecond counts.
func setDurationFromEnv(key string, target *time.Duration) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)

	if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
		*target = time.Duration(ms) * time.Millisecond
		return
	}

	parsed, err := time.ParseDuration(val)
	if err != nil {
		return
	}

	*target = parsed
}
