package config

import (
	"os"
	"testing"
	"time"
)

// Test environment variable keys.
const (
	testEnvLLMAPIKey    = "LLM_API_KEY"
	testEnvOpenAIAPIKey = "OPENAI_API_KEY"
	testEnvPort         = "PORT"
	testEnvOrigins      = "CORS_ALLOWED_ORIGINS"
)

const testErrLoad = "Load() error = %v"

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		if val, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, val) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, "APP_ENV", "PORT", "HOST", "LLM_MODEL", "LLM_TEMPERATURE",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW_MS",
		"RATE_LIMIT_BACKEND", "MAX_INPUT_RUNES", "WEB_FETCH_ALLOW_PRIVATE", "TRUSTED_PROXIES", "MAX_BODY_BYTES")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv default = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.Port != 3000 {
		t.Errorf("Port default = %d, want %d", cfg.Port, 3000)
	}

	if cfg.Addr() != "0.0.0.0:3000" {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), "0.0.0.0:3000")
	}

	if cfg.LLMModel != "gpt-4o" {
		t.Errorf("LLMModel default = %q, want %q", cfg.LLMModel, "gpt-4o")
	}

	if cfg.LLMTemperature != 0.8 {
		t.Errorf("LLMTemperature default = %v, want %v", cfg.LLMTemperature, 0.8)
	}

	if cfg.RateLimitRequests != 20 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("rate limit defaults = %d/%v, want 20/1m", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	if cfg.RateLimitBackend != "memory" {
		t.Errorf("RateLimitBackend default = %q, want %q", cfg.RateLimitBackend, "memory")
	}

	if cfg.MaxInputRunes != 2000 {
		t.Errorf("MaxInputRunes default = %d, want %d", cfg.MaxInputRunes, 2000)
	}

	if cfg.WebFetchAllowPrivate {
		t.Error("WebFetchAllowPrivate default = true, want false")
	}

	if len(cfg.TrustedProxies) != 0 {
		t.Errorf("TrustedProxies default = %v, want none", cfg.TrustedProxies)
	}

	if cfg.MaxBodyBytes != 64<<10 {
		t.Errorf("MaxBodyBytes default = %d, want %d", cfg.MaxBodyBytes, 64<<10)
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" || cfg.TrustedProxies[1] != "192.168.1.10" {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
}

func TestLoad_NoCredentialIsNotAnError(t *testing.T) {
	clearEnv(t, testEnvLLMAPIKey, testEnvOpenAIAPIKey)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.LLMAPIKey != "" {
		t.Errorf("LLMAPIKey = %q, want empty", cfg.LLMAPIKey)
	}
}

func TestLoad_OpenAIKeyAlias(t *testing.T) {
	clearEnv(t, testEnvLLMAPIKey)
	t.Setenv(testEnvOpenAIAPIKey, "sk-alias")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.LLMAPIKey != "sk-alias" {
		t.Errorf("LLMAPIKey = %q, want %q", cfg.LLMAPIKey, "sk-alias")
	}
}

func TestLoad_PrimaryKeyWinsOverAlias(t *testing.T) {
	t.Setenv(testEnvLLMAPIKey, "sk-primary")
	t.Setenv(testEnvOpenAIAPIKey, "sk-alias")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.LLMAPIKey != "sk-primary" {
		t.Errorf("LLMAPIKey = %q, want %q", cfg.LLMAPIKey, "sk-primary")
	}
}

func TestLoad_RateLimitWindowMillisAlias(t *testing.T) {
	clearEnv(t, "RATE_LIMIT_WINDOW")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "900000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("RateLimitWindow = %v, want %v", cfg.RateLimitWindow, 15*time.Minute)
	}
}

func TestLoad_Origins(t *testing.T) {
	t.Setenv(testEnvOrigins, "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("CORSAllowedOrigins length = %d, want %d", len(cfg.CORSAllowedOrigins), 2)
	}

	if cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins[1] = %q, want %q", cfg.CORSAllowedOrigins[1], "https://b.example")
	}
}

func TestLoad_InvalidNumeric(t *testing.T) {
	t.Setenv(testEnvPort, "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("expected error for invalid PORT")
	}
}
