// Package config loads the ranking service configuration.
// Values come from an optional YAML file, then environment variables override them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds every runtime setting of the server and CLI
type Config struct {
	Port     int    `koanf:"port"`
	Env      string `koanf:"env"`
	LogLevel string `koanf:"log_level"`

	// External ranking service
	OpenAIAPIKey      string        `koanf:"openai_api_key"`
	OpenAIBaseURL     string        `koanf:"openai_base_url"`
	OpenAIModel       string        `koanf:"openai_model"`
	OpenAITemperature float64       `koanf:"openai_temperature"`
	OpenAITimeout     time.Duration `koanf:"openai_timeout"`

	// Input limits
	MaxCandidates       int    `koanf:"max_candidates"`
	CandidateDelimiters string `koanf:"candidate_delimiters"`

	// Budget for external calls; 0 disables it
	LLMCallsPerMinute int    `koanf:"llm_calls_per_minute"`
	RedisAddr         string `koanf:"redis_addr"`
	RedisPassword     string `koanf:"redis_password"`
	RedisDB           int    `koanf:"redis_db"`

	BreakerFailureThreshold int           `koanf:"breaker_failure_threshold"`
	BreakerRecoveryTimeout  time.Duration `koanf:"breaker_recovery_timeout"`

	CORSAllowOrigins []string `koanf:"cors_allow_origins"`
}

// Validation errors
var (
	ErrInvalidPort          = errors.New("PORT must be between 1 and 65535")
	ErrInvalidLogLevel      = errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	ErrInvalidTemperature   = errors.New("OPENAI_TEMPERATURE must be between 0 and 2")
	ErrInvalidTimeout       = errors.New("OPENAI_TIMEOUT must be positive")
	ErrInvalidMaxCandidates = errors.New("MAX_CANDIDATES must be positive")
	ErrInvalidCallBudget    = errors.New("LLM_CALLS_PER_MINUTE must not be negative")
	ErrInvalidRedisDB       = errors.New("REDIS_DB must not be negative")
	ErrInvalidBreaker       = errors.New("BREAKER_FAILURE_THRESHOLD and BREAKER_RECOVERY_TIMEOUT must be positive")
	ErrInvalidNumber        = errors.New("value must be numeric")
)

// Defaults
const (
	DefaultPort                    = 8080
	DefaultEnv                     = "development"
	DefaultLogLevel                = "info"
	DefaultOpenAIModel             = "gpt-4o-mini"
	DefaultOpenAITemperature       = 0.2
	DefaultOpenAITimeout           = 30 * time.Second
	DefaultMaxCandidates           = 200
	DefaultCandidateDelimiters     = ",，\n"
	DefaultBreakerFailureThreshold = 5
	DefaultBreakerRecoveryTimeout  = 30 * time.Second
)

// Load reads the optional YAML file at path and applies environment overrides.
// It returns the config and every validation problem found. A file that cannot
// be read is reported as the only error with a nil config.
func Load(path string) (*Config, []error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", path, err)}
		}
	}

	var loadErrs []error
	collect := func(err error) {
		if err != nil {
			loadErrs = append(loadErrs, err)
		}
	}

	port, err := getEnvInt("PORT", k, "port", DefaultPort)
	collect(err)
	temperature, err := getEnvFloat("OPENAI_TEMPERATURE", k, "openai_temperature", DefaultOpenAITemperature)
	collect(err)
	timeout, err := getEnvDuration("OPENAI_TIMEOUT", k, "openai_timeout", DefaultOpenAITimeout)
	collect(err)
	maxCandidates, err := getEnvInt("MAX_CANDIDATES", k, "max_candidates", DefaultMaxCandidates)
	collect(err)
	calls, err := getEnvInt("LLM_CALLS_PER_MINUTE", k, "llm_calls_per_minute", 0)
	collect(err)
	redisDB, err := getEnvInt("REDIS_DB", k, "redis_db", 0)
	collect(err)
	threshold, err := getEnvInt("BREAKER_FAILURE_THRESHOLD", k, "breaker_failure_threshold", DefaultBreakerFailureThreshold)
	collect(err)
	recovery, err := getEnvDuration("BREAKER_RECOVERY_TIMEOUT", k, "breaker_recovery_timeout", DefaultBreakerRecoveryTimeout)
	collect(err)

	cfg := &Config{
		Port:                    port,
		Env:                     getEnvOrDefault("ENV", k.String("env"), DefaultEnv),
		LogLevel:                strings.ToLower(getEnvOrDefault("LOG_LEVEL", k.String("log_level"), DefaultLogLevel)),
		OpenAIAPIKey:            getEnvOrKoanf("OPENAI_API_KEY", k, "openai_api_key"),
		OpenAIBaseURL:           getEnvOrKoanf("OPENAI_BASE_URL", k, "openai_base_url"),
		OpenAIModel:             getEnvOrDefault("OPENAI_MODEL", k.String("openai_model"), DefaultOpenAIModel),
		OpenAITemperature:       temperature,
		OpenAITimeout:           timeout,
		MaxCandidates:           maxCandidates,
		CandidateDelimiters:     unescapeDelimiters(getEnvOrDefault("CANDIDATE_DELIMITERS", k.String("candidate_delimiters"), DefaultCandidateDelimiters)),
		LLMCallsPerMinute:       calls,
		RedisAddr:               getEnvOrKoanf("REDIS_ADDR", k, "redis_addr"),
		RedisPassword:           getEnvOrKoanf("REDIS_PASSWORD", k, "redis_password"),
		RedisDB:                 redisDB,
		BreakerFailureThreshold: threshold,
		BreakerRecoveryTimeout:  recovery,
		CORSAllowOrigins:        getEnvList("CORS_ALLOW_ORIGINS", k, "cors_allow_origins", []string{"*"}),
	}

	return cfg, append(loadErrs, cfg.Validate()...)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks value ranges. A missing OpenAI key is not an error.
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLogLevel)
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		errs = append(errs, ErrInvalidTemperature)
	}
	if c.OpenAITimeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}
	if c.MaxCandidates <= 0 {
		errs = append(errs, ErrInvalidMaxCandidates)
	}
	if c.LLMCallsPerMinute < 0 {
		errs = append(errs, ErrInvalidCallBudget)
	}
	if c.RedisDB < 0 {
		errs = append(errs, ErrInvalidRedisDB)
	}
	if c.BreakerFailureThreshold <= 0 || c.BreakerRecoveryTimeout <= 0 {
		errs = append(errs, ErrInvalidBreaker)
	}

	return errs
}

// LogSummary returns the configuration with secrets masked
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                 strconv.Itoa(c.Port),
		"env":                  c.Env,
		"log_level":            c.LogLevel,
		"openai_api_key":       maskSecret(c.OpenAIAPIKey),
		"openai_base_url":      c.OpenAIBaseURL,
		"openai_model":         c.OpenAIModel,
		"openai_timeout":       c.OpenAITimeout.String(),
		"max_candidates":       strconv.Itoa(c.MaxCandidates),
		"llm_calls_per_minute": strconv.Itoa(c.LLMCallsPerMinute),
		"redis_addr":           c.RedisAddr,
		"redis_password":       maskSecret(c.RedisPassword),
		"cors_allow_origins":   strings.Join(c.CORSAllowOrigins, ","),
	}
}

func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

func getEnvOrDefault(envKey, koanfVal, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvInt prefers the env var, then an explicitly set file value (zero included), then the default
func getEnvInt(envKey string, k *koanf.Koanf, koanfKey string, defaultVal int) (int, error) {
	if val := strings.TrimSpace(os.Getenv(envKey)); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidNumber)
		}
		return i, nil
	}
	if k.Exists(koanfKey) {
		return k.Int(koanfKey), nil
	}
	return defaultVal, nil
}

func getEnvFloat(envKey string, k *koanf.Koanf, koanfKey string, defaultVal float64) (float64, error) {
	if val := strings.TrimSpace(os.Getenv(envKey)); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidNumber)
		}
		return f, nil
	}
	if k.Exists(koanfKey) {
		return k.Float64(koanfKey), nil
	}
	return defaultVal, nil
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45")
func getEnvDuration(envKey string, k *koanf.Koanf, koanfKey string, defaultVal time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" && k.Exists(koanfKey) {
		raw = strings.TrimSpace(k.String(koanfKey))
	}
	if raw == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: %w", envKey, err)
	}
	return d, nil
}

func getEnvList(envKey string, k *koanf.Koanf, koanfKey string, defaultVal []string) []string {
	if val := os.Getenv(envKey); val != "" {
		return splitList(val)
	}
	if k.Exists(koanfKey) {
		if list := k.Strings(koanfKey); len(list) > 0 {
			return list
		}
		if list := splitList(k.String(koanfKey)); len(list) > 0 {
			return list
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// unescapeDelimiters lets env values spell newline and tab as \n and \t
func unescapeDelimiters(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(s)
}

func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}
