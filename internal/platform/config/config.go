package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort           = "8080"
	DefaultPersistTimeout = 3 * time.Second
)

// Config junta lo que antes se leía suelto en main.go.
// Todo viene de env; el CLI permite pisarlo con flags.
type Config struct {
	Port  string
	DBDSN string

	LogLevel  string
	LogFormat string
	AppName   string

	OdinBaseURL string
	OdinAPIKey  string

	PlansBaseURL string
	PlansAPIKey  string

	// Solo dev: todas las capabilities en true (incluida zoo:staff).
	AllowAllCapabilities bool

	// Timeout del paso de persistencia de una asignación; vencido => compensación.
	PersistTimeout time.Duration
}

// FromEnv lee:
// - PORT (default 8080), DB_DSN (vacío => in-memory)
// - LOG_LEVEL, LOG_FORMAT, APP_NAME
// - ODIN_BASE_URL, ODIN_API_KEY (vacío => modo dev con X-Debug-User-ID)
// - PLANS_BASE_URL, PLANS_API_KEY, ALLOW_ALL_CAPABILITIES
// - PERSIST_TIMEOUT (duración Go, ej: 3s)
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		Port:         get("PORT"),
		DBDSN:        get("DB_DSN"),
		LogLevel:     get("LOG_LEVEL"),
		LogFormat:    get("LOG_FORMAT"),
		AppName:      get("APP_NAME"),
		OdinBaseURL:  get("ODIN_BASE_URL"),
		OdinAPIKey:   get("ODIN_API_KEY"),
		PlansBaseURL: get("PLANS_BASE_URL"),
		PlansAPIKey:  get("PLANS_API_KEY"),
	}
	cfg.AllowAllCapabilities = strings.EqualFold(get("ALLOW_ALL_CAPABILITIES"), "true")
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}

	cfg.PersistTimeout = DefaultPersistTimeout
	if raw := get("PERSIST_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PERSIST_TIMEOUT %q: %w", raw, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid PERSIST_TIMEOUT %q: must be positive", raw)
		}
		cfg.PersistTimeout = d
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) OdinConfigured() bool {
	return c.OdinBaseURL != "" && c.OdinAPIKey != ""
}

func (c Config) PlansConfigured() bool {
	return c.PlansBaseURL != "" && c.PlansAPIKey != ""
}
