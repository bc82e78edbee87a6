package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"parley/internal/domain"
)

// AgentConfig identifies the remote conversational agent.
type AgentConfig struct {
	// ID is the agent identifier on the conversational-AI service.
	// Required; startup fails without it.
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// ServiceConfig holds the remote service endpoint settings.
type ServiceConfig struct {
	URL    string `yaml:"url"`     // websocket endpoint, e.g. wss://api.example.com/v1/convai
	APIKey string `yaml:"api_key"` // optional; some agents are public

	// DialTimeout bounds the connection handshake.
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// SendRatePerSec limits outbound user messages. 0 = default.
	SendRatePerSec float64 `yaml:"send_rate_per_sec"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// MaxRenderedTurns caps how many turns the view renders. The
	// transcript itself is unbounded; this only bounds rendering work.
	MaxRenderedTurns int `yaml:"max_rendered_turns"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // stdout, noop
}

// Config is the top-level application configuration.
type Config struct {
	Agent   AgentConfig   `yaml:"agent"`
	Service ServiceConfig `yaml:"service"`
	UI      UIConfig      `yaml:"ui"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// Defaults returns a config with sensible defaults applied.
func Defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			Name: "Agent",
		},
		Service: ServiceConfig{
			URL:            "wss://api.parley.chat/v1/convai",
			DialTimeout:    10 * time.Second,
			SendRatePerSec: 4,
		},
		UI: UIConfig{
			MaxRenderedTurns: 1000,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads the config file at path, applies PARLEY_* environment
// overrides, and validates. A missing file is not an error: env vars
// alone can configure the client.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps PARLEY_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PARLEY_AGENT_ID"); v != "" {
		cfg.Agent.ID = v
	}
	if v := os.Getenv("PARLEY_AGENT_NAME"); v != "" {
		cfg.Agent.Name = v
	}
	if v := os.Getenv("PARLEY_SERVICE_URL"); v != "" {
		cfg.Service.URL = v
	}
	if v := os.Getenv("PARLEY_API_KEY"); v != "" {
		cfg.Service.APIKey = v
	}
	if v := os.Getenv("PARLEY_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Service.DialTimeout = d
		}
	}
	if v := os.Getenv("PARLEY_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("PARLEY_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("PARLEY_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("PARLEY_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("PARLEY_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("PARLEY_UI_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UI.MaxRenderedTurns = n
		}
	}
}

// Validate checks the loaded configuration. A missing agent ID is a
// fatal startup condition for this client.
func Validate(cfg *Config) error {
	if cfg.Agent.ID == "" {
		return domain.NewDomainError("config.Validate", domain.ErrAgentIDMissing,
			"set agent.id in config or PARLEY_AGENT_ID")
	}
	if cfg.Service.URL == "" {
		return fmt.Errorf("service.url must not be empty")
	}
	if cfg.Service.DialTimeout <= 0 {
		return fmt.Errorf("service.dial_timeout must be positive")
	}
	switch cfg.Logger.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logger.format must be text or json, got %q", cfg.Logger.Format)
	}
	switch cfg.Tracer.Exporter {
	case "", "stdout", "noop":
	default:
		return fmt.Errorf("tracer.exporter must be stdout or noop, got %q", cfg.Tracer.Exporter)
	}
	return nil
}
