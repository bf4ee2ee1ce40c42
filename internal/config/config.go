package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Email    EmailConfig    `yaml:"email"`
	CRM      CRMConfig      `yaml:"crm"`
	Overflow OverflowConfig `yaml:"overflow"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port          int    `yaml:"port"`
	MetricsPort   int    `yaml:"metrics_port"`
	OperatorToken string `yaml:"operator_token"`
	AdminToken    string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type EmailConfig struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	OperatorAddress string `yaml:"operator_address"`
}

type CRMConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type OverflowConfig struct {
	EscalationWindowHours int `yaml:"escalation_window_hours"`
	WatchdogTickMs        int `yaml:"watchdog_tick_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) EscalationWindow() time.Duration {
	return time.Duration(c.Overflow.EscalationWindowHours) * time.Hour
}

func (c *Config) WatchdogTick() time.Duration {
	return time.Duration(c.Overflow.WatchdogTickMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Email: EmailConfig{
			Region:          "us-east-1",
			Sender:          "alerts@leadrouter.local",
			OperatorAddress: "operators@leadrouter.local",
		},
		Overflow: OverflowConfig{
			EscalationWindowHours: 24,
			WatchdogTickMs:        60000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	// A zero or negative interval would stall (or panic) the watchdog ticker.
	if cfg.Overflow.EscalationWindowHours <= 0 {
		cfg.Overflow.EscalationWindowHours = 24
	}
	if cfg.Overflow.WatchdogTickMs <= 0 {
		cfg.Overflow.WatchdogTickMs = 60000
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LEADROUTER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("LEADROUTER_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("LEADROUTER_OPERATOR_TOKEN"); v != "" {
		cfg.Server.OperatorToken = v
	}
	if v := os.Getenv("LEADROUTER_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("LEADROUTER_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("LEADROUTER_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("LEADROUTER_EMAIL_REGION"); v != "" {
		cfg.Email.Region = v
	}
	if v := os.Getenv("LEADROUTER_EMAIL_SENDER"); v != "" {
		cfg.Email.Sender = v
	}
	if v := os.Getenv("LEADROUTER_OPERATOR_ADDRESS"); v != "" {
		cfg.Email.OperatorAddress = v
	}
	if v := os.Getenv("LEADROUTER_CRM_URL"); v != "" {
		cfg.CRM.URL = v
	}
	if v := os.Getenv("LEADROUTER_CRM_TOKEN"); v != "" {
		cfg.CRM.Token = v
	}
	if v := os.Getenv("LEADROUTER_ESCALATION_WINDOW_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Overflow.EscalationWindowHours = n
		}
	}
	if v := os.Getenv("LEADROUTER_WATCHDOG_TICK_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Overflow.WatchdogTickMs = n
		}
	}
	if v := os.Getenv("LEADROUTER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
