package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr    string      `yaml:"addr"`
	BaseURL string      `yaml:"base_url"`
	DataDir string      `yaml:"data_dir"`
	Debug   bool        `yaml:"debug"`
	Email   EmailConfig `yaml:"email"`

	// Parsed from the file's sweep_interval string, e.g. "30s".
	SweepInterval time.Duration `yaml:"-"`
}

type EmailConfig struct {
	FromEmail    string `yaml:"from_email"`
	ResendAPIKey string `yaml:"resend_api_key"`
	SMTPEnabled  bool   `yaml:"smtp_enabled"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     string `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPass     string `yaml:"smtp_pass"`
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the optional YAML config file, then applies environment
// overrides on top. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Config{
		Addr:          ":8080",
		BaseURL:       "http://localhost:8080",
		DataDir:       "data",
		SweepInterval: 15 * time.Second,
		Email: EmailConfig{
			FromEmail: "FocusFlow <focusflow@resend.dev>",
			SMTPPort:  "587",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			var extra struct {
				SweepInterval string `yaml:"sweep_interval"`
			}
			if err := yaml.Unmarshal(data, &extra); err == nil && extra.SweepInterval != "" {
				d, err := time.ParseDuration(extra.SweepInterval)
				if err != nil {
					return Config{}, fmt.Errorf("parse sweep_interval: %w", err)
				}
				cfg.SweepInterval = d
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.Addr = getEnv("FOCUSFLOW_ADDR", cfg.Addr)
	cfg.BaseURL = getEnv("FOCUSFLOW_BASE_URL", cfg.BaseURL)
	cfg.DataDir = getEnv("FOCUSFLOW_DATA_DIR", cfg.DataDir)
	if v := os.Getenv("FOCUSFLOW_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse FOCUSFLOW_SWEEP_INTERVAL: %w", err)
		}
		cfg.SweepInterval = d
	}
	if strings.EqualFold(os.Getenv("FOCUSFLOW_DEBUG"), "true") {
		cfg.Debug = true
	}

	cfg.Email.FromEmail = getEnv("FOCUSFLOW_FROM_EMAIL", cfg.Email.FromEmail)
	cfg.Email.ResendAPIKey = getEnv("RESEND_API_KEY", cfg.Email.ResendAPIKey)
	if strings.EqualFold(os.Getenv("SMTP_ENABLED"), "true") {
		cfg.Email.SMTPEnabled = true
	}
	cfg.Email.SMTPHost = getEnv("SMTP_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getEnv("SMTP_PORT", cfg.Email.SMTPPort)
	cfg.Email.SMTPUser = getEnv("SMTP_USER", cfg.Email.SMTPUser)
	cfg.Email.SMTPPass = getEnv("SMTP_PASS", cfg.Email.SMTPPass)

	return cfg, nil
}
