package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	FrontendURL  string        `yaml:"frontend_url"`
	JWT          JWTCfg        `yaml:"jwt"`
}

type JWTCfg struct {
	Secret           string `yaml:"secret"`
	AccessTTLMinutes int    `yaml:"accessTTLMinutes"`
	RefreshTTLDays   int    `yaml:"refreshTTLDays"`
}

type PostgresCfg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds the connection string for the postgres driver.
func (p PostgresCfg) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type BrevoCfg struct {
	APIKey    string `yaml:"apiKey"`
	FromEmail string `yaml:"fromEmail"`
	FromName  string `yaml:"fromName"`
	Enabled   bool   `yaml:"enabled"`
}

type UploadsCfg struct {
	Dir string `yaml:"dir"`
}

type SecurityCfg struct {
	PasswordHashCost int `yaml:"passwordHashCost"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	Postgres PostgresCfg `yaml:"postgres"`
	Redis    RedisCfg    `yaml:"redis"`
	Brevo    BrevoCfg    `yaml:"brevo"`
	Uploads  UploadsCfg  `yaml:"uploads"`
	Security SecurityCfg `yaml:"security"`
}

// Load reads the YAML config at path, then applies environment variable
// overrides. A .env file is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	override("APP_PORT", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	})
	override("FRONTEND_URL", func(v string) { cfg.App.FrontendURL = v })
	override("JWT_SECRET", func(v string) { cfg.App.JWT.Secret = v })
	override("JWT_ACCESS_TTL_MINUTES", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.JWT.AccessTTLMinutes = n
		}
	})
	override("JWT_REFRESH_TTL_DAYS", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.JWT.RefreshTTLDays = n
		}
	})
	override("POSTGRES_HOST", func(v string) { cfg.Postgres.Host = v })
	override("POSTGRES_PORT", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = n
		}
	})
	override("POSTGRES_USER", func(v string) { cfg.Postgres.User = v })
	override("POSTGRES_PASSWORD", func(v string) { cfg.Postgres.Password = v })
	override("POSTGRES_DB", func(v string) { cfg.Postgres.Database = v })
	override("POSTGRES_SSLMODE", func(v string) { cfg.Postgres.SSLMode = v })
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("BREVO_API_KEY", func(v string) { cfg.Brevo.APIKey = v })
	override("BREVO_FROM_EMAIL", func(v string) { cfg.Brevo.FromEmail = v })
	override("BREVO_FROM_NAME", func(v string) { cfg.Brevo.FromName = v })
	override("UPLOADS_DIR", func(v string) { cfg.Uploads.Dir = v })
	override("PASSWORD_HASH_COST", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.PasswordHashCost = n
		}
	})

	if v := os.Getenv("BREVO_ENABLED"); v == "true" {
		cfg.Brevo.Enabled = true
	}

	if cfg.App.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}
	if cfg.Postgres.Host == "" || cfg.Postgres.Database == "" {
		return nil, errors.New("POSTGRES_HOST and POSTGRES_DB are required")
	}
	if cfg.Brevo.Enabled && (cfg.Brevo.APIKey == "" || cfg.Brevo.FromEmail == "") {
		return nil, errors.New("Brevo enabled but missing APIKey or FromEmail")
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.ReadTimeout == 0 {
		cfg.App.ReadTimeout = 10 * time.Second
	}
	if cfg.App.WriteTimeout == 0 {
		cfg.App.WriteTimeout = 10 * time.Second
	}
	if cfg.App.IdleTimeout == 0 {
		cfg.App.IdleTimeout = 60 * time.Second
	}
	if cfg.App.JWT.AccessTTLMinutes == 0 {
		cfg.App.JWT.AccessTTLMinutes = 15
	}
	if cfg.App.JWT.RefreshTTLDays == 0 {
		cfg.App.JWT.RefreshTTLDays = 7
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "uploads/avatars"
	}
	if cfg.Security.PasswordHashCost == 0 {
		cfg.Security.PasswordHashCost = 12
	}
}
