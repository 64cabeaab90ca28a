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

// Config holds all runtime settings for the API
type Config struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
	Env     string `yaml:"env"`

	LogLevel string `yaml:"log_level"`

	// DatabaseURL selects Postgres; otherwise SQLite at DataPath is used
	DatabaseURL string `yaml:"database_url"`
	DataPath    string `yaml:"data_path"`

	// MongoURI selects the MongoDB store when set
	MongoURI      string `yaml:"mongodb_uri"`
	MongoDatabase string `yaml:"mongodb_database"`

	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	ManagerName     string `yaml:"manager_name"`
	ManagerEmail    string `yaml:"manager_email"`
	ManagerPassword string `yaml:"manager_password"`

	DefaultRadiusMeters float64 `yaml:"default_radius_meters"`
}

// EnvPaths are the .env locations tried in order, the first existing one wins
var EnvPaths = []string{".env", "../.env", "../../.env"}

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		Port:                "8000",
		Env:                 "development",
		LogLevel:            "info",
		DataPath:            "shifts.db",
		MongoDatabase:       "healthcare",
		TokenTTL:            time.Hour,
		ManagerName:         "Manager",
		DefaultRadiusMeters: 2000,
	}
}

// Load reads .env, an optional YAML file named by CONFIG_FILE, then environment overrides
func Load() (Config, error) {
	for _, p := range EnvPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.Env, "APP_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.DataPath, "DATA_PATH")
	setString(&c.MongoURI, "MONGODB_URI")
	setString(&c.MongoDatabase, "MONGODB_DATABASE")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.ManagerName, "MANAGER_NAME")
	setString(&c.ManagerEmail, "MANAGER_EMAIL")
	setString(&c.ManagerPassword, "MANAGER_PASSWORD")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v := os.Getenv("DEFAULT_RADIUS_METERS"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DEFAULT_RADIUS_METERS: %w", err)
		}
		c.DefaultRadiusMeters = r
	}
	return nil
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.DefaultRadiusMeters <= 0 {
		return errors.New("default radius must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode
func (c Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// Secret returns the JWT signing secret, falling back to a fixed key in development
func (c Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte("development-secret")
	}
	return []byte(c.JWTSecret)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
