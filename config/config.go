package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = "8080"
	DefaultUpstreamBaseURL = "https://ipt-apikey.vercel.app/api"
	DefaultAPIKeyEnv       = "MY_KEY"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string `yaml:"server_host"`
	ServerPort string `yaml:"server_port"`

	// Upstream recipe service
	UpstreamBaseURL string `yaml:"upstream_base_url"`
	// APIKeyEnv names the environment variable holding the upstream key.
	// The key itself is never stored in Config; see APIKey.
	APIKeyEnv string `yaml:"api_key_env"`

	// JWT configuration. Empty disables authentication on recipe routes.
	AuthJWTSecret string `yaml:"auth_jwt_secret"`

	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	LogLevel           string        `yaml:"log_level"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// NewDefaultConfig returns a Config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		ServerHost:      DefaultServerHost,
		ServerPort:      DefaultServerPort,
		UpstreamBaseURL: DefaultUpstreamBaseURL,
		APIKeyEnv:       DefaultAPIKeyEnv,
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://frontend:3000",
		},
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadConfig loads configuration using the file named by CONFIG_FILE, if any
func LoadConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load builds the configuration from defaults, an optional YAML file at path,
// Docker secrets and environment variables, in that order of precedence
// (later wins), then validates it.
func Load(path string) (*Config, error) {
	env := GetEnvironment()
	cfg := NewDefaultConfig()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// Load configuration based on environment
	switch env {
	case CI:
		loadEnvConfig(cfg)
	case Development, Test:
		loadSecretConfig(cfg)
		loadEnvConfig(cfg)
	case Production:
		// Docker secrets take precedence over the environment in production
		loadEnvConfig(cfg)
		loadSecretConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Address returns the listen address for the HTTP server
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// AuthEnabled reports whether recipe routes require a bearer token
func (c *Config) AuthEnabled() bool {
	return c.AuthJWTSecret != ""
}

// APIKey resolves the upstream API key. It is read on every call so a
// rotated key takes effect without a restart. Lookup order: the variable
// named by APIKeyEnv, a file named by <APIKeyEnv>_FILE, then the Docker
// secret with the lower-cased variable name.
func (c *Config) APIKey() string {
	name := c.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	if v := os.Getenv(name); v != "" {
		return v
	}
	if path := os.Getenv(name + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return readSecret(strings.ToLower(name))
}

func loadFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(content))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// loadEnvConfig overrides cfg with any non-empty environment variables
func loadEnvConfig(cfg *Config) {
	setString(&cfg.ServerHost, os.Getenv("SERVER_HOST"))
	setString(&cfg.ServerPort, os.Getenv("SERVER_PORT"))
	setString(&cfg.UpstreamBaseURL, os.Getenv("UPSTREAM_BASE_URL"))
	setString(&cfg.APIKeyEnv, os.Getenv("API_KEY_ENV"))
	setString(&cfg.AuthJWTSecret, os.Getenv("AUTH_JWT_SECRET"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}
	if timeout := os.Getenv("SHUTDOWN_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
}

// loadSecretConfig overrides cfg with any Docker secrets that are present
func loadSecretConfig(cfg *Config) {
	setString(&cfg.ServerHost, readSecret("server_host"))
	setString(&cfg.ServerPort, readSecret("server_port"))
	setString(&cfg.UpstreamBaseURL, readSecret("upstream_base_url"))
	setString(&cfg.AuthJWTSecret, readSecret("auth_jwt_secret"))
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
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

// secretsDir returns the Docker secrets directory
func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretPath := filepath.Join(secretsDir(), name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
