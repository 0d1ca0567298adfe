package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// minJWTSecretLength applies to a configured secret in production
const minJWTSecretLength = 32

// ValidateConfig checks the configuration for the current environment
func ValidateConfig(cfg *Config) error {
	return cfg.Validate()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, is.Port),
		validation.Field(&c.UpstreamBaseURL, validation.Required, is.RequestURL),
		validation.Field(&c.APIKeyEnv, validation.Required),
		validation.Field(&c.AuthJWTSecret,
			validation.When(GetEnvironment() == Production && c.AuthJWTSecret != "",
				validation.Length(minJWTSecretLength, 0))),
		validation.Field(&c.CORSAllowedOrigins, validation.Each(is.RequestURL)),
		validation.Field(&c.LogLevel, validation.By(validLogLevel)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(c.UpstreamBaseURL, "http://") && !strings.HasPrefix(c.UpstreamBaseURL, "https://") {
		return fmt.Errorf("upstream_base_url must use http/https: %s", c.UpstreamBaseURL)
	}
	return nil
}

func validLogLevel(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}
