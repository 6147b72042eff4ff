package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Alijeyrad/sapan_backend/pkg/constants"
)

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Server.Environment {
	case constants.EnvDevelopment, constants.EnvStaging, constants.EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("server.environment %q is not one of development, staging, production", c.Server.Environment))
	}

	if c.Google.ClientID != "" && c.Google.ClientSecret == "" {
		errs = append(errs, errors.New("google.client_secret is required when google.client_id is set"))
	}

	if k := c.Authentication.EncryptionKey; k != "" {
		if b, err := hex.DecodeString(k); err != nil || len(b) != 32 {
			errs = append(errs, errors.New("authentication.encryption_key must be 64 hex characters"))
		}
	}

	if _, err := time.LoadLocation(c.Booking.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Errorf("booking.default_timezone: %w", err))
	}
	if c.Booking.DefaultWindowDays < 0 || c.Booking.DefaultWindowDays > c.Booking.MaxWindowDays {
		errs = append(errs, fmt.Errorf("booking.default_window_days must be within [0, %d]", c.Booking.MaxWindowDays))
	}

	if c.IsProduction() && c.Authentication.DevLogin {
		errs = append(errs, errors.New("authentication.dev_login cannot be enabled in production"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == constants.EnvProduction
}
