package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Alijeyrad/sapan_backend/pkg/constants"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	// A .env next to the config file seeds the process environment; real env
	// vars win because godotenv.Load never overrides.
	if err := godotenv.Load(filepath.Join(configPath, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// Allow env vars to override config values.
	// e.g. SAPAN_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read the config file (optional in Docker environments)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

// setDefaults registers every key AutomaticEnv must know about; viper only
// resolves env overrides for keys it has seen.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "sapan")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations.auto_migrate", false)
	v.SetDefault("casbin_database.host", "localhost")
	v.SetDefault("casbin_database.port", 5432)
	v.SetDefault("casbin_database.user", "postgres")
	v.SetDefault("casbin_database.password", "")
	v.SetDefault("casbin_database.dbname", "sapan_casbin")
	v.SetDefault("casbin_database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", constants.EnvDevelopment)
	v.SetDefault("server.frontend_url", "http://localhost:3000")
	v.SetDefault("server.rate_limit.max", 20)
	v.SetDefault("server.rate_limit.expiration_seconds", 30)

	v.SetDefault("authentication.paseto.mode", "local")
	v.SetDefault("authentication.paseto.local_key_hex", "")
	v.SetDefault("authentication.paseto.issuer", "sapan")
	v.SetDefault("authentication.paseto.audience", "sapan-web")
	v.SetDefault("authentication.paseto.access_ttl_minutes", 15)
	v.SetDefault("authentication.paseto.refresh_ttl_days", 30)
	v.SetDefault("authentication.encryption_key", "")
	v.SetDefault("authentication.dev_login", false)
	v.SetDefault("authentication.oauth_state_ttl_minutes", 10)

	v.SetDefault("authorization.casbin_model_path", "casbin_model.conf")
	v.SetDefault("authorization.enable_audit", true)
	v.SetDefault("authorization.superadmin_bypass", true)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.from", "noreply@sapan.io")
	v.SetDefault("email.from_name", "Sapan")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.timeout_seconds", 10)

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.calendar_timeout_seconds", 10)

	v.SetDefault("booking.default_timezone", "Asia/Bangkok")
	v.SetDefault("booking.default_window_days", 14)
	v.SetDefault("booking.max_window_days", 60)
	v.SetDefault("booking.meet_link_base", "https://meet.google.com/")
	v.SetDefault("booking.reminder_lead_hours", 24)

	v.SetDefault("password.algorithm", "argon2id")

	v.SetDefault("observability.service_name", constants.AppName)
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output.stdout", true)

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", constants.AppName)

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.presign_ttl_sec", 300)
}
