// Package config assembles the service configuration from, in order of
// increasing priority: built-in defaults, a JSON config file, environment
// variables, and CLI flags.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime knob of the service. Durations are
// configurable via environment variables and flags only; the JSON file
// carries the string fields.
type Config struct {
	RunAddr                string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	LogLevel               string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	Environment            string        `env:"APP_ENV" json:"environment" validate:"oneof=development production"`
	AuthCookieName         string        `env:"AUTH_COOKIE_NAME" json:"auth_cookie_name" validate:"required"`
	AdminUsername          string        `env:"ADMIN_USERNAME" json:"admin_username" validate:"required"`
	AdminPassword          string        `env:"ADMIN_PASSWORD" json:"admin_password" validate:"required"`
	TrustedSubnet          string        `env:"TRUSTED_SUBNET" json:"trusted_subnet" validate:"omitempty,cidr"`
	SessionTTL             time.Duration `env:"SESSION_TTL" json:"-"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" json:"-"`
}

// IsProduction reports whether the secure cookie flag must be set.
func (cfg *Config) IsProduction() bool {
	return cfg.Environment == "production"
}

var defaultConfig = Config{
	RunAddr:                ":8080",
	LogLevel:               "info",
	Environment:            "development",
	AuthCookieName:         "sessionId",
	AdminUsername:          "admin",
	AdminPassword:          "admin123",
	SessionTTL:             24 * time.Hour,
	SessionCleanupInterval: time.Minute,
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func (cfg *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(cfg)
}

func applyDefaults(cfg *Config, defaults Config) {
	if cfg.RunAddr == "" {
		cfg.RunAddr = defaults.RunAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Environment == "" {
		cfg.Environment = defaults.Environment
	}
	if cfg.AuthCookieName == "" {
		cfg.AuthCookieName = defaults.AuthCookieName
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = defaults.AdminUsername
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = defaults.AdminPassword
	}
	if cfg.TrustedSubnet == "" {
		cfg.TrustedSubnet = defaults.TrustedSubnet
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaults.SessionTTL
	}
	if cfg.SessionCleanupInterval == 0 {
		cfg.SessionCleanupInterval = defaults.SessionCleanupInterval
	}
}

// applyOverrides copies every non-zero field of src over dst.
func applyOverrides(dst *Config, src Config) {
	if src.RunAddr != "" {
		dst.RunAddr = src.RunAddr
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Environment != "" {
		dst.Environment = src.Environment
	}
	if src.AuthCookieName != "" {
		dst.AuthCookieName = src.AuthCookieName
	}
	if src.AdminUsername != "" {
		dst.AdminUsername = src.AdminUsername
	}
	if src.AdminPassword != "" {
		dst.AdminPassword = src.AdminPassword
	}
	if src.TrustedSubnet != "" {
		dst.TrustedSubnet = src.TrustedSubnet
	}
	if src.SessionTTL != 0 {
		dst.SessionTTL = src.SessionTTL
	}
	if src.SessionCleanupInterval != 0 {
		dst.SessionCleanupInterval = src.SessionCleanupInterval
	}
}

func readJSONConfig(path string) (Config, error) {
	var fromJSON Config
	if path == "" {
		return fromJSON, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fromJSON, err
	}
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		return fromJSON, err
	}

	return fromJSON, nil
}

// InitOption customizes the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables CLI flag parsing, which tests need
// to keep the test binary's own flags intact.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds the configuration. Priority: CLI > ENV > JSON > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	var fromFlags Config
	configFilePath := os.Getenv("CONFIG")
	if !options.disableFlagsParsing {
		fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
		fs.StringVar(&fromFlags.RunAddr, "a", "", "address and port to run server")
		fs.StringVar(&fromFlags.LogLevel, "l", "", "logger level")
		fs.StringVar(&fromFlags.Environment, "e", "", "environment (development or production)")
		fs.StringVar(&fromFlags.TrustedSubnet, "t", "", "trusted subnet for internal endpoints, CIDR notation")
		fs.DurationVar(&fromFlags.SessionTTL, "s", 0, "session time-to-live")
		fs.StringVar(&configFilePath, "c", configFilePath, "path to JSON config file")
		if err := fs.Parse(os.Args[1:]); err != nil {
			return nil, err
		}
	}

	fromJSON, err := readJSONConfig(configFilePath)
	if err != nil {
		return nil, err
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, err
	}

	values := Config{}
	applyDefaults(&values, defaultConfig)
	applyOverrides(&values, fromJSON)
	applyOverrides(&values, fromEnv)
	applyOverrides(&values, fromFlags)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}
