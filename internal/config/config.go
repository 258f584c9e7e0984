// Package config loads the WebForge configuration file and process environment.
package config

import (
	"os"
	"strings"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/site"
)

// CurrentVersion is the only configuration file version this build understands.
const CurrentVersion = "1.0"

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "webforge.yaml"

// Config represents the WebForge configuration file plus credentials read from the environment.
type Config struct {
	Version   string          `yaml:"version"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Site      SiteConfig      `yaml:"site"`
	Billing   BillingConfig   `yaml:"billing"`
	Server    ServerConfig    `yaml:"server"`
	Events    EventsConfig    `yaml:"events"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Credentials are never read from or written to the YAML file.
	Credentials Credentials `yaml:"-"`
}

// WorkspaceConfig controls where client workspaces live and how they are named.
type WorkspaceConfig struct {
	Root         string `yaml:"root"`          // Parent directory of all client workspaces
	DigestLength int    `yaml:"digest_length"` // Hex characters of the SHA-256 digest used as directory name
}

// SiteConfig controls the generated artifact.
type SiteConfig struct {
	Title    string `yaml:"title"`
	Filename string `yaml:"filename"`
}

// BillingConfig controls invoice creation.
type BillingConfig struct {
	Currency string `yaml:"currency"`
}

// ServerConfig controls the HTTP order intake.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// EventsConfig controls the durable event log. An empty path disables it.
type EventsConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig controls NATS event fan-out. An empty URL disables it.
// Retry fields are defaulted together when retry_backoff is absent.
type NotifyConfig struct {
	NATSURL           string           `yaml:"nats_url"`
	Subject           string           `yaml:"subject"`
	MaxRetries        int              `yaml:"max_retries"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff"`
	RetryInitialDelay string           `yaml:"retry_initial_delay"`
	RetryMaxDelay     string           `yaml:"retry_max_delay"`
}

// LoggingConfig controls the slog handler installed by the CLI.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns a configuration with every field set to its default value.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	applyDefaults(cfg)
	return cfg
}

// Load reads configPath, expands ${VAR} references, applies defaults and
// loads credentials from the environment. A missing file is an error.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.ConfigError("failed to read configuration file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	cfg.Credentials = CredentialsFromEnv()
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when configPath does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		loadEnvFiles()
		cfg := Default()
		cfg.Credentials = CredentialsFromEnv()
		return cfg, nil
	}
	return Load(configPath)
}

// Parse decodes YAML configuration content, applies defaults and validates it.
// It does not touch the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.ConfigError("failed to parse configuration").WithCause(err).Build()
	}
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Version != CurrentVersion {
		return nil, errors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes the default configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.InternalError("failed to marshal default configuration").WithCause(err).Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.ConfigError("failed to write configuration file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// BackendConfigured reports whether the backend URL/key pair was supplied.
func (c *Config) BackendConfigured() bool {
	return c.Credentials.BackendURL != "" && c.Credentials.BackendServiceKey != ""
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Workspace.Root) == "" {
		cfg.Workspace.Root = "clients"
	}
	if cfg.Workspace.DigestLength == 0 {
		cfg.Workspace.DigestLength = 16
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Site generated by WebForge AI"
	}
	if cfg.Site.Filename == "" {
		cfg.Site.Filename = "index.html"
	}
	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = "EUR"
	}
	cfg.Billing.Currency = strings.ToUpper(cfg.Billing.Currency)
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = "/metrics"
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "webforge.orders"
	}
	applyRetryDefaults(&cfg.Notify)
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}

func validate(cfg *Config) error {
	if cfg.Workspace.DigestLength < 16 || cfg.Workspace.DigestLength > 64 {
		return errors.ConfigError("workspace.digest_length must be between 16 and 64").
			WithContext("digest_length", cfg.Workspace.DigestLength).
			Build()
	}
	if !site.IsPlainFilename(cfg.Site.Filename) {
		return errors.ConfigError("site.filename must be a plain file name").
			WithContext("filename", cfg.Site.Filename).
			Build()
	}
	if _, err := currency.ParseISO(cfg.Billing.Currency); err != nil {
		return errors.ConfigError("billing.currency must be an ISO 4217 code").
			WithCause(err).
			WithContext("currency", cfg.Billing.Currency).
			Build()
	}
	if !strings.HasPrefix(cfg.Server.MetricsPath, "/") {
		return errors.ConfigError("server.metrics_path must start with '/'").
			WithContext("metrics_path", cfg.Server.MetricsPath).
			Build()
	}
	return validateRetry(cfg.Notify)
}
