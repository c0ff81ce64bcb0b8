package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Security modes accepted for the IMAP connection.
const (
	SecurityTLS      = "tls"
	SecurityStartTLS = "starttls"
)

// envPrefix is prepended to every configuration key when reading
// overrides from the environment (e.g. NEWS_ARCHIVE_HOSTNAME).
const envPrefix = "news_archive"

// configKeys lists every key that may be supplied through the environment.
var configKeys = []string{
	"hostname",
	"port",
	"user",
	"password",
	"from_mailbox",
	"to_mailbox",
	"max_age_days",
	"security",
	"tls_skip_verify",
	"skip_deleted",
	"log_level",
}

// ArchiveConfig holds the connection and policy parameters for one
// archival pass. It is immutable once loaded.
type ArchiveConfig struct {
	// Hostname is the IMAP server host.
	Hostname string `mapstructure:"hostname" yaml:"hostname"`

	// Port is the IMAP server port.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the login name on the IMAP server.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the login password. When empty it is looked up in the
	// system keyring under User.
	Password string `mapstructure:"password" yaml:"password"`

	// FromMailbox is the folder messages are archived from.
	FromMailbox string `mapstructure:"from_mailbox" yaml:"from_mailbox"`

	// ToMailbox is the folder messages are copied to.
	ToMailbox string `mapstructure:"to_mailbox" yaml:"to_mailbox"`

	// MaxAgeDays is the age, in calendar days, after which a message is
	// archived.
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days"`

	// Security selects implicit TLS ("tls") or STARTTLS ("starttls").
	Security string `mapstructure:"security" yaml:"security"`

	// TLSSkipVerify disables server certificate verification.
	TLSSkipVerify bool `mapstructure:"tls_skip_verify" yaml:"tls_skip_verify"`

	// SkipDeleted excludes messages already flagged \Deleted from the
	// search, so an unexpunged source folder is not copied twice.
	SkipDeleted bool `mapstructure:"skip_deleted" yaml:"skip_deleted"`

	// LogLevel is a logrus level name.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Address returns the host:port pair to dial.
func (c *ArchiveConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}

// Validate reports the first configuration problem found, if any.
func (c *ArchiveConfig) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Hostname) == "" {
		problems = append(problems, "hostname is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("port %d out of range", c.Port))
	}
	if strings.TrimSpace(c.User) == "" {
		problems = append(problems, "user is required")
	}
	if strings.TrimSpace(c.FromMailbox) == "" {
		problems = append(problems, "from_mailbox is required")
	}
	if strings.TrimSpace(c.ToMailbox) == "" {
		problems = append(problems, "to_mailbox is required")
	}
	if c.FromMailbox != "" && c.FromMailbox == c.ToMailbox {
		problems = append(problems, "from_mailbox and to_mailbox must differ")
	}
	if c.MaxAgeDays < 0 {
		problems = append(problems, fmt.Sprintf("max_age_days %d is negative", c.MaxAgeDays))
	}
	switch c.Security {
	case SecurityTLS, SecurityStartTLS:
	default:
		problems = append(problems, fmt.Sprintf("unknown security mode %q", c.Security))
	}

	if len(problems) == 0 {
		return nil
	}
	return &ConfigError{Problems: problems}
}

// ConfigError lists everything wrong with a loaded configuration.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Kind names the error category for failure notifications.
func (e *ConfigError) Kind() string {
	return "ConfigError"
}

// IsConfigError reports whether err (or any error in its chain) is a
// ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// DefaultConfigPath returns the configuration file path. NEWS_ARCHIVE_CONFIG
// takes precedence over ~/.config/news_archive/config.yaml.
func DefaultConfigPath() string {
	if p := os.Getenv("NEWS_ARCHIVE_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "news_archive", "config.yaml")
}

// defaultArchiveConfig returns the configuration used for unset keys.
func defaultArchiveConfig() *ArchiveConfig {
	return &ArchiveConfig{
		Port:        993,
		FromMailbox: "INBOX",
		MaxAgeDays:  30,
		Security:    SecurityTLS,
		SkipDeleted: true,
		LogLevel:    "warn",
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// then applies NEWS_ARCHIVE_* environment overrides. A missing file is not
// an error; the result is validated either way.
func LoadConfig(path string) (*ArchiveConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)

	def := defaultArchiveConfig()
	v.SetDefault("port", def.Port)
	v.SetDefault("from_mailbox", def.FromMailbox)
	v.SetDefault("max_age_days", def.MaxAgeDays)
	v.SetDefault("security", def.Security)
	v.SetDefault("skip_deleted", def.SkipDeleted)
	v.SetDefault("log_level", def.LogLevel)

	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultArchiveConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Security = strings.ToLower(strings.TrimSpace(cfg.Security))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
