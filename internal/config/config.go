// Package config manages persistent CLI configuration stored in ~/.config/lp/config.yaml.
// It provides read/write/list operations and masks secrets in output.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Known configuration keys.
const (
	KeyAccountID         = "account_id"
	KeyUsername          = "username"
	KeyPassword          = "password"
	KeyAppKey            = "app_key"
	KeyAppSecret         = "app_secret"
	KeyAccessToken       = "access_token"
	KeyAccessTokenSecret = "access_token_secret"
	KeyMaxConcurrency    = "max_concurrency"
	KeyTimeout           = "timeout"
	KeyDataAccessDomain  = "data_access_domain"
)

// sensitiveKeys are masked in list output.
var sensitiveKeys = map[string]bool{
	KeyPassword:          true,
	KeyAppSecret:         true,
	KeyAccessToken:       true,
	KeyAccessTokenSecret: true,
}

// knownKeys defines the valid configuration keys and their descriptions.
var knownKeys = map[string]string{
	KeyAccountID:         "Account (site) ID",
	KeyUsername:          "Login service username",
	KeyPassword:          "Login service password",
	KeyAppKey:            "OAuth1 consumer key",
	KeyAppSecret:         "OAuth1 consumer secret",
	KeyAccessToken:       "OAuth1 access token",
	KeyAccessTokenSecret: "OAuth1 access token secret",
	KeyMaxConcurrency:    "Parallel page requests for --all searches",
	KeyTimeout:           "Per-request timeout (e.g. 2m)",
	KeyDataAccessDomain:  "Data Access domain override",
}

// Config wraps viper to manage lp configuration.
type Config struct {
	v        *viper.Viper
	filePath string
}

// New creates a Config that reads from ~/.config/lp/config.yaml.
// It creates the config directory if it does not exist.
func New() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	return NewAt(filepath.Join(home, ".config", "lp"))
}

// NewAt creates a Config backed by config.yaml inside dir.
func NewAt(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	filePath := filepath.Join(dir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetConfigType("yaml")

	// Read existing config; ignore file-not-found since we create on first write.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	return &Config{v: v, filePath: filePath}, nil
}

// Get returns the value for a configuration key.
func (c *Config) Get(key string) string {
	return c.v.GetString(key)
}

// Set validates a configuration key-value pair and persists it to disk.
func (c *Config) Set(key, value string) error {
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(KnownKeyNames(), ", "))
	}
	if err := validate(key, value); err != nil {
		return err
	}

	c.v.Set(key, value)
	return c.write()
}

func validate(key, value string) error {
	switch key {
	case KeyAccountID:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("account_id must not be empty")
		}
	case KeyMaxConcurrency:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid max_concurrency %q; must be a positive integer", value)
		}
	case KeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q; must be a positive duration such as 90s or 2m", value)
		}
	}
	return nil
}

// List returns all set configuration entries as key-value pairs.
// Sensitive values are masked.
func (c *Config) List() []Entry {
	var entries []Entry
	for _, key := range KnownKeyNames() {
		val := c.v.GetString(key)
		if val == "" {
			continue
		}
		if sensitiveKeys[key] {
			val = mask(val)
		}
		entries = append(entries, Entry{Key: key, Value: val})
	}
	return entries
}

// Entry is a single configuration key-value pair.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KnownKeyNames returns the known key names in display order.
func KnownKeyNames() []string {
	return []string{
		KeyAccountID, KeyUsername, KeyPassword,
		KeyAppKey, KeyAppSecret, KeyAccessToken, KeyAccessTokenSecret,
		KeyMaxConcurrency, KeyTimeout, KeyDataAccessDomain,
	}
}

// Describe returns the help text of a known key.
func Describe(key string) string {
	return knownKeys[key]
}

// FilePath returns the path to the configuration file.
func (c *Config) FilePath() string {
	return c.filePath
}

func (c *Config) write() error {
	return c.v.WriteConfigAs(c.filePath)
}

// mask shows the first 4 characters followed by "****".
func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
