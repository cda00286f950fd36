package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name created under the home directory.
const FileName = ".lacos.yaml"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	DeepLink DeepLinkConfig `yaml:"deeplink" mapstructure:"deeplink"`
	Routing  RoutingConfig  `yaml:"routing" mapstructure:"routing"`
	Format   FormatConfig   `yaml:"format" mapstructure:"format"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Locale   string         `yaml:"locale" mapstructure:"locale"`
}

// ServerConfig contains backend connection settings
type ServerConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
}

// StorageConfig selects the persistent key-value backend.
type StorageConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	Path          string `yaml:"path" mapstructure:"path"`
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`
}

// DeepLinkConfig contains the deep-link eligibility rules.
type DeepLinkConfig struct {
	Scheme       string   `yaml:"scheme" mapstructure:"scheme"`
	Hosts        []string `yaml:"hosts" mapstructure:"hosts"`
	DevPrefixes  []string `yaml:"dev_prefixes" mapstructure:"dev_prefixes"`
	ShareBaseURL string   `yaml:"share_base_url" mapstructure:"share_base_url"`
}

// RoutingConfig contains navigation reconciliation timings.
type RoutingConfig struct {
	ResetDelay    string `yaml:"reset_delay" mapstructure:"reset_delay"`
	DrainAttempts int    `yaml:"drain_attempts" mapstructure:"drain_attempts"`
	DrainInterval string `yaml:"drain_interval" mapstructure:"drain_interval"`
}

// FormatConfig contains output formatting settings
type FormatConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
	Colors  bool   `yaml:"colors" mapstructure:"colors"`
}

// LogConfig contains structured logging settings.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

var (
	v            *viper.Viper
	globalConfig *Config
	debug        bool
	outputFormat string
)

// Initialize loads the configuration from file. A missing file is created
// with defaults.
func Initialize(configFile string) error {
	v = viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get home directory: %w", err)
		}

		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
	}

	v.SetEnvPrefix("LACOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createDefaultConfig(); err != nil {
				return fmt.Errorf("could not create default config: %w", err)
			}
		} else if configFile != "" && os.IsNotExist(err) {
			if err := writeConfig(configFile, Default()); err != nil {
				return fmt.Errorf("could not create default config: %w", err)
			}
		} else {
			return fmt.Errorf("could not read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}
	globalConfig = cfg

	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:     "https://gateway.lacosapp.com/api",
			Timeout: "30s",
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   defaultStoragePath("session.yaml"),
		},
		DeepLink: DeepLinkConfig{
			Scheme:       "lacos",
			Hosts:        []string{"lacosapp.com", "lacos.com", "gateway.lacosapp.com", "localhost"},
			DevPrefixes:  []string{"exp://", "exps://", "exp+"},
			ShareBaseURL: "https://lacosapp.com/grupo/",
		},
		Routing: RoutingConfig{
			ResetDelay:    "300ms",
			DrainAttempts: 10,
			DrainInterval: "500ms",
		},
		Format: FormatConfig{
			Default: "table",
			Colors:  true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Locale: "pt-BR",
	}
}

// setDefaults mirrors Default into viper so env overrides work for every key.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.url", d.Server.URL)
	v.SetDefault("server.timeout", d.Server.Timeout)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.encryption_key", "")
	v.SetDefault("deeplink.scheme", d.DeepLink.Scheme)
	v.SetDefault("deeplink.hosts", d.DeepLink.Hosts)
	v.SetDefault("deeplink.dev_prefixes", d.DeepLink.DevPrefixes)
	v.SetDefault("deeplink.share_base_url", d.DeepLink.ShareBaseURL)
	v.SetDefault("routing.reset_delay", d.Routing.ResetDelay)
	v.SetDefault("routing.drain_attempts", d.Routing.DrainAttempts)
	v.SetDefault("routing.drain_interval", d.Routing.DrainInterval)
	v.SetDefault("format.default", d.Format.Default)
	v.SetDefault("format.colors", d.Format.Colors)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("locale", d.Locale)
}

func defaultStoragePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lacos", name)
	}
	return filepath.Join(home, ".lacos", name)
}

// createDefaultConfig creates a default configuration file in the home directory
func createDefaultConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return writeConfig(filepath.Join(home, FileName), Default())
}

func writeConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		d := Default()
		globalConfig = &d
	}
	return globalConfig
}

// Path returns the file the configuration was read from, if any.
func Path() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// Save writes the current configuration back to its file.
func Save() error {
	if globalConfig == nil {
		return fmt.Errorf("no configuration to save")
	}

	path := Path()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, FileName)
	}

	return writeConfig(path, *globalConfig)
}

// SetDebug sets the debug mode
func SetDebug(enabled bool) {
	debug = enabled
}

// IsDebug returns whether debug mode is enabled
func IsDebug() bool {
	return debug
}

// SetOutputFormat sets the output format
func SetOutputFormat(format string) {
	outputFormat = format
}

// GetOutputFormat returns the current output format
func GetOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if globalConfig != nil && globalConfig.Format.Default != "" {
		return globalConfig.Format.Default
	}
	return "table"
}

// TimeoutDuration returns the HTTP timeout, falling back to 30s.
func (s ServerConfig) TimeoutDuration() time.Duration {
	return parseDuration(s.Timeout, 30*time.Second)
}

// ResetDelayDuration returns the delay before a forced navigation reset.
func (r RoutingConfig) ResetDelayDuration() time.Duration {
	return parseDuration(r.ResetDelay, 300*time.Millisecond)
}

// DrainIntervalDuration returns the wait between invitation delivery attempts.
func (r RoutingConfig) DrainIntervalDuration() time.Duration {
	return parseDuration(r.DrainInterval, 500*time.Millisecond)
}

// Attempts returns the capped number of invitation delivery attempts.
func (r RoutingConfig) Attempts() int {
	if r.DrainAttempts <= 0 {
		return 10
	}
	return r.DrainAttempts
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
