// Package config provides layered configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTimeout applies to every HTTP request the client makes.
	DefaultTimeout = 30 * time.Second

	configFileName = "config.yaml"
	appDirName     = "moviepilot"
)

// Config holds the resolved configuration.
type Config struct {
	// ServerURL is the default server for `auth login` and the fallback base
	// URL for API-token calls. Session calls always use the stored session.
	ServerURL string `yaml:"server_url" validate:"omitempty,url"`
	// APIToken authenticates the API-token ("...2") endpoint variants.
	APIToken string `yaml:"api_token"`
	// Username is the default login name.
	Username string `yaml:"username"`

	Timeout         time.Duration `yaml:"timeout" validate:"gt=0"`
	CredentialStore string        `yaml:"credential_store" validate:"oneof=auto keyring file"`

	// Output settings
	Format    string `yaml:"format" validate:"oneof=auto json markdown md styled quiet"`
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`

	// Behavior preferences (persisted via config set, overridable by flags)
	Stats   *bool `yaml:"stats,omitempty"`
	Verbose *int  `yaml:"verbose,omitempty" validate:"omitempty,min=0,max=2"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `yaml:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceSystem  Source = "system"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	Format string
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"server_url", "api_token", "username", "timeout", "credential_store",
	"format", "log_format", "stats", "verbose",
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		CredentialStore: "auto",
		Format:          "auto",
		LogFormat:       "console",
		Sources:         make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > local > global > system > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, systemConfigPath(), SourceSystem)
	loadFromFile(cfg, GlobalConfigPath(), SourceGlobal)
	loadFromFile(cfg, localConfigPath(), SourceLocal)

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and reports every violation.
func (cfg *Config) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s)", yamlName(fe.StructField()), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func yamlName(field string) string {
	switch field {
	case "ServerURL":
		return "server_url"
	case "APIToken":
		return "api_token"
	case "CredentialStore":
		return "credential_store"
	case "LogFormat":
		return "log_format"
	default:
		return strings.ToLower(field)
	}
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	for key, raw := range fileCfg {
		if raw == nil {
			continue
		}
		// server_url decides where credentials are sent and api_token is a
		// credential: neither is accepted from a directory-local file.
		if source == SourceLocal && (key == "server_url" || key == "api_token") {
			fmt.Fprintf(os.Stderr, "warning: ignoring %s from local config at %s (not trusted from local config)\n", key, path)
			continue
		}
		if err := cfg.set(key, fmt.Sprint(raw)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s in %s: %v\n", key, path, err)
			continue
		}
		cfg.Sources[key] = string(source)
	}
}

// set assigns a single key from its string form.
func (cfg *Config) set(key, value string) error {
	switch key {
	case "server_url":
		cfg.ServerURL = NormalizeServerURL(value)
	case "api_token":
		cfg.APIToken = value
	case "username":
		cfg.Username = value
	case "timeout":
		d, err := parseTimeout(value)
		if err != nil {
			return err
		}
		cfg.Timeout = d
	case "credential_store":
		cfg.CredentialStore = value
	case "format":
		cfg.Format = value
	case "log_format":
		cfg.LogFormat = value
	case "stats":
		b, ok := parseBool(value)
		if !ok {
			return fmt.Errorf("not a boolean: %q", value)
		}
		cfg.Stats = &b
	case "verbose":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 2 {
			return fmt.Errorf("verbose must be 0, 1 or 2")
		}
		cfg.Verbose = &n
	default:
		return fmt.Errorf("unknown key")
	}
	return nil
}

// parseTimeout accepts Go durations ("45s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", v)
	}
	return d, nil
}

// parseBool parses a boolean strictly.
// Returns (value, true) for recognized values, (false, false) for unrecognized.
func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"MP_SERVER_URL":       "server_url",
	"MP_API_TOKEN":        "api_token",
	"MP_USERNAME":         "username",
	"MP_TIMEOUT":          "timeout",
	"MP_CREDENTIAL_STORE": "credential_store",
	"MP_FORMAT":           "format",
	"MP_LOG_FORMAT":       "log_format",
	"MP_STATS":            "stats",
}

// LoadFromEnv loads configuration from environment variables.
// Unparseable values are ignored.
func LoadFromEnv(cfg *Config) {
	names := make([]string, 0, len(envKeys))
	for name := range envKeys {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		key := envKeys[name]
		if err := cfg.set(key, v); err != nil {
			continue
		}
		cfg.Sources[key] = string(SourceEnv)
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}

// SetGlobal persists key=value into the global config file, preserving the
// other keys already present.
func SetGlobal(key, value string) (string, error) {
	probe := Default()
	if err := probe.set(key, value); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	if err := probe.Validate(); err != nil {
		return "", err
	}

	path := GlobalConfigPath()
	existing := map[string]any{}
	if data, err := os.ReadFile(path); err == nil { //nolint:gosec // G304: fixed config location
		if err := yaml.Unmarshal(data, &existing); err != nil {
			return "", fmt.Errorf("existing config at %s is malformed: %w", path, err)
		}
		if existing == nil {
			existing = map[string]any{}
		}
	}
	existing[key] = value
	if key == "server_url" {
		existing[key] = probe.ServerURL
	}

	out, err := yaml.Marshal(existing)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, out, 0600); err != nil {
		return "", err
	}
	return path, nil
}

// writeFileAtomic writes via a temp file and rename so readers never see a
// partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.yaml.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Path helpers

func systemConfigPath() string {
	return filepath.Join("/etc", appDirName, configFileName)
}

// GlobalConfigPath returns the per-user config file path.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), configFileName)
}

// localConfigPath returns ./.moviepilot/config.yaml in the working directory.
func localConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "."+appDirName, configFileName)
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appDirName)
}

// NormalizeServerURL strips one trailing slash; a stored server URL never
// ends with "/".
func NormalizeServerURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
