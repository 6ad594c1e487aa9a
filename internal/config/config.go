package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the paths and endpoints used by the daylight-sync binary.
type Config struct {
	// ThemeConfigPath is the terminal config file whose color anchor is rewritten.
	ThemeConfigPath string `yaml:"theme_config"`
	// StateFilePath is the file storing the last applied background directive.
	StateFilePath string `yaml:"state_file"`
	// InitFilePath is the editor init file. Accepted for compatibility, unused.
	InitFilePath string `yaml:"init_file"`
	// SocketGlob matches control sockets of running editor sessions.
	SocketGlob string `yaml:"socket_glob"`
	// GeolocationURL is the endpoint returning the caller's approximate position.
	GeolocationURL string `yaml:"geolocation_url"`
	// SolarURL is the endpoint returning sunrise and sunset times.
	SolarURL string `yaml:"solar_url"`
	// Timeout is the duration for network and per-session socket operations.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "daylight-sync-settings.yaml"

	// DefaultThemeConfigPath is where alacritty keeps its YAML config.
	DefaultThemeConfigPath = "~/.config/alacritty/alacritty.yml"

	// DefaultStateFilePath stores the last applied background directive.
	DefaultStateFilePath = "~/.daylight.vim"

	// DefaultInitFilePath is the editor init file accepted on the CLI.
	DefaultInitFilePath = "~/.config/nvim/init.vim"

	// DefaultSocketGlob matches control sockets of running nvim sessions.
	DefaultSocketGlob = "/tmp/nvim*/0"

	// DefaultGeolocationURL resolves the caller's position from network context.
	DefaultGeolocationURL = "https://ipinfo.io"

	// DefaultSolarURL reports sunrise and sunset for a coordinate.
	DefaultSolarURL = "https://api.sunrise-sunset.org/json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

// Environment variable names overriding individual settings.
const (
	envThemeConfig = "DAYLIGHT_SYNC_THEME_CONFIG"
	envStateFile   = "DAYLIGHT_SYNC_STATE_FILE"
	envSocketGlob  = "DAYLIGHT_SYNC_SOCKET_GLOB"
	envGeoURL      = "DAYLIGHT_SYNC_GEOLOCATION_URL"
	envSolarURL    = "DAYLIGHT_SYNC_SOLAR_URL"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errThemeConfigRequired is returned when the theme config path is empty.
	errThemeConfigRequired = errors.New("theme config path must be provided")
	// errStateFileRequired is returned when the state file path is empty.
	errStateFileRequired = errors.New("state file path must be provided")
)

// Default returns settings populated with built-in defaults,
// environment overrides applied on top.
func Default() *Config {
	cfg := &Config{
		ThemeConfigPath: DefaultThemeConfigPath,
		StateFilePath:   DefaultStateFilePath,
		InitFilePath:    DefaultInitFilePath,
		SocketGlob:      DefaultSocketGlob,
		GeolocationURL:  DefaultGeolocationURL,
		SolarURL:        DefaultSolarURL,
		Timeout:         DefaultTimeout,
	}

	applyEnvironment(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
// A missing settings file is not an error: the tool is fully usable with
// built-in defaults, so defaults are returned instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ThemeConfigPath == "" {
		return errThemeConfigRequired
	}

	if cfg.StateFilePath == "" {
		return errStateFileRequired
	}

	if cfg.SocketGlob == "" {
		cfg.SocketGlob = DefaultSocketGlob
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	for _, endpoint := range []string{cfg.GeolocationURL, cfg.SolarURL} {
		if endpoint == "" {
			continue
		}

		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf("invalid endpoint URI: %w", err)
		}
	}

	return nil
}

// ExpandPath resolves a leading "~" or "~/" in user-supplied paths
// against the current user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	if path != "~" && !strings.HasPrefix(path, "~/") {
		// Paths like "~other-user/file" are not supported.
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}

// applyEnvironment overrides individual settings from the process environment.
func applyEnvironment(cfg *Config) {
	overrides := map[string]*string{
		envThemeConfig: &cfg.ThemeConfigPath,
		envStateFile:   &cfg.StateFilePath,
		envSocketGlob:  &cfg.SocketGlob,
		envGeoURL:      &cfg.GeolocationURL,
		envSolarURL:    &cfg.SolarURL,
	}
	for name, target := range overrides {
		if value := os.Getenv(name); value != "" {
			*target = value
		}
	}
}
