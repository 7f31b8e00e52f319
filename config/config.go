// Package config loads the service credentials from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/csmith/backscrobble/timeline"
)

const (
	appName        = "backscrobble"
	configFileName = "config.toml"
)

var (
	// ErrNotFound is returned when no config file exists in any searched location
	ErrNotFound = errors.New("config file not found")
	// ErrMissingSection is returned when a required section is absent
	ErrMissingSection = errors.New("required section not found in config")
)

var requiredSections = []string{"lastfm_user", "api_keys"}

// Config is the parsed contents of the config file
type Config struct {
	LastfmUser   LastfmUserConfig   `koanf:"lastfm_user"`
	APIKeys      APIKeysConfig      `koanf:"api_keys"`
	ListenBrainz ListenBrainzConfig `koanf:"listenbrainz"`
	Subsonic     SubsonicConfig     `koanf:"subsonic"`
	Scrobble     ScrobbleConfig     `koanf:"scrobble"`
}

// LastfmUserConfig holds the account scrobbles are submitted as
type LastfmUserConfig struct {
	Username string `koanf:"username" validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

// APIKeysConfig holds the application credentials for Discogs and Last.fm
type APIKeysConfig struct {
	DiscogsAppToken string `koanf:"discogs_app_token" validate:"required"`
	LastfmAppKey    string `koanf:"lastfm_app_key" validate:"required"`
	LastfmAppSecret string `koanf:"lastfm_app_secret" validate:"required"`
}

// ListenBrainzConfig enables the ListenBrainz destination when a token is set
type ListenBrainzConfig struct {
	Token string `koanf:"token"`
}

// SubsonicConfig enables the Subsonic release source when a URL is set
type SubsonicConfig struct {
	URL      string `koanf:"url" validate:"omitempty,url"`
	Username string `koanf:"username" validate:"required_with=URL"`
	Password string `koanf:"password"`
}

// ScrobbleConfig tunes how backfills are computed
type ScrobbleConfig struct {
	FallbackDuration int `koanf:"fallback_duration" validate:"gte=1"` // seconds
}

// Path returns the config file to use: explicit if given, otherwise the
// first of $XDG_CONFIG_HOME/backscrobble/config.toml (and the other XDG
// config dirs) or ./config.toml that exists
func Path(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if path, err := xdg.SearchConfigFile(appName + "/" + configFileName); err == nil {
		return path, nil
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	return "", ErrNotFound
}

// Load reads and validates the config file at path
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	for _, section := range requiredSections {
		if !k.Exists(section) {
			return nil, fmt.Errorf("%w: [%s]", ErrMissingSection, section)
		}
	}

	cfg := &Config{
		Scrobble: ScrobbleConfig{FallbackDuration: timeline.FallbackSeconds},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.Subsonic.URL = strings.TrimSuffix(cfg.Subsonic.URL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every required value is present
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("koanf"), ",", 2)[0]
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate config: %w", err)
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required", "required_with":
			problems = append(problems, fmt.Sprintf("%s is empty", key))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid (%s)", key, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, ", "))
}

// HasListenBrainz returns true if ListenBrainz submission is configured
func (c *Config) HasListenBrainz() bool {
	return c.ListenBrainz.Token != ""
}

// HasSubsonic returns true if the Subsonic release source is configured
func (c *Config) HasSubsonic() bool {
	return c.Subsonic.URL != ""
}
