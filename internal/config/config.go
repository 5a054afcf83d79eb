package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Profile names accepted by the profile key.
const (
	ProfileDevelopment = "development"
	ProfileProduction  = "production"
)

// Config is the web frontend configuration.
type Config struct {
	Profile      string                       `koanf:"profile"`
	Environments map[string]EnvironmentConfig `koanf:"environments"`
	Server       ServerConfig                 `koanf:"server"`
	Log          LogConfig                    `koanf:"log"`
	Session      SessionConfig                `koanf:"session"`
	Auth         AuthConfig                   `koanf:"auth"`
}

// EnvironmentConfig describes the backend of one named profile.
type EnvironmentConfig struct {
	APIURL     string `koanf:"api_url"`
	Production bool   `koanf:"production"`
	Timeout    string `koanf:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string     `koanf:"host"`
	Port       int        `koanf:"port"`
	Mode       string     `koanf:"mode"`
	CSRFSecret string     `koanf:"csrf_secret"`
	Timeout    string     `koanf:"timeout"`
	CORS       CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// SessionConfig controls the per-browser application session.
type SessionConfig struct {
	CookieName      string `koanf:"cookie_name"`
	TTL             string `koanf:"ttl"`
	CleanupInterval string `koanf:"cleanup_interval"`
	// MaxSessions caps live sessions; 0 selects the store default.
	MaxSessions int `koanf:"max_sessions"`
}

// AuthConfig controls the login gate.
type AuthConfig struct {
	Required   bool   `koanf:"required"`
	CookieName string `koanf:"cookie_name"`
	MaxAge     string `koanf:"max_age"`
	LoginPath  string `koanf:"login_path"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__ENVIRONMENTS__PRODUCTION__API_URL overrides environments.production.api_url.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := load(configPath, "APP__", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// load unmarshals the YAML file at path, overlaid with prefixed env vars, into out.
func load(path, prefix string, out any) error {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	// PREFIX__SERVER__PORT -> server.port
	if err := k.Load(env.Provider(prefix, ".", func(s string) string {
		key := strings.TrimPrefix(s, prefix)
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return fmt.Errorf("failed to load env variables: %w", err)
	}

	if err := k.Unmarshal("", out); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// Environment returns the profile selected by the profile key.
func (c *Config) Environment() EnvironmentConfig {
	return c.Environments[c.Profile]
}

// APITimeout returns the per-request backend timeout of the active profile.
func (c *Config) APITimeout() time.Duration {
	return DurationOr(c.Environment().Timeout, 30*time.Second)
}

// Validate checks cross-field constraints and supported values.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}

	profile := strings.ToLower(strings.TrimSpace(c.Profile))
	if profile == "" {
		profile = ProfileDevelopment
	}
	switch profile {
	case ProfileDevelopment, ProfileProduction:
		c.Profile = profile
	default:
		return fmt.Errorf("invalid profile %q: must be one of %q, %q", c.Profile, ProfileDevelopment, ProfileProduction)
	}

	envCfg, ok := c.Environments[c.Profile]
	if !ok {
		return fmt.Errorf("environments.%s is required for profile %q", c.Profile, c.Profile)
	}
	apiURL := strings.TrimRight(strings.TrimSpace(envCfg.APIURL), "/")
	if apiURL == "" {
		return fmt.Errorf("environments.%s.api_url is required", c.Profile)
	}
	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid environments.%s.api_url %q: must be an absolute http(s) URL", c.Profile, envCfg.APIURL)
	}
	envCfg.APIURL = apiURL
	envCfg.Timeout = strings.TrimSpace(envCfg.Timeout)
	if err := validateDuration("environments."+c.Profile+".timeout", envCfg.Timeout); err != nil {
		return err
	}
	c.Environments[c.Profile] = envCfg

	c.Session.CookieName = strings.TrimSpace(c.Session.CookieName)
	c.Session.TTL = strings.TrimSpace(c.Session.TTL)
	c.Session.CleanupInterval = strings.TrimSpace(c.Session.CleanupInterval)
	if err := validateDuration("session.ttl", c.Session.TTL); err != nil {
		return err
	}
	if err := validateDuration("session.cleanup_interval", c.Session.CleanupInterval); err != nil {
		return err
	}
	if c.Session.MaxSessions < 0 {
		return fmt.Errorf("invalid session.max_sessions %d: must not be negative", c.Session.MaxSessions)
	}

	c.Auth.CookieName = strings.TrimSpace(c.Auth.CookieName)
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "jwt_token"
	}
	c.Auth.MaxAge = strings.TrimSpace(c.Auth.MaxAge)
	if err := validateDuration("auth.max_age", c.Auth.MaxAge); err != nil {
		return err
	}
	c.Auth.LoginPath = strings.Trim(strings.TrimSpace(c.Auth.LoginPath), "/")
	if c.Auth.LoginPath == "" {
		c.Auth.LoginPath = "auth/login"
	}

	if envCfg.Production && c.Server.Mode != gin.ReleaseMode {
		return fmt.Errorf("profile %q is a production profile: server.mode must be %q", c.Profile, gin.ReleaseMode)
	}

	return c.Log.validate()
}

func (s *ServerConfig) validate() error {
	mode := strings.TrimSpace(s.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		s.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", s.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", s.Port)
	}

	host := strings.TrimSpace(s.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	s.Host = host

	// Whitespace-only means unset.
	s.Timeout = strings.TrimSpace(s.Timeout)
	s.CORS.MaxAge = strings.TrimSpace(s.CORS.MaxAge)

	if err := validateDuration("server.timeout", s.Timeout); err != nil {
		return err
	}
	if ma := s.CORS.MaxAge; ma != "" {
		d, err := time.ParseDuration(ma)
		if err != nil {
			return fmt.Errorf("invalid server.cors.max_age %q: must be a valid duration (e.g. \"24h\", \"3600s\"): %w", s.CORS.MaxAge, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid server.cors.max_age %q: must be greater than 0", s.CORS.MaxAge)
		}
	}
	return nil
}

func (l *LogConfig) validate() error {
	level := strings.ToLower(strings.TrimSpace(l.Level))
	switch level {
	case "debug", "info", "warn", "error":
		l.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", l.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(l.Format))
	switch format {
	case "text", "json":
		l.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", l.Format, "text", "json")
	}
	return nil
}

// validateDuration accepts an empty value or a positive Go duration.
func validateDuration(name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, value)
	}
	return nil
}

// DurationOr parses a validated duration, returning fallback when it is empty.
func DurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	hasLower := false
	hasUpper := false
	hasDigit := false
	hasSymbol := false

	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	if hasLower {
		classes++
	}
	if hasUpper {
		classes++
	}
	if hasDigit {
		classes++
	}
	if hasSymbol {
		classes++
	}

	return classes
}
