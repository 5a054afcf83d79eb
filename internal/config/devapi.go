package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DevAPIConfig configures the development backend.
type DevAPIConfig struct {
	Server   ServerConfig     `koanf:"server"`
	Database DatabaseConfig   `koanf:"database"`
	Log      LogConfig        `koanf:"log"`
	Auth     DevAPIAuthConfig `koanf:"auth"`
	Seed     SeedConfig       `koanf:"seed"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings. Path ":memory:" opens a
// private in-memory database.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// DevAPIAuthConfig holds token settings of the development backend.
type DevAPIAuthConfig struct {
	RequireAuth bool   `koanf:"require_auth"`
	JWTSecret   string `koanf:"jwt_secret"`
	TokenExpiry string `koanf:"token_expiry"`
}

// SeedConfig lists the data created on an empty database.
type SeedConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Catalog  bool   `koanf:"catalog"`
}

// LoadDevAPI reads the development backend configuration. Environment
// variables use the prefix "DEVAPI__", e.g. DEVAPI__DATABASE__DRIVER=postgres.
func LoadDevAPI(configPath string) (*DevAPIConfig, error) {
	var cfg DevAPIConfig
	if err := load(configPath, "DEVAPI__", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TokenTTL returns the lifetime of issued tokens.
func (c *DevAPIConfig) TokenTTL() time.Duration {
	return DurationOr(c.Auth.TokenExpiry, 24*time.Hour)
}

// Validate checks cross-field constraints and supported values.
func (c *DevAPIConfig) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Database.validate(c.Server.Mode); err != nil {
		return err
	}

	jwtSecret := strings.TrimSpace(c.Auth.JWTSecret)
	if jwtSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(jwtSecret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(jwtSecret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	c.Auth.JWTSecret = jwtSecret

	c.Auth.TokenExpiry = strings.TrimSpace(c.Auth.TokenExpiry)
	if err := validateDuration("auth.token_expiry", c.Auth.TokenExpiry); err != nil {
		return err
	}

	c.Seed.Username = strings.TrimSpace(c.Seed.Username)
	if (c.Seed.Username == "") != (c.Seed.Password == "") {
		return fmt.Errorf("seed.username and seed.password must be set together")
	}

	return c.Log.validate()
}

func (d *DatabaseConfig) validate(mode string) error {
	switch d.Driver {
	case "sqlite", "postgres":
		// ok
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", d.Driver, "sqlite", "postgres")
	}

	if d.Driver == "sqlite" {
		sqlitePath := strings.TrimSpace(d.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		d.SQLite.Path = sqlitePath
	}

	if d.Driver == "postgres" {
		host := strings.TrimSpace(d.Postgres.Host)
		if host == "" {
			return fmt.Errorf("database.postgres.host is required when driver is postgres")
		}
		if d.Postgres.Port < 1 || d.Postgres.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", d.Postgres.Port)
		}
		user := strings.TrimSpace(d.Postgres.User)
		if user == "" {
			return fmt.Errorf("database.postgres.user is required when driver is postgres")
		}
		dbName := strings.TrimSpace(d.Postgres.DBName)
		if dbName == "" {
			return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
		}
		sslMode := strings.TrimSpace(d.Postgres.SSLMode)
		switch sslMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
			// ok
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", d.Postgres.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
		}
		if mode == gin.ReleaseMode {
			switch sslMode {
			case "require", "verify-ca", "verify-full":
				// ok
			default:
				return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", d.Postgres.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
			}
		}

		d.Postgres.Host = host
		d.Postgres.User = user
		d.Postgres.DBName = dbName
		d.Postgres.SSLMode = sslMode
	}

	d.Pool.ConnMaxLifetime = strings.TrimSpace(d.Pool.ConnMaxLifetime)
	return validateDuration("database.pool.conn_max_lifetime", d.Pool.ConnMaxLifetime)
}
