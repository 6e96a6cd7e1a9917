// Package config loads Jobly's settings from an optional .env file and
// JOBLY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Skryldev/jobly/db"
)

// EnvPrefix is stripped from environment variables; the remainder becomes a
// dotted key, e.g. JOBLY_DB_URL -> db.url.
const EnvPrefix = "JOBLY_"

type Config struct {
	Port      int             `mapstructure:"port"`
	DB        DBConfig        `mapstructure:"db"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Bcrypt    BcryptConfig    `mapstructure:"bcrypt"`
	Log       LogConfig       `mapstructure:"log"`
	Migrate   MigrateConfig   `mapstructure:"migrate"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type DBConfig struct {
	// Driver is a name registered with db.RegisterDriver.
	Driver string `mapstructure:"driver"`
	// URL is used as-is when set; otherwise the DSN is built from the parts.
	URL          string        `mapstructure:"url"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Name         string        `mapstructure:"name"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"maxopenconns"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SlowQuery    time.Duration `mapstructure:"slowquery"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	// TTL of zero issues tokens without an expiry.
	TTL time.Duration `mapstructure:"ttl"`
}

type BcryptConfig struct {
	Cost int `mapstructure:"cost"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MigrateConfig struct {
	OnStart bool `mapstructure:"onstart"`
}

type RateLimitConfig struct {
	// PerMinute is the sustained request rate per client IP on the auth
	// routes. Zero disables limiting.
	PerMinute int `mapstructure:"perminute"`
	Burst     int `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 3001)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "jobly")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.maxopenconns", 25)
	v.SetDefault("db.timeout", 5*time.Second)
	v.SetDefault("db.slowquery", 200*time.Millisecond)
	v.SetDefault("jwt.secret", "secret-dev")
	v.SetDefault("jwt.ttl", time.Duration(0))
	v.SetDefault("bcrypt.cost", 12)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("migrate.onstart", false)
	v.SetDefault("ratelimit.perminute", 30)
	v.SetDefault("ratelimit.burst", 10)
}

// Load reads envFile (skipped when missing) and then the process
// environment, which wins. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	return load(envFile, os.Environ())
}

func load(envFile string, environ []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile == "" {
		envFile = ".env"
	}
	dotenv := viper.New()
	dotenv.SetConfigFile(envFile)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}
	for _, k := range dotenv.AllKeys() {
		setEnv(v, strings.ToUpper(k), dotenv.GetString(k))
	}

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			setEnv(v, key, value)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setEnv maps JOBLY_DB_URL to db.url and ignores unprefixed keys.
func setEnv(v *viper.Viper, key, value string) {
	if !strings.HasPrefix(key, EnvPrefix) {
		return
	}
	prop := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "."))
	v.Set(strings.TrimPrefix(prop, "."), value)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if _, err := db.LookupDriver(c.DB.Driver); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret must not be empty")
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return errors.New("config: rate limit values must not be negative")
	}
	return nil
}

// DSN returns db.url or builds one for the configured driver.
func (c DBConfig) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	drv, err := db.LookupDriver(c.Driver)
	if err != nil {
		return "", err
	}
	return drv.DSN(db.DriverOptions{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Name,
		SSLMode:  c.SSLMode,
	})
}
