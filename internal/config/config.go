package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		IdleTimeout     time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		CORSOrigins     []string      `yaml:"corsOrigins"`
		MaxUploadMB     int           `yaml:"maxUploadMB"`
	} `yaml:"server"`

	Auth struct {
		// principal name -> key; empty disables auth
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		Enabled    bool `yaml:"enabled"`
		Capacity   int  `yaml:"capacity"`
		RefillRate int  `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	Database struct {
		Driver   string `yaml:"driver"` // postgres | mysql
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		Provider  string        `yaml:"provider"` // openai | gemini
		BaseURL   string        `yaml:"baseURL"`
		APIKey    string        `yaml:"apiKey"`
		Model     string        `yaml:"model"`
		Timeout   time.Duration `yaml:"timeout"`
		MaxTokens int           `yaml:"maxTokens"`
	} `yaml:"ai"`

	Queue struct {
		Driver      string        `yaml:"driver"` // memory | redis
		RedisURL    string        `yaml:"redisURL"`
		Key         string        `yaml:"key"`
		Size        int           `yaml:"size"`
		Workers     int           `yaml:"workers"`
		MaxAttempts int           `yaml:"maxAttempts"`
		Backoff     time.Duration `yaml:"backoff"`
	} `yaml:"queue"`

	Sweep struct {
		Schedule string        `yaml:"schedule"`
		Grace    time.Duration `yaml:"grace"`
		Batch    int           `yaml:"batch"`
	} `yaml:"sweep"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// Load baca .env (kalau ada), file config.yaml, lalu override dari env.
// A missing YAML file is fine; everything can come from the environment.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setInt(&c.Server.Port, 8080)
	setDur(&c.Server.ReadTimeout, 15*time.Second)
	// the analyzer call alone may take most of a minute
	setDur(&c.Server.WriteTimeout, 90*time.Second)
	setDur(&c.Server.IdleTimeout, 60*time.Second)
	setDur(&c.Server.ShutdownTimeout, 10*time.Second)
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	setInt(&c.Server.MaxUploadMB, 10)

	setInt(&c.RateLimit.Capacity, 30)
	setInt(&c.RateLimit.RefillRate, 1)

	setStr(&c.Database.Driver, "postgres")
	setStr(&c.Database.Host, "localhost")
	setStr(&c.Database.SSLMode, "disable")
	setStr(&c.Database.Name, "bountyhub")
	if c.Database.Port == 0 {
		if c.Database.Driver == "mysql" {
			c.Database.Port = 3306
		} else {
			c.Database.Port = 5432
		}
	}

	setStr(&c.Minio.Endpoint, "localhost:9000")
	setStr(&c.Minio.BucketName, "resumes")

	setStr(&c.AI.Provider, "openai")
	setStr(&c.AI.Model, "google/gemini-3-flash-preview")
	setDur(&c.AI.Timeout, 60*time.Second)
	setInt(&c.AI.MaxTokens, 2048)

	setStr(&c.Queue.Driver, "memory")
	setInt(&c.Queue.Size, 256)
	setInt(&c.Queue.Workers, 2)
	setInt(&c.Queue.MaxAttempts, 3)
	setDur(&c.Queue.Backoff, 2*time.Second)

	setStr(&c.Sweep.Schedule, "@every 5m")
	setDur(&c.Sweep.Grace, 2*time.Minute)
	setInt(&c.Sweep.Batch, 100)

	setStr(&c.Log.Level, "info")
}

func (c *Config) applyEnv() error {
	envStr(&c.AI.APIKey, "LOVABLE_API_KEY")
	envStr(&c.AI.APIKey, "AI_API_KEY")
	envStr(&c.AI.Provider, "AI_PROVIDER")
	envStr(&c.AI.Model, "AI_MODEL")
	envStr(&c.AI.BaseURL, "AI_BASE_URL")
	envStr(&c.Database.URL, "DATABASE_URL")
	envStr(&c.Database.Password, "DATABASE_PASSWORD")
	envStr(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	envStr(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	envStr(&c.Queue.RedisURL, "REDIS_URL")
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}
	return nil
}

// Validate fails fast on settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: want postgres or mysql", c.Database.Driver))
	}
	switch c.AI.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("ai.provider %q: want openai or gemini", c.AI.Provider))
	}
	if strings.TrimSpace(c.AI.APIKey) == "" {
		errs = append(errs, errors.New("ai.apiKey is required (set AI_API_KEY)"))
	}
	switch c.Queue.Driver {
	case "memory":
	case "redis":
		if c.Queue.RedisURL == "" {
			errs = append(errs, errors.New("queue.redisURL is required for the redis driver (set REDIS_URL)"))
		}
	default:
		errs = append(errs, fmt.Errorf("queue.driver %q: want memory or redis", c.Queue.Driver))
	}
	if c.Queue.Workers <= 0 {
		errs = append(errs, errors.New("queue.workers must be positive"))
	}
	return errors.Join(errs...)
}

// DSN returns the database/sql DSN for the configured driver. DATABASE_URL
// wins when set.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	if c.Database.Driver == "mysql" {
		return c.MySQLDSN()
	}
	return c.PostgresDSN()
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres (URL form, lib/pq)
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

func setStr(p *string, def string) {
	if *p == "" {
		*p = def
	}
}

func setInt(p *int, def int) {
	if *p == 0 {
		*p = def
	}
}

func setDur(p *time.Duration, def time.Duration) {
	if *p == 0 {
		*p = def
	}
}

func envStr(p *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*p = v
	}
}
