package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TIMETRACKER"

type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Database   DatabaseConfig   `yaml:"database" mapstructure:"database"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
	Repository RepositoryConfig `yaml:"repository" mapstructure:"repository"`
	Notify     NotifyConfig     `yaml:"notify" mapstructure:"notify"`
	Auth       AuthConfig       `yaml:"auth" mapstructure:"auth"`
	Lock       LockConfig       `yaml:"lock" mapstructure:"lock"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" mapstructure:"port"`
	Host            string        `yaml:"host" mapstructure:"host"`
	RequestTimeout  time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	RateLimit       int           `yaml:"rate_limit" mapstructure:"rate_limit"`
	AllowedOrigins  []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url" mapstructure:"url"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	MinConnections int           `yaml:"min_connections" mapstructure:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	Migrate        bool          `yaml:"migrate" mapstructure:"migrate"`
}

type LoggingConfig struct {
	Development bool   `yaml:"development" mapstructure:"development"`
	File        string `yaml:"file" mapstructure:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

type RepositoryConfig struct {
	Type string `yaml:"type" mapstructure:"type"` // "postgres" или "inmemory"
}

type NotifyConfig struct {
	Transport   string        `yaml:"transport" mapstructure:"transport"` // "smtp" или "log"
	From        string        `yaml:"from" mapstructure:"from"`
	SMTPHost    string        `yaml:"smtp_host" mapstructure:"smtp_host"`
	SMTPPort    int           `yaml:"smtp_port" mapstructure:"smtp_port"`
	Username    string        `yaml:"username" mapstructure:"username"`
	Password    string        `yaml:"password" mapstructure:"password"`
	MaxRetries  uint64        `yaml:"max_retries" mapstructure:"max_retries"`
	QueueSize   int           `yaml:"queue_size" mapstructure:"queue_size"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
	SendTimeout time.Duration `yaml:"send_timeout" mapstructure:"send_timeout"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type LockConfig struct {
	Type      string        `yaml:"type" mapstructure:"type"` // "local" или "redis"
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	WaitLimit time.Duration `yaml:"wait_limit" mapstructure:"wait_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.migrate", true)

	v.SetDefault("logging.development", false)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 30)
	v.SetDefault("logging.max_age_days", 90)

	v.SetDefault("repository.type", "inmemory")

	v.SetDefault("notify.transport", "log")
	v.SetDefault("notify.from", "noreply@timetracker.local")
	v.SetDefault("notify.smtp_host", "")
	v.SetDefault("notify.smtp_port", 587)
	v.SetDefault("notify.username", "")
	v.SetDefault("notify.password", "")
	v.SetDefault("notify.max_retries", 3)
	v.SetDefault("notify.queue_size", 256)
	v.SetDefault("notify.concurrency", 4)
	v.SetDefault("notify.send_timeout", 10*time.Second)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("lock.type", "local")
	v.SetDefault("lock.redis_addr", "localhost:6379")
	v.SetDefault("lock.redis_db", 0)
	v.SetDefault("lock.ttl", 10*time.Second)
	v.SetDefault("lock.wait_limit", 5*time.Second)
}

// Load читает конфиг из файла (если он есть) и переменных окружения TIMETRACKER_*
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// файла может не быть, тогда работаем на дефолтах и окружении
	if _, err := os.Stat(path); path != "" && err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("чтение %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфига: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "inmemory":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url обязателен для repository.type=postgres")
		}
	default:
		return fmt.Errorf("неизвестный repository.type: %q", c.Repository.Type)
	}

	switch c.Notify.Transport {
	case "log":
	case "smtp":
		if c.Notify.SMTPHost == "" {
			return errors.New("notify.smtp_host обязателен для notify.transport=smtp")
		}
	default:
		return fmt.Errorf("неизвестный notify.transport: %q", c.Notify.Transport)
	}

	switch c.Lock.Type {
	case "local", "redis":
	default:
		return fmt.Errorf("неизвестный lock.type: %q", c.Lock.Type)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
