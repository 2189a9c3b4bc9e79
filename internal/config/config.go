// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Режимы доставки писем с кодом подтверждения.
const (
	MailModeSMTP  = "smtp"
	MailModeQueue = "queue"
	MailModeLog   = "log"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string          `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	GRPCHealthAddress       string          `yaml:"grpc_health_address" env:"GRPC_HEALTH_ADDRESS"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Confirmation            Confirmation `yaml:"confirmation"`
	Mail                    Mail         `yaml:"mail"`
	SMTP                    SMTP         `yaml:"smtp"`
	RabbitMQ                RabbitMQ     `yaml:"rabbitmq"`
	RateLimit               RateLimit    `yaml:"rate_limit"`
	Cache                   Cache        `yaml:"cache"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	Addr        string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Confirmation настройки кода подтверждения регистрации.
type Confirmation struct {
	CodeTTL time.Duration `yaml:"code_ttl" env-default:"24h"`
}

// Mail определяет способ доставки писем.
type Mail struct {
	Mode string `yaml:"mode" env:"MAIL_MODE" env-default:"log"`
	From string `yaml:"from" env:"MAIL_FROM" env-default:"admin@yamdb.com"`
}

// SMTP параметры подключения к почтовому серверу.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
	// AllowPlaintext разрешает отправку без STARTTLS (локальные ловушки писем).
	AllowPlaintext bool `yaml:"allow_plaintext"`
}

// RabbitMQ параметры подключения к брокеру.
type RabbitMQ struct {
	URL     string        `yaml:"url" env:"RABBITMQ_URL"`
	Retries int           `yaml:"retries" env-default:"5"`
	Delay   time.Duration `yaml:"delay" env-default:"2s"`
}

// RateLimit ограничение частоты запросов к /auth с одного адреса.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"5"`
}

// Cache время жизни закешированных записей.
type Cache struct {
	TitleTTL time.Duration `yaml:"title_ttl" env-default:"5m"`
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch cfg.Mail.Mode {
	case MailModeSMTP, MailModeQueue, MailModeLog:
	default:
		return nil, fmt.Errorf("%s: unknown mail mode %q", op, cfg.Mail.Mode)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"Redis: %s (db %d)\n"+
			"HTTPServer: %s (timeout %s, idle %s)\n"+
			"TokenTTL: %s\n"+
			"Mail: %s from %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.RedisConnection.Addr,
		c.RedisConnection.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.Mail.Mode,
		c.Mail.From,
	)
}

func mask(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:8] + "***"
}
