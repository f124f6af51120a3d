package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// maxUploadBytes одновременно значение по умолчанию и верхняя граница MAX_UPLOAD_BYTES.
	maxUploadBytes   = 5 * 1024 * 1024
	defaultJWTSecret = "default-secret-change-in-production"
)

var (
	// ErrDatabaseURIRequired возвращается, если не задана строка подключения.
	ErrDatabaseURIRequired = errors.New("DATABASE_URI is required")
	// ErrJWTSecretRequired возвращается в production без собственного JWT_SECRET.
	ErrJWTSecretRequired = errors.New("JWT_SECRET is required in production")
	// ErrUploadLimitTooLarge возвращается, если MAX_UPLOAD_BYTES больше 5 МиБ.
	ErrUploadLimitTooLarge = errors.New("MAX_UPLOAD_BYTES must not exceed 5 MiB")
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	PublicBaseURL     string
	Environment       string
	JWTSecret         string
	TokenExpiration   time.Duration
	AdminLogin        string
	AdminPasswordHash string
	KafkaBrokers      string
	KafkaTopic        string
	RelayInterval     time.Duration
	MaxUploadBytes    int64
}

// Load загружает конфигурацию из .env, флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	// .env необязателен, уже заданные переменные он не перезаписывает
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:5000", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.StringVar(&cfg.PublicBaseURL, "u", "", "публичный адрес сервиса для ссылок на чеки")
	flag.StringVar(&cfg.Environment, "e", EnvDevelopment, "окружение: development или production")
	flag.StringVar(&cfg.KafkaBrokers, "k", "", "брокеры Kafka через запятую")
	flag.DurationVar(&cfg.TokenExpiration, "t", 24*time.Hour, "время жизни токена администратора")
	flag.Parse()

	if v := os.Getenv("RUN_ADDRESS"); v != "" {
		cfg.RunAddress = v
	}
	if v := os.Getenv("DATABASE_URI"); v != "" {
		cfg.DatabaseURI = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.PublicBaseURL = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("TOKEN_EXPIRATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TokenExpiration = d
		}
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://" + cfg.RunAddress
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}

	cfg.AdminLogin = os.Getenv("ADMIN_LOGIN")
	if cfg.AdminLogin == "" {
		cfg.AdminLogin = "admin"
	}
	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	cfg.KafkaTopic = os.Getenv("KAFKA_TOPIC")
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "orders.created"
	}

	cfg.RelayInterval = 5 * time.Second
	if v := os.Getenv("RELAY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RelayInterval = d
		}
	}

	cfg.MaxUploadBytes = maxUploadBytes
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		}
	}

	return cfg
}

// Validate проверяет обязательные параметры до запуска сервиса.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURI) == "" {
		return ErrDatabaseURIRequired
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return ErrJWTSecretRequired
	}
	if c.MaxUploadBytes > maxUploadBytes {
		return fmt.Errorf("%w: got %d", ErrUploadLimitTooLarge, c.MaxUploadBytes)
	}
	return nil
}

// IsProduction сообщает, запущен ли сервис в production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// KafkaBrokerList разбирает список брокеров.
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
