package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config структура конфигурации приложения
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Breaker  BreakerConfig
	Auth     AuthConfig
	Notifier NotifierConfig
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	IdleTimeout        int
	ShutdownTimeout    int
	CORSAllowedOrigins []string
}

// DatabaseConfig конфигурация базы данных
type DatabaseConfig struct {
	// Driver postgres | memory
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// MaxConns размер пула соединений pgx
	MaxConns int32
}

// LoggingConfig конфигурация логгера
type LoggingConfig struct {
	Level string
}

// RedisConfig конфигурация кэша. Пустой Addr отключает кэш.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig конфигурация событий платежей
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	GroupID string
}

// StripeConfig конфигурация Stripe
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	// BackendURL переопределяет адрес API (локальный stripe-mock)
	BackendURL string
}

// CheckoutConfig параметры сессии оплаты
type CheckoutConfig struct {
	Currency          string
	DefaultSuccessURL string
	DefaultCancelURL  string
}

// BreakerConfig настройки circuit breaker для вызовов провайдера
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// AuthConfig проверка JWT сессии
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// NotifierConfig доставка e-mail уведомлений
type NotifierConfig struct {
	Driver      string // log | smtp | rabbitmq
	From        string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	RabbitMQURL string
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		Server: ServerConfig{
			Port:               v.GetString("PORT"),
			ReadTimeout:        v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:       v.GetInt("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:        v.GetInt("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout:    v.GetInt("SERVER_SHUTDOWN_TIMEOUT"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_TTL"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		Stripe: StripeConfig{
			APIKey:        v.GetString("STRIPE_API_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			BackendURL:    v.GetString("STRIPE_BACKEND_URL"),
		},
		Checkout: CheckoutConfig{
			Currency:          strings.ToLower(v.GetString("CHECKOUT_CURRENCY")),
			DefaultSuccessURL: v.GetString("CHECKOUT_SUCCESS_URL"),
			DefaultCancelURL:  v.GetString("CHECKOUT_CANCEL_URL"),
		},
		Breaker: BreakerConfig{
			MaxRequests:      v.GetUint32("BREAKER_MAX_REQUESTS"),
			Interval:         v.GetDuration("BREAKER_INTERVAL"),
			Timeout:          v.GetDuration("BREAKER_TIMEOUT"),
			FailureThreshold: v.GetUint32("BREAKER_FAILURE_THRESHOLD"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			Issuer:    v.GetString("JWT_ISSUER"),
		},
		Notifier: NotifierConfig{
			Driver:      strings.ToLower(v.GetString("NOTIFIER_DRIVER")),
			From:        v.GetString("MAIL_FROM"),
			SMTPHost:    v.GetString("SMTP_HOST"),
			SMTPPort:    v.GetInt("SMTP_PORT"),
			SMTPUser:    v.GetString("SMTP_USER"),
			SMTPPass:    v.GetString("SMTP_PASSWORD"),
			RabbitMQURL: v.GetString("RABBITMQ_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// В тестовом окружении внешняя инфраструктура по умолчанию не нужна
	if strings.EqualFold(v.GetString("APP_ENV"), "test") {
		v.SetDefault("DB_DRIVER", "memory")
	} else {
		v.SetDefault("DB_DRIVER", "postgres")
	}
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_marketplace")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", 5*time.Minute)

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_ID", "course-marketplace")

	v.SetDefault("CHECKOUT_CURRENCY", "usd")
	v.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/dashboard/student/courses/enrolled")
	v.SetDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/dashboard/student/courses")

	v.SetDefault("BREAKER_MAX_REQUESTS", 1)
	v.SetDefault("BREAKER_INTERVAL", time.Minute)
	v.SetDefault("BREAKER_TIMEOUT", 30*time.Second)
	v.SetDefault("BREAKER_FAILURE_THRESHOLD", 5)

	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("NOTIFIER_DRIVER", "log")
	v.SetDefault("MAIL_FROM", "no-reply@course-marketplace.local")
	v.SetDefault("SMTP_PORT", 587)
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Env == "production" {
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required in production")
		}
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
	}

	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Notifier.Driver {
	case "log", "smtp", "rabbitmq":
	default:
		return fmt.Errorf("unknown NOTIFIER_DRIVER %q", c.Notifier.Driver)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must not be empty when Kafka is enabled")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
