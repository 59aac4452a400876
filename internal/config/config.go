// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// EnvProduction имя окружения, в котором отсутствие провайдеров фатально.
const EnvProduction = "production"

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"APP_ENV" env-default:"development"`
	AppURL                  string `yaml:"app_url" env:"APP_URL" env-default:"http://localhost:5173"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	GRPCHealthAddress       string `yaml:"grpc_health_address"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Generation              `yaml:"generation"`
	Payment                 `yaml:"payment"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Session                 `yaml:"session"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"5"`
	RateBurst   int           `yaml:"rate_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном сессии
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// Generation настройки провайдера генерации текста.
// Provider: openai, gemini или пусто (статические шаблоны).
type Generation struct {
	Provider          string        `yaml:"provider" env:"GENERATION_PROVIDER"`
	OpenAIKey         string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	OpenAIModel       string        `yaml:"openai_model" env-default:"gpt-3.5-turbo"`
	GeminiKey         string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel       string        `yaml:"gemini_model" env-default:"gemini-2.0-flash"`
	GenerationTimeout time.Duration `yaml:"generation_timeout" env-default:"20s"`
}

// Payment настройки платежного провайдера.
type Payment struct {
	StripeSecretKey string        `yaml:"stripe_secret_key" env:"STRIPE_SECRET_KEY"`
	StripeAPIURL    string        `yaml:"stripe_api_url" env-default:"https://api.stripe.com"`
	TrialPriceID    string        `yaml:"trial_price_id" env-default:"price_trial"`
	PremiumPriceID  string        `yaml:"premium_price_id" env-default:"price_premium_monthly"`
	TrialDays       int           `yaml:"trial_days" env-default:"7"`
	PaymentTimeout  time.Duration `yaml:"payment_timeout" env-default:"10s"`
}

// RabbitMQ настройки брокера событий о записях.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// SMTP настройки отправки карточек по почте.
type SMTP struct {
	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// Session настройки хранения и сверки клиентских сессий.
type Session struct {
	SessionTTL        time.Duration `yaml:"session_ttl" env-default:"720h"`
	IdleEviction      time.Duration `yaml:"idle_eviction" env-default:"30m"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval" env-default:"1m"`
	PendingUpgradeTTL time.Duration `yaml:"pending_upgrade_ttl" env-default:"1h"`
}

// MustLoad функция для загрузки конфига, путь берется из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// IsProduction сообщает, запущен ли сервис в production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Collaborators проверяет учетные данные внешних провайдеров.
// Возвращает *models.ConfigurationError со списком отсутствующих настроек или nil.
func (c *Config) Collaborators() error {
	var missing []string
	if c.StorageConnectionString == "" {
		missing = append(missing, "STORAGE_CONNECTION_STRING")
	}
	if c.AddressRedis == "" {
		missing = append(missing, "REDIS_ADDRESS")
	}
	switch c.Provider {
	case "openai":
		if c.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "gemini":
		if c.GeminiKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	default:
		missing = append(missing, "GENERATION_PROVIDER")
	}
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if len(missing) == 0 {
		return nil
	}
	return &models.ConfigurationError{Missing: missing}
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"AppURL: %s\n"+
			"Storage configured: %t\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Generation provider: %q\n"+
			"Payment configured: %t\n"+
			"RabbitMQ configured: %t\n"+
			"SMTP host: %s\n",
		c.Env,
		c.AppURL,
		c.StorageConnectionString != "",
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Provider,
		c.StripeSecretKey != "",
		c.RabbitMQURL != "",
		c.SMTPHost,
	)
}
