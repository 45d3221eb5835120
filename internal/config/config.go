package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
)

type Config struct {
	ServiceName string `validate:"required"`
	Env         string `validate:"required,oneof=development staging production test"`
	LogLevel    string `validate:"required,oneof=debug info warn error"`
	HTTPAddr    string `validate:"required"`

	DatabaseURL string `validate:"required,url"`
	RedisAddr   string `validate:"omitempty,hostname_port"`

	KafkaBrokers []string `validate:"dive,hostname_port"`
	KafkaTopic   string   `validate:"required"`

	StripeSecretKey   string
	PaymentSuccessURL string `validate:"omitempty,url"`
	PaymentCancelURL  string `validate:"omitempty,url"`
	Currency          string `validate:"required,len=3"`

	ReconcileInterval    time.Duration `validate:"gt=0"`
	ReconcileMaxAttempts int           `validate:"gt=0"`
	ReconcileWorkers     int           `validate:"gt=0,lte=256"`

	BreakerFailures uint32        `validate:"gt=0"`
	BreakerTimeout  time.Duration `validate:"gt=0"`
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("godotenv.Load: %w", err)
	}

	var errs []error

	cfg := Config{
		ServiceName:       getEnv("SERVICE_NAME", "orderflow"),
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "order-events"),
		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		PaymentSuccessURL: os.Getenv("PAYMENT_SUCCESS_URL"),
		PaymentCancelURL:  os.Getenv("PAYMENT_CANCEL_URL"),
		Currency:          strings.ToUpper(getEnv("SHOP_CURRENCY", "USD")),

		ReconcileInterval:    getDuration("RECONCILE_INTERVAL", 5*time.Second, &errs),
		ReconcileMaxAttempts: getInt("RECONCILE_MAX_ATTEMPTS", 180, &errs),
		ReconcileWorkers:     getInt("RECONCILE_WORKERS", 8, &errs),

		BreakerFailures: uint32(getInt("GATEWAY_BREAKER_FAILURES", 5, &errs)),
		BreakerTimeout:  getDuration("GATEWAY_BREAKER_TIMEOUT", 30*time.Second, &errs),
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config is not valid: %w", err)
	}

	if c.StripeSecretKey != "" && (c.PaymentSuccessURL == "" || c.PaymentCancelURL == "") {
		return fmt.Errorf("PaymentSuccessURL and PaymentCancelURL are required with StripeSecretKey")
	}

	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("currency[%s] is not valid: %w", c.Currency, err)
	}

	return nil
}

func (c Config) CurrencyUnit() currency.Unit {
	return currency.MustParseISO(c.Currency)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}

	return parsed
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}

	return parsed
}

func splitList(val string) []string {
	var items []string

	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
