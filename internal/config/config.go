package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

const envPrefix = "STOREFRONT"

type Config struct {
	HTTPAddress     string        `envconfig:"http_address" default:":8000"`
	ShutdownTimeout time.Duration `envconfig:"shutdown_timeout" default:"10s"`
	PublicURL       string        `envconfig:"public_url" default:"http://127.0.0.1:8000"`

	DatabaseURL string `envconfig:"database_url" required:"true"`

	JWTSecret    string        `envconfig:"jwt_secret" required:"true"`
	TokenTTL     time.Duration `envconfig:"token_ttl" default:"24h"`
	BcryptCost   int           `envconfig:"bcrypt_cost" default:"10"`
	SecureCookie bool          `envconfig:"secure_cookie" default:"false"`

	Currency string `envconfig:"currency" default:"RUB"`
	TimeZone string `envconfig:"time_zone" default:"Europe/Moscow"`

	MediaRoot      string `envconfig:"media_root" default:"media"`
	MaxAvatarBytes int64  `envconfig:"max_avatar_bytes" default:"2097152"`

	ManualCaptureEnabled bool `envconfig:"manual_capture_enabled" default:"false"`

	SignInRatePerSecond float64 `envconfig:"sign_in_rate" default:"1"`
	SignInBurst         int     `envconfig:"sign_in_burst" default:"5"`

	LogLevel  string `envconfig:"log_level" default:"info"`
	LogFormat string `envconfig:"log_format" default:"json"`

	YooKassa YooKassa `envconfig:"yookassa"`
}

type YooKassa struct {
	ShopID     string        `envconfig:"shop_id"`
	SecretKey  string        `envconfig:"secret_key"`
	BaseURL    string        `envconfig:"base_url" default:"https://api.yookassa.ru/v3"`
	Timeout    time.Duration `envconfig:"timeout" default:"10s"`
	MaxRetries uint64        `envconfig:"max_retries" default:"3"`
}

// Load reads the configuration from STOREFRONT_* environment variables.
func Load() (Config, error) {
	var cfg Config

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("envconfig.Process: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if _, err := c.CurrencyUnit(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if c.MaxAvatarBytes <= 0 {
		errs = append(errs, fmt.Errorf("max avatar bytes is not positive: %d", c.MaxAvatarBytes))
	}
	if c.SignInRatePerSecond <= 0 || c.SignInBurst <= 0 {
		errs = append(errs, errors.New("sign-in rate and burst must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s]: %w", c.Currency, err)
	}
	return unit, nil
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone[%s]: %w", c.TimeZone, err)
	}
	return loc, nil
}

// PaymentReturnURL is where the provider sends the buyer after checkout.
func (c Config) PaymentReturnURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/payment-success/"
}

// ConfigureLogger applies level and format to the standard logrus logger.
func (c Config) ConfigureLogger() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log.ParseLevel: %w", err)
	}
	log.SetLevel(level)

	switch c.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format: %s", c.LogFormat)
	}

	return nil
}
