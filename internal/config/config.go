package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"WasteWise"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"wastewise"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
		TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	}

	Market struct {
		CommissionRate      string `envconfig:"COMMISSION_RATE" default:"0.08"`
		StrictOfferQuantity bool   `envconfig:"MARKET_STRICT_OFFER_QUANTITY" default:"false"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	RateLimit struct {
		AuthLimit  int           `envconfig:"AUTH_RATE_LIMIT" default:"10"`
		AuthWindow time.Duration `envconfig:"AUTH_RATE_WINDOW" default:"1m"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Commission parses the configured commission rate. It must be within [0, 1)
// with at most four decimal places.
func (c *Config) Commission() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Market.CommissionRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing COMMISSION_RATE: %w", err)
	}

	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("COMMISSION_RATE must be in [0, 1), got %s", rate)
	}

	if !rate.Round(4).Equal(rate) {
		return decimal.Zero, fmt.Errorf("COMMISSION_RATE allows at most 4 decimal places, got %s", rate)
	}

	return rate, nil
}

// Load reads an optional .env file and then processes the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if _, err := cfg.Commission(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
