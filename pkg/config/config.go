package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Shipping     ShippingConfig
	SMTP         SMTPConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COUNTRYHARVEST_APP_ENV" required:"true"`
	Port         string `envconfig:"COUNTRYHARVEST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COUNTRYHARVEST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COUNTRYHARVEST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COUNTRYHARVEST_DB_DSN"`
	Driver string `envconfig:"COUNTRYHARVEST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COUNTRYHARVEST_DB_HOST"`
	LegacyPort     int    `envconfig:"COUNTRYHARVEST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COUNTRYHARVEST_DB_USER"`
	LegacyPassword string `envconfig:"COUNTRYHARVEST_DB_PASSWORD"`
	LegacyName     string `envconfig:"COUNTRYHARVEST_DB_NAME"`
	LegacySSLMode  string `envconfig:"COUNTRYHARVEST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COUNTRYHARVEST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COUNTRYHARVEST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COUNTRYHARVEST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COUNTRYHARVEST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COUNTRYHARVEST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COUNTRYHARVEST_REDIS_ADDR"`
	Password     string        `envconfig:"COUNTRYHARVEST_REDIS_PASSWORD"`
	DB           int           `envconfig:"COUNTRYHARVEST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COUNTRYHARVEST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COUNTRYHARVEST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COUNTRYHARVEST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COUNTRYHARVEST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COUNTRYHARVEST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CartConfig struct {
	TTL            time.Duration `envconfig:"COUNTRYHARVEST_CART_TTL" default:"720h"`
	SessionTTL     time.Duration `envconfig:"COUNTRYHARVEST_CART_SESSION_TTL" default:"720h"`
	DefaultTaxRate string        `envconfig:"COUNTRYHARVEST_CART_DEFAULT_TAX_RATE" default:"0.10"`
}

// TaxRate parses the configured flat tax rate applied when no jurisdiction matches.
func (c CartConfig) TaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.DefaultTaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing default tax rate %q: %w", c.DefaultTaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("default tax rate %q out of range", c.DefaultTaxRate)
	}
	return rate, nil
}

type CheckoutConfig struct {
	OrderNumberPrefix  string        `envconfig:"COUNTRYHARVEST_ORDER_NUMBER_PREFIX" default:"CH"`
	OrderNumberRetries int           `envconfig:"COUNTRYHARVEST_ORDER_NUMBER_RETRIES" default:"5"`
	IdempotencyTTL     time.Duration `envconfig:"COUNTRYHARVEST_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type ShippingConfig struct {
	FreeShippingMinimum string `envconfig:"COUNTRYHARVEST_FREE_SHIPPING_MINIMUM" default:"100"`
}

// FreeShippingThreshold parses the minimum order amount qualifying for free shipping.
func (s ShippingConfig) FreeShippingThreshold() (decimal.Decimal, error) {
	min, err := decimal.NewFromString(s.FreeShippingMinimum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing free shipping minimum %q: %w", s.FreeShippingMinimum, err)
	}
	return min, nil
}

type SMTPConfig struct {
	Host        string `envconfig:"COUNTRYHARVEST_SMTP_HOST"`
	Port        int    `envconfig:"COUNTRYHARVEST_SMTP_PORT" default:"587"`
	Username    string `envconfig:"COUNTRYHARVEST_SMTP_USERNAME"`
	Password    string `envconfig:"COUNTRYHARVEST_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"COUNTRYHARVEST_SMTP_FROM_EMAIL" default:"orders@countryharvest.example"`
}

// Addr returns the host:port pair the SMTP sender dials.
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Enabled reports whether an SMTP relay is configured at all.
func (s SMTPConfig) Enabled() bool {
	return strings.TrimSpace(s.Host) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COUNTRYHARVEST_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
