package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Checkout      CheckoutConfig
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
	Env          string `envconfig:"BOXPORT_APP_ENV" required:"true"`
	Port         string `envconfig:"BOXPORT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOXPORT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOXPORT_LOG_WARN_STACK" default:"false"`
	AllowOrigins string `envconfig:"BOXPORT_ALLOW_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOXPORT_DB_DSN"`
	Driver string `envconfig:"BOXPORT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOXPORT_DB_HOST"`
	LegacyPort     int    `envconfig:"BOXPORT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOXPORT_DB_USER"`
	LegacyPassword string `envconfig:"BOXPORT_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOXPORT_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOXPORT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOXPORT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOXPORT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOXPORT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOXPORT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOXPORT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOXPORT_REDIS_ADDR"`
	Password     string        `envconfig:"BOXPORT_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOXPORT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOXPORT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOXPORT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOXPORT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOXPORT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOXPORT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOXPORT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOXPORT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOXPORT_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BOXPORT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BOXPORT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BOXPORT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BOXPORT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BOXPORT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BOXPORT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BOXPORT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BOXPORT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BOXPORT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BOXPORT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BOXPORT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BOXPORT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BOXPORT_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey         string        `envconfig:"BOXPORT_STRIPE_API_KEY"`
	PublishableKey string        `envconfig:"BOXPORT_STRIPE_PUBLISHABLE_KEY"`
	Env            string        `envconfig:"BOXPORT_STRIPE_ENV" default:"test"`
	RequestTimeout time.Duration `envconfig:"BOXPORT_STRIPE_REQUEST_TIMEOUT" default:"10s"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	ProcessingFee        string        `envconfig:"BOXPORT_CHECKOUT_PROCESSING_FEE" default:"12.50"`
	StandardShippingRate string        `envconfig:"BOXPORT_CHECKOUT_STANDARD_SHIPPING_RATE" default:"19.99"`
	ExpressShippingRate  string        `envconfig:"BOXPORT_CHECKOUT_EXPRESS_SHIPPING_RATE" default:"29.99"`
	PaymentPollInterval  time.Duration `envconfig:"BOXPORT_CHECKOUT_PAYMENT_POLL_INTERVAL" default:"5s"`
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
