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
	Checkout      CheckoutConfig
	HTTP          HTTPConfig
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
	Env          string `envconfig:"ATINO_APP_ENV" required:"true"`
	Port         string `envconfig:"ATINO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ATINO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ATINO_LOG_WARN_STACK" default:"false"`

	// RootAdminEmail marks the bootstrap admin account that cannot be
	// demoted or deactivated through the API.
	RootAdminEmail string `envconfig:"ATINO_ROOT_ADMIN_EMAIL" default:"admin@atino.com"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ATINO_DB_DSN"`
	Driver string `envconfig:"ATINO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ATINO_DB_HOST"`
	LegacyPort     int    `envconfig:"ATINO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ATINO_DB_USER"`
	LegacyPassword string `envconfig:"ATINO_DB_PASSWORD"`
	LegacyName     string `envconfig:"ATINO_DB_NAME"`
	LegacySSLMode  string `envconfig:"ATINO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ATINO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ATINO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ATINO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ATINO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ATINO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ATINO_REDIS_ADDR"`
	Password     string        `envconfig:"ATINO_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATINO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATINO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATINO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATINO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATINO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATINO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string        `envconfig:"ATINO_JWT_SECRET" required:"true"`
	Issuer            string        `envconfig:"ATINO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int           `envconfig:"ATINO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTTL        time.Duration `envconfig:"ATINO_JWT_REFRESH_TTL" default:"720h"`
}

// RefreshTokenTTL returns how long refresh sessions live in Redis.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return j.RefreshTTL
}

// Expiration returns the access token TTL.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ATINO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ATINO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ATINO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ATINO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ATINO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ATINO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ATINO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ATINO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ATINO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ATINO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ATINO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ATINO_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig carries the pricing rules applied when a cart becomes an order.
// Amounts are integer VND.
type CheckoutConfig struct {
	FreeShippingThreshold int `envconfig:"ATINO_FREE_SHIPPING_THRESHOLD" default:"500000"`
	ShippingFee           int `envconfig:"ATINO_SHIPPING_FEE" default:"30000"`
}

type HTTPConfig struct {
	CORSAllowedOrigins []string      `envconfig:"ATINO_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	ShutdownTimeout    time.Duration `envconfig:"ATINO_HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
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
