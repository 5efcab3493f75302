package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Loans        LoansConfig
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
	Env          string `envconfig:"SCHULBIB_APP_ENV" required:"true"`
	Port         string `envconfig:"SCHULBIB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SCHULBIB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCHULBIB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SCHULBIB_DB_DSN"`
	Driver string `envconfig:"SCHULBIB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCHULBIB_DB_HOST"`
	LegacyPort     int    `envconfig:"SCHULBIB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCHULBIB_DB_USER"`
	LegacyPassword string `envconfig:"SCHULBIB_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCHULBIB_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCHULBIB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCHULBIB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCHULBIB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCHULBIB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCHULBIB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCHULBIB_REDIS_URL"`
	Address      string        `envconfig:"SCHULBIB_REDIS_ADDR"`
	Password     string        `envconfig:"SCHULBIB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCHULBIB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCHULBIB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCHULBIB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCHULBIB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCHULBIB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCHULBIB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"SCHULBIB_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"SCHULBIB_JWT_ISSUER" required:"true"`
}

// LoansConfig tunes the lending workflow defaults.
type LoansConfig struct {
	PeriodDays      int    `envconfig:"SCHULBIB_LOAN_PERIOD_DAYS" default:"14"`
	DefaultLocation string `envconfig:"SCHULBIB_COPY_DEFAULT_LOCATION" default:"Archiv"`
}

// Period returns the default loan period as a duration.
func (l LoansConfig) Period() time.Duration {
	if l.PeriodDays <= 0 {
		return 14 * 24 * time.Hour
	}
	return time.Duration(l.PeriodDays) * 24 * time.Hour
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SCHULBIB_AUTO_MIGRATE" default:"false"`
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
