package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "CLINIC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "CLINIC_APP_ENV"
	EnvPort                   = "CLINIC_APP_PORT"
	EnvDBDSN                  = "CLINIC_DB_DSN"
	EnvDBDriver               = "CLINIC_DB_DRIVER"
	EnvDBHost                 = "CLINIC_DB_HOST"
	EnvDBUser                 = "CLINIC_DB_USER"
	EnvDBName                 = "CLINIC_DB_NAME"
	EnvRedisURL               = "CLINIC_REDIS_URL"
	EnvJWTSecret              = "CLINIC_JWT_SECRET"
	EnvJWTIssuer              = "CLINIC_JWT_ISSUER"
	EnvJWTExpMins             = "CLINIC_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CLINIC_REFRESH_TOKEN_TTL_MINUTES"
	EnvUploadsDir             = "CLINIC_UPLOADS_DIR"
	EnvUploadsPublicPath      = "CLINIC_UPLOADS_PUBLIC_PATH"
	EnvOrderScopeLockTTL      = "CLINIC_ORDER_SCOPE_LOCK_TTL"
	EnvMaxUploadMB            = "CLINIC_MAX_UPLOAD_MB"
	EnvCORSOrigins            = "CLINIC_CORS_ALLOWED_ORIGINS"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const DefaultUploadsPublicPath = "/uploads"

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Storage       StorageConfig
	CORS          CORSConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.ScopeLock && cfg.FeatureFlags.ScopeLockTTL <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvOrderScopeLockTTL)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CLINIC_APP_ENV" required:"true"`
	Port         string `envconfig:"CLINIC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CLINIC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLINIC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CLINIC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CLINIC_DB_DSN"`
	Driver string `envconfig:"CLINIC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CLINIC_DB_HOST"`
	LegacyPort     int    `envconfig:"CLINIC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLINIC_DB_USER"`
	LegacyPassword string `envconfig:"CLINIC_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLINIC_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLINIC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLINIC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLINIC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLINIC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLINIC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CLINIC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CLINIC_REDIS_ADDR"`
	Password     string        `envconfig:"CLINIC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLINIC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLINIC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLINIC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLINIC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLINIC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLINIC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CLINIC_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CLINIC_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CLINIC_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CLINIC_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CLINIC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CLINIC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CLINIC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CLINIC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CLINIC_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"CLINIC_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"CLINIC_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"CLINIC_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate  bool          `envconfig:"CLINIC_AUTO_MIGRATE" default:"false"`
	ScopeLock    bool          `envconfig:"CLINIC_ORDER_SCOPE_LOCK" default:"true"`
	ScopeLockTTL time.Duration `envconfig:"CLINIC_ORDER_SCOPE_LOCK_TTL" default:"10s"`
}

type StorageConfig struct {
	UploadsDir  string `envconfig:"CLINIC_UPLOADS_DIR" default:"uploads"`
	PublicPath  string `envconfig:"CLINIC_UPLOADS_PUBLIC_PATH" default:"/uploads"`
	MaxUploadMB int    `envconfig:"CLINIC_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes converts the configured upload ceiling to bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// NormalizedPublicPath returns the prefix used to build image URLs: a path with a leading
// slash and no trailing slash, or an absolute CDN URL. Empty or "/" falls back to
// DefaultUploadsPublicPath.
func (s StorageConfig) NormalizedPublicPath() string {
	p := strings.TrimRight(strings.TrimSpace(s.PublicPath), "/")
	if p == "" {
		return DefaultUploadsPublicPath
	}
	if !strings.HasPrefix(p, "/") && !strings.Contains(p, "://") {
		p = "/" + p
	}
	return p
}

// UploadsMount is the local path the uploads directory is served under. It equals
// NormalizedPublicPath unless that points at a CDN.
func (s StorageConfig) UploadsMount() string {
	p := s.NormalizedPublicPath()
	if !strings.HasPrefix(p, "/") {
		return DefaultUploadsPublicPath
	}
	return p
}

func (s StorageConfig) validate() error {
	if strings.TrimSpace(s.UploadsDir) == "" {
		return fmt.Errorf("%s is required", EnvUploadsDir)
	}
	if s.MaxUploadMB <= 0 {
		return fmt.Errorf("%s must be positive", EnvMaxUploadMB)
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CLINIC_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"CLINIC_CRON_INTERVAL" default:"6h"`
	OrphanGracePeriod time.Duration `envconfig:"CLINIC_CRON_ORPHAN_GRACE_PERIOD" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
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
