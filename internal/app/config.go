package app

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"

	"github.com/betoojeda/tienda-facil/internal/data/db"
	"github.com/betoojeda/tienda-facil/internal/observability"
	"github.com/betoojeda/tienda-facil/internal/platform/gcp"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	LogMode       string        `env:"LOG_MODE" envDefault:"development"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
	Timezone      string        `env:"TIMEZONE" envDefault:"America/Mexico_City"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envSeparator:","`

	DBDriver         string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"data/tienda.db"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"tienda_facil"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	JWTSecretKey    string        `env:"JWT_SECRET_KEY" envDefault:"defaultsecret"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"24h"`
	AdminPassword   string        `env:"ADMIN_PASSWORD" envDefault:"admin"`
	PlansFile       string        `env:"PLANS_FILE"`

	RedisAddr    string `env:"REDIS_ADDR"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"tienda-facil:events"`

	ObjectStorageMode  string `env:"OBJECT_STORAGE_MODE" envDefault:"disk"`
	ProductImageBucket string `env:"PRODUCT_IMAGE_BUCKET"`
	ProductImageCDN    string `env:"PRODUCT_IMAGE_CDN_DOMAIN"`
	StorageEmulator    string `env:"STORAGE_EMULATOR_HOST"`
	StoragePublicURL   string `env:"OBJECT_STORAGE_PUBLIC_BASE_URL"`
	GoogleCredentials  string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	MediaDir           string `env:"MEDIA_DIR" envDefault:"data/media"`
	MediaURLPrefix     string `env:"MEDIA_URL_PREFIX" envDefault:"/media"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	ReceiptFont  string `env:"RECEIPT_FONT"`

	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"1h"`

	OtelEnabled     bool              `env:"OTEL_ENABLED"`
	OtelServiceName string            `env:"OTEL_SERVICE_NAME" envDefault:"tienda-facil"`
	OtelEnvironment string            `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OtelEndpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS" envSeparator:"," envKeyValSeparator:"="`
	OtelInsecure    bool              `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	OtelSampleRatio float64           `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
	Version         string            `env:"APP_VERSION" envDefault:"dev"`
}

func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.ExpirySweepInterval <= 0 {
		return fmt.Errorf("EXPIRY_SWEEP_INTERVAL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is where dashboard days and receipt timestamps are computed.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) DBOptions() db.Options {
	return db.Options{
		Driver:           c.DBDriver,
		SQLitePath:       c.SQLitePath,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		PostgresSSLMode:  c.PostgresSSLMode,
	}
}

func (c Config) StorageConfig() gcp.ObjectStorageConfig {
	return gcp.ObjectStorageConfig{
		Mode:          gcp.ObjectStorageMode(c.ObjectStorageMode),
		Bucket:        c.ProductImageBucket,
		CDNDomain:     c.ProductImageCDN,
		EmulatorHost:  c.StorageEmulator,
		PublicBaseURL: c.StoragePublicURL,
		DiskDir:       c.MediaDir,
		DiskURLPrefix: c.MediaURLPrefix,
		Credentials:   c.GoogleCredentials,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.OtelEnvironment,
		Version:     c.Version,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecretKey == defaultJWTSecret
}
