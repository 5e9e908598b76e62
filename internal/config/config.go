package config

import (
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName   string `mapstructure:"SERVICE_NAME"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	NATSURL       string `mapstructure:"NATS_URL"`
	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`

	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	AlgoliaAppID     string `mapstructure:"ALGOLIA_APP_ID"`
	AlgoliaAPIKey    string `mapstructure:"ALGOLIA_API_KEY"`
	AlgoliaIndexName string `mapstructure:"ALGOLIA_INDEX_NAME"`

	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPEmail    string `mapstructure:"SMTP_EMAIL"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	AccountSweepSchedule string `mapstructure:"ACCOUNT_SWEEP_SCHEDULE"`
	MediaSweepSchedule   string `mapstructure:"MEDIA_SWEEP_SCHEDULE"`

	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoadConfig reads configuration from environment variables, with defaults
// suitable for local development.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	viper.SetDefault("SERVICE_NAME", "reaction-service")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "mapmarket")
	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	viper.SetDefault("MINIO_BUCKET", "mapmarket-media")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("ALGOLIA_APP_ID", "")
	viper.SetDefault("ALGOLIA_API_KEY", "")
	viper.SetDefault("ALGOLIA_INDEX_NAME", "listings")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_EMAIL", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	// Account sweep monthly, media sweep weekly. Standard 5-field cron specs.
	viper.SetDefault("ACCOUNT_SWEEP_SCHEDULE", "0 3 1 * *")
	viper.SetDefault("MEDIA_SWEEP_SCHEDULE", "0 4 * * 0")
	viper.SetDefault("PROMETHEUS_METRICS_PORT", "9094")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if cfg.MongoURI == "" {
		appLogger.Fatal("MONGO_URI is not set. This is required.")
	}
	if cfg.MongoDatabase == "" {
		appLogger.Fatal("MONGO_DATABASE is not set. This is required.")
	}
	if cfg.AlgoliaAppID == "" || cfg.AlgoliaAPIKey == "" {
		appLogger.Warn("Algolia credentials are not set; search index sync will be disabled.")
	}
	if cfg.FirebaseCredentialsFile == "" {
		appLogger.Warn("FIREBASE_CREDENTIALS_FILE is not set; push notifications will be disabled.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("minio_endpoint", cfg.MinIOEndpoint),
		zap.String("minio_bucket", cfg.MinIOBucket),
		zap.Bool("algolia_configured", cfg.AlgoliaAppID != ""),
		zap.Bool("firebase_configured", cfg.FirebaseCredentialsFile != ""),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)

	return &cfg, nil
}
