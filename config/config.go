package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	MaxBodySize     int64
}

type DatabaseConfig struct {
	URI              string
	MaxPoolSize      uint64
	MinPoolSize      uint64
	MaxConnIdleTime  time.Duration
	DatabaseName     string
	RetryWrites      bool
	UseTransactions  bool
	OperationTimeout time.Duration
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	Issuer     string
}

type RedisConfig struct {
	URL string
}

type UploadConfig struct {
	Backend         string // "local" or "s3"
	Dir             string
	MaxSize         int64
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
}

type LogConfig struct {
	Level  string
	Pretty bool
	Path   string
}

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Uploads  UploadConfig
	Log      LogConfig
}

func (c *Config) IsTest() bool {
	return c.Env == "test"
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URI:              GetEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
		MaxPoolSize:      GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
		MinPoolSize:      GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
		MaxConnIdleTime:  GetEnvAsDuration("MONGO_MAX_CONN_IDLE_TIME", 60*time.Second),
		DatabaseName:     GetEnvAsString("MONGO_DB", "noteshare"),
		RetryWrites:      GetEnvAsBool("MONGO_RETRY_WRITES", true),
		UseTransactions:  GetEnvAsBool("MONGO_USE_TRANSACTIONS", false),
		OperationTimeout: GetEnvAsDuration("MONGO_OPERATION_TIMEOUT", 10*time.Second),
	}
}

func LoadUploadConfig() UploadConfig {
	return UploadConfig{
		Backend:         GetEnvAsString("UPLOAD_BACKEND", "local"),
		Dir:             GetEnvAsString("UPLOAD_DIR", "static/uploads"),
		MaxSize:         GetEnvAsInt64("UPLOAD_MAX_SIZE", 5<<20),
		Bucket:          GetEnvAsString("BUCKET_NAME", ""),
		Region:          GetEnvAsString("AWS_REGION", "auto"),
		Endpoint:        GetEnvAsString("S3_ENDPOINT", ""),
		AccessKeyID:     GetEnvAsString("ACCESS_KEY_ID", ""),
		AccessKeySecret: GetEnvAsString("ACCESS_KEY_SECRET", ""),
	}
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	env := GetEnvAsString("GO_ENV", "development")
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil && env != "test" {
		log.Debug().Msg("no .env file found, using process environment")
	}
	// GO_ENV may itself come from .env
	env = GetEnvAsString("GO_ENV", env)

	cfg := &Config{
		Env: env,
		Server: ServerConfig{
			Port:            GetEnvAsString("PORT", "5000"),
			ShutdownTimeout: GetEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxBodySize:     GetEnvAsInt64("MAX_BODY_SIZE", 10<<20),
		},
		Database: LoadDatabaseConfig(),
		JWT: JWTConfig{
			SecretKey:  GetEnvAsString("JWT_SECRET_KEY", ""),
			Expiration: GetEnvAsDuration("JWT_EXPIRATION_TIME", time.Hour),
			Issuer:     GetEnvAsString("JWT_ISSUER", "noteshare"),
		},
		Redis: RedisConfig{
			URL: GetEnvAsString("REDIS_URL", ""),
		},
		Uploads: LoadUploadConfig(),
		Log: LogConfig{
			Level:  GetEnvAsString("LOG_LEVEL", "info"),
			Pretty: GetEnvAsBool("LOG_PRETTY", env == "development"),
			Path:   GetEnvAsString("LOG_FILE", ""),
		},
	}

	if cfg.IsTest() && cfg.JWT.SecretKey == "" {
		cfg.JWT.SecretKey = "test_secret_key"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("required environment variable JWT_SECRET_KEY is not set")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("JWT_EXPIRATION_TIME must be positive")
	}
	switch c.Uploads.Backend {
	case "local":
		if c.Uploads.Dir == "" {
			return errors.New("UPLOAD_DIR is required for the local upload backend")
		}
	case "s3":
		if c.Uploads.Bucket == "" {
			return errors.New("BUCKET_NAME is required for the s3 upload backend")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.Uploads.Backend)
	}
	if c.Uploads.MaxSize <= 0 {
		return errors.New("UPLOAD_MAX_SIZE must be positive")
	}
	return nil
}
