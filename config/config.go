package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string
	Store    string
	MongoURI string
	MongoDB  string

	// JWTSecret may be empty; auth endpoints then fail closed at request time.
	JWTSecret string

	StorageDriver  string
	UploadDir      string
	GCSBucket      string
	GCSCredentials string

	OmisePublicKey  string
	OmiseSecretKey  string
	PaymentCurrency string

	CORSOrigins []string

	// ReservationSweepSchedule is a cron spec; empty disables the sweeper.
	ReservationSweepSchedule string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:                   os.Getenv("APP_ENV"),
		LogLevel:                 os.Getenv("LOG_LEVEL"),
		Port:                     getenv("PORT", "3001"),
		Store:                    getenv("STORE", "mongo"),
		MongoURI:                 os.Getenv("MONGODB_URI"),
		MongoDB:                  getenv("MONGODB_DB", "bookmarket"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		StorageDriver:            getenv("STORAGE_DRIVER", "local"),
		UploadDir:                getenv("UPLOAD_DIR", "uploads"),
		GCSBucket:                os.Getenv("GCS_BUCKET"),
		GCSCredentials:           os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		OmisePublicKey:           os.Getenv("OMISE_PUBLIC_KEY"),
		OmiseSecretKey:           os.Getenv("OMISE_SECRET_KEY"),
		PaymentCurrency:          strings.ToLower(getenv("PAYMENT_CURRENCY", "thb")),
		ReservationSweepSchedule: os.Getenv("RESERVATION_SWEEP_SCHEDULE"),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case "mongo":
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI not set")
		}
	case "memory":
	default:
		return errors.New("STORE must be mongo or memory")
	}

	switch c.StorageDriver {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return errors.New("GCS_BUCKET not set for gcs storage")
		}
	default:
		return errors.New("STORAGE_DRIVER must be local or gcs")
	}
	return nil
}

// PaymentsEnabled reports whether omise keys are configured.
func (c *Config) PaymentsEnabled() bool {
	return c.OmisePublicKey != "" && c.OmiseSecretKey != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
