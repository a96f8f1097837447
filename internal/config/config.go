package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs. It is loaded once at
// start-up and passed by value to the components that use it.
type Config struct {
	Port        string
	BaseURL     string
	LogLevel    string
	CORSOrigins []string

	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	SMS      SMSConfig
	Redis    RedisConfig
	Storage  StorageConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built
// from the individual DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

type AuthConfig struct {
	SecretKey string
	TokenTTL  time.Duration
}

type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	Enabled  bool
	Timeout  time.Duration
}

// Configured reports whether real email delivery should be attempted.
func (s SMTPConfig) Configured() bool {
	return s.Enabled && s.Username != "" && s.Password != ""
}

type SMSConfig struct {
	Username string
	APIKey   string
	Enabled  bool
	Endpoint string
}

func (s SMSConfig) Configured() bool {
	return s.Enabled && s.Username != "" && s.APIKey != ""
}

type RedisConfig struct {
	URL string
}

type StorageConfig struct {
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	S3Bucket     string
	UploadDir    string
}

// UseS3 reports whether uploads go to S3 instead of local disk.
func (s StorageConfig) UseS3() bool {
	return s.AWSRegion != "" && s.AWSAccessKey != "" && s.AWSSecretKey != "" && s.S3Bucket != ""
}

const defaultSecretKey = "your-super-secret-key-change-this"

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env is fine: containers pass settings as real env vars.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	ttlMinutes, err := strconv.Atoi(get("ACCESS_TOKEN_EXPIRE_MINUTES", "30"))
	if err != nil || ttlMinutes <= 0 {
		return Config{}, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES %q", getenv("ACCESS_TOKEN_EXPIRE_MINUTES"))
	}

	smtpPort, err := strconv.Atoi(get("SMTP_PORT", "587"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	smtpTimeout, err := time.ParseDuration(get("SMTP_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SMTP_TIMEOUT: %w", err)
	}

	emailsEnabled, err := strconv.ParseBool(get("EMAILS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid EMAILS_ENABLED: %w", err)
	}

	smsEnabled, err := strconv.ParseBool(get("SMS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SMS_ENABLED: %w", err)
	}

	var origins []string
	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		Port:        get("PORT", "8000"),
		BaseURL:     get("BASE_URL", "http://localhost:8000"),
		LogLevel:    strings.ToUpper(get("LOG_LEVEL", "INFO")),
		CORSOrigins: origins,
		Database: DatabaseConfig{
			URL:      get("DATABASE_URL", ""),
			Host:     get("DB_HOST", "localhost"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", "smarttrans"),
			Port:     get("DB_PORT", "5432"),
		},
		Auth: AuthConfig{
			SecretKey: get("SECRET_KEY", defaultSecretKey),
			TokenTTL:  time.Duration(ttlMinutes) * time.Minute,
		},
		SMTP: SMTPConfig{
			Server:   get("SMTP_SERVER", "smtp.gmail.com"),
			Port:     smtpPort,
			Username: get("SMTP_USERNAME", ""),
			Password: get("SMTP_PASSWORD", ""),
			Enabled:  emailsEnabled,
			Timeout:  smtpTimeout,
		},
		SMS: SMSConfig{
			Username: get("AT_USERNAME", ""),
			APIKey:   get("AT_API_KEY", ""),
			Enabled:  smsEnabled,
			Endpoint: get("AT_ENDPOINT", "https://api.africastalking.com/version1/messaging"),
		},
		Redis: RedisConfig{
			URL: get("REDIS_URL", ""),
		},
		Storage: StorageConfig{
			AWSRegion:    get("AWS_REGION", ""),
			AWSAccessKey: get("AWS_ACCESS_KEY_ID", ""),
			AWSSecretKey: get("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:     get("AWS_S3_BUCKET", ""),
			UploadDir:    get("UPLOAD_DIR", "./uploads"),
		},
	}, nil
}

// UsesDefaultSecret reports whether SECRET_KEY was left at the
// development placeholder.
func (c Config) UsesDefaultSecret() bool {
	return c.Auth.SecretKey == defaultSecretKey
}
