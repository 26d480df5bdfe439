package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	LogLevel                  string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Database                  DatabaseConfig
	DefaultDoctor             DefaultDoctorConfig
	Avatars                   AvatarConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// DefaultDoctorConfig identifies the doctor every new patient is assigned to.
type DefaultDoctorConfig struct {
	ID       string
	Name     string
	Email    string
	Password string
}

// AvatarConfig selects where profile photos are kept.
type AvatarConfig struct {
	Backend   string
	MaxBytes  int64
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AvatarBackendDatabase = "database"
	AvatarBackendS3       = "s3"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", ""),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "maternity"),
		DSN:      getEnv("DB_DSN", ""),
	}
	if dbConfig.DSN == "" {
		dbConfig.DSN = dbConfig.buildDSN()
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	avatarMaxBytes, err := strconv.ParseInt(getEnv("AVATAR_MAX_BYTES", "2097152"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AVATAR_MAX_BYTES: %w", err)
	}

	cfg := &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:5173"),
		Environment:               getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Database:                  dbConfig,
		DefaultDoctor: DefaultDoctorConfig{
			ID:       getEnv("DEFAULT_DOCTOR_ID", "dr_rajesh"),
			Name:     getEnv("DEFAULT_DOCTOR_NAME", "Dr. Rajesh"),
			Email:    getEnv("DEFAULT_DOCTOR_EMAIL", "rajesh@maternity.local"),
			Password: getEnv("DEFAULT_DOCTOR_PASSWORD", "change-me-please"),
		},
		Avatars: AvatarConfig{
			Backend:   strings.ToLower(getEnv("AVATAR_BACKEND", AvatarBackendDatabase)),
			MaxBytes:  avatarMaxBytes,
			Bucket:    getEnv("AVATAR_S3_BUCKET", ""),
			Region:    getEnv("AVATAR_S3_REGION", "us-east-1"),
			Endpoint:  getEnv("AVATAR_S3_ENDPOINT", ""),
			AccessKey: getEnv("AVATAR_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("AVATAR_S3_SECRET_KEY", ""),
			PublicURL: getEnv("AVATAR_PUBLIC_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be one of mysql, postgres, sqlite, got %q", c.Database.Driver)
	}
	if c.DefaultDoctor.ID == "" {
		return fmt.Errorf("DEFAULT_DOCTOR_ID must not be empty")
	}
	if len(c.DefaultDoctor.ID) > 36 {
		return fmt.Errorf("DEFAULT_DOCTOR_ID must be at most 36 characters")
	}
	if c.Avatars.MaxBytes <= 0 {
		return fmt.Errorf("AVATAR_MAX_BYTES must be positive")
	}
	switch c.Avatars.Backend {
	case AvatarBackendDatabase:
	case AvatarBackendS3:
		if c.Avatars.Bucket == "" {
			return fmt.Errorf("AVATAR_S3_BUCKET is required when AVATAR_BACKEND is s3")
		}
	default:
		return fmt.Errorf("AVATAR_BACKEND must be database or s3, got %q", c.Avatars.Backend)
	}
	return nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

func (d DatabaseConfig) buildDSN() string {
	switch d.Driver {
	case DriverPostgres:
		port := d.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Username, d.Password, d.Name, port)
	case DriverSQLite:
		return d.Name + ".db"
	default:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, port, d.Name)
	}
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
