package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageLayoutConfig controls how document blob keys are laid out and how
// long presigned URLs stay valid.
//
// DocumentsPrefix is the middle path segment of the current key scheme
// ({offeringID}/{prefix}/{filename}). Keys written before the prefix was
// introduced have no middle segment and must stay resolvable, so changing
// this value only affects newly written keys.
type StorageLayoutConfig struct {
	DocumentsPrefix string
	UploadURLTTLSec int
	SignedURLTTLSec int
}

// AuthConfig selects the authenticator wired at startup.
// Mode "session" verifies bearer tokens against the sessions table.
// Mode "static" injects a fixed identity and must never be used in
// production; it replaces the old header+env identity bypass.
type AuthConfig struct {
	Mode         string
	StaticUserID string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables once at startup and passed by
// reference; nothing reads the process environment after Load returns.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Storage  StorageLayoutConfig
	Auth     AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Storage: StorageLayoutConfig{
			DocumentsPrefix: getEnv("DOCUMENTS_PREFIX", "documents"),
			UploadURLTTLSec: getEnvInt("UPLOAD_URL_TTL_SEC", 600),
			SignedURLTTLSec: getEnvInt("SIGNED_URL_TTL_SEC", 3600),
		},
		Auth: AuthConfig{
			Mode:         getEnv("AUTH_MODE", "session"),
			StaticUserID: getEnv("AUTH_STATIC_USER_ID", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
