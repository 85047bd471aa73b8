package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	HTTP   ServerConfig
	MySQL  MySQLConfig
	Redis  RedisConfig
	Log    LogConfig
	Mail   MailConfig
	Media  MediaConfig
	Jobs   JobsConfig
}

type AppConfig struct {
	ServiceName string

	// Where non-staff users get redirected from staff-only routes.
	PermissionDeniedURL string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	// Addr empty disables the gallery cache.
	Addr     string
	DB       int
	CacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type MailConfig struct {
	SMTPHost string
	SMTPPort string
	Username string
	Password string

	From          string
	StudioEmail   string
	SupportEmail  string
	SubjectPrefix string

	// When false, payment-processed mails go to the customer only.
	SendAllStudioEmails bool
}

type MediaConfig struct {
	Root string
}

type JobsConfig struct {
	MediaPruneInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName:         getEnv("APP_SERVICE_NAME", "studio-service"),
			PermissionDeniedURL: getEnv("APP_PERMISSION_DENIED_URL", "/permission-denied"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getMinutesEnv("GALLERY_CACHE_TTL_MINUTES", 10*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Mail: MailConfig{
			SMTPHost:            getEnv("SMTP_HOST", ""),
			SMTPPort:            getEnv("SMTP_PORT", "587"),
			Username:            getEnv("SMTP_USERNAME", ""),
			Password:            getEnv("SMTP_PASSWORD", ""),
			From:                getEnv("MAIL_FROM", "noreply@rebkdesigns.example"),
			StudioEmail:         getEnv("MAIL_STUDIO_EMAIL", "studio@rebkdesigns.example"),
			SupportEmail:        getEnv("MAIL_SUPPORT_EMAIL", "support@rebkdesigns.example"),
			SubjectPrefix:       getEnv("MAIL_SUBJECT_PREFIX", "[rebk designs]"),
			SendAllStudioEmails: getBoolEnv("MAIL_SEND_ALL_STUDIO_EMAILS", true),
		},
		Media: MediaConfig{
			Root: getEnv("MEDIA_ROOT", "media"),
		},
		Jobs: JobsConfig{
			MediaPruneInterval: getMinutesEnv("MEDIA_PRUNE_INTERVAL_MINUTES", 60*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
