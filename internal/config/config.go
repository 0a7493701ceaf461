package config

import (
	"os"
	"strconv"
	"time"

	"courtbase/internal/cache"
	"courtbase/internal/database"
	"courtbase/internal/external"
	"courtbase/internal/messaging"
	"courtbase/internal/search"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Base URL used in waitlist notification booking links
	PublicBaseURL string

	// Job intervals (jobs binary)
	ReminderInterval  time.Duration
	ExpiryInterval    time.Duration
	ArchivalInterval  time.Duration
	ArchiveAfterDays  int
	ReminderLeadHours int

	Database      database.Config
	NATS          messaging.Config
	Valkey        cache.Config
	Elasticsearch search.Config
	Mailer        external.MailerConfig
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8081"),

		ReminderInterval:  time.Duration(getEnvInt("REMINDER_INTERVAL_SEC", 300)) * time.Second,
		ExpiryInterval:    time.Duration(getEnvInt("EXPIRY_INTERVAL_SEC", 600)) * time.Second,
		ArchivalInterval:  time.Duration(getEnvInt("ARCHIVAL_INTERVAL_SEC", 3600)) * time.Second,
		ArchiveAfterDays:  getEnvInt("ARCHIVE_AFTER_DAYS", 90),
		ReminderLeadHours: getEnvInt("REMINDER_LEAD_HOURS", 24),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "courtbase"),
			Password:           getEnv("DB_PASSWORD", "courtbase123"),
			DBName:             getEnv("DB_NAME", "courtbase"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "courtbase"),
			ClientID:  getEnv("NATS_CLIENT_ID", "courtbase-api"),
		},

		Valkey: cache.Config{
			Addr:         getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:     getEnv("VALKEY_PASSWORD", ""),
			UsersHashKey: getEnv("VALKEY_USERS_HASH_KEY", "customers:auth"),
			AvailabilityTTL: time.Duration(
				getEnvInt("VALKEY_AVAILABILITY_TTL_SEC", 60)) * time.Second,
		},

		Elasticsearch: search.Config{
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:      getEnv("ELASTICSEARCH_INDEX", "facilities"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
			Enabled:    getEnv("ELASTICSEARCH_ENABLED", "true") == "true",
		},

		Mailer: external.MailerConfig{
			BaseURL: getEnv("MAIL_GATEWAY_URL", "http://localhost:8025"),
			APIKey:  getEnv("MAIL_GATEWAY_API_KEY", ""),
			Sender:  getEnv("MAIL_SENDER", "bookings@courtbase.local"),
			Timeout: time.Duration(getEnvInt("MAIL_TIMEOUT_SEC", 10)) * time.Second,
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
