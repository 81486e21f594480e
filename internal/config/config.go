package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Storage drivers for the three persisted records.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Sync modes for mirroring booking changes to the spreadsheet.
const (
	SyncModeDirect = "direct"
	SyncModeKafka  = "kafka"
)

// DatabaseConfig holds PostgreSQL settings, used when StorageDriver is postgres.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds broker settings, used when SyncMode is kafka.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
	Topic       string
}

// AssistantConfig holds settings for the language-model collaborator.
type AssistantConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	ConflictModel string
	Timeout       time.Duration
	WarningTTL    time.Duration
}

// SyncConfig holds settings for the spreadsheet webhook.
type SyncConfig struct {
	Mode       string
	Timeout    time.Duration
	Timezone   string
	TimeLayout string
	Cron       string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	Timezone      string
	CORSOrigins   []string
	StorageDriver string
	StorageDir    string
	DBConfig      DatabaseConfig
	KafkaConfig   KafkaConfig
	Assistant     AssistantConfig
	Sync          SyncConfig
}

// Load reads configuration from an optional config.yaml and the environment.
// Environment variables win over the file.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/oneroom")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a ServiceConfig from an already populated viper instance.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		Port:          servicePort(v.GetString("SERVICE_PORT")),
		AppEnv:        v.GetString("APP_ENV"),
		Timezone:      v.GetString("APP_TIMEZONE"),
		CORSOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		StorageDir:    v.GetString("STORAGE_DIR"),
		DBConfig:      loadDatabaseConfig(v),
		KafkaConfig:   loadKafkaConfig(v),
		Assistant:     loadAssistantConfig(v),
		Sync:          loadSyncConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *ServiceConfig) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageFile:
		if c.StorageDir == "" {
			return errors.New("config: STORAGE_DIR is required for the file storage driver")
		}
	case StoragePostgres:
		if c.DBConfig.Host == "" || c.DBConfig.DBName == "" {
			return errors.New("config: DB_HOST and DB_NAME are required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.Sync.Mode {
	case SyncModeDirect:
	case SyncModeKafka:
		if len(c.KafkaConfig.Brokers) == 0 {
			return errors.New("config: KAFKA_BROKERS is required when SYNC_MODE is kafka")
		}
	default:
		return fmt.Errorf("config: unknown SYNC_MODE %q", c.Sync.Mode)
	}

	if c.Sync.Timeout <= 0 {
		return errors.New("config: SYNC_TIMEOUT must be positive")
	}
	if c.Assistant.Timeout <= 0 {
		return errors.New("config: ASSISTANT_TIMEOUT must be positive")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: invalid APP_TIMEZONE: %w", err)
	}
	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("config: invalid SYNC_TIMEZONE: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "Asia/Ho_Chi_Minh")
	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("STORAGE_DIR", "./data")

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("KAFKA_GROUP_PREFIX", "oneroom-")
	v.SetDefault("KAFKA_TOPIC", "oneroom.booking.events")

	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("GEMINI_MODEL", "gemini-3-flash-preview")
	v.SetDefault("GEMINI_CONFLICT_MODEL", "gemini-flash-lite-latest")
	v.SetDefault("ASSISTANT_TIMEOUT", "30s")
	v.SetDefault("CONFLICT_WARNING_TTL", "10m")

	v.SetDefault("SYNC_MODE", SyncModeDirect)
	v.SetDefault("SYNC_TIMEOUT", "15s")
	v.SetDefault("SYNC_TIMEZONE", "Asia/Ho_Chi_Minh")
	v.SetDefault("SYNC_TIME_LAYOUT", "15:04:05 2/1/2006")
	v.SetDefault("SYNC_CRON", "")
}

func loadDatabaseConfig(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString("DB_NAME"),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

func loadKafkaConfig(v *viper.Viper) KafkaConfig {
	return KafkaConfig{
		Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		Topic:       v.GetString("KAFKA_TOPIC"),
	}
}

// loadAssistantConfig accepts API_KEY as a fallback for GEMINI_API_KEY.
func loadAssistantConfig(v *viper.Viper) AssistantConfig {
	key := v.GetString("GEMINI_API_KEY")
	if key == "" {
		key = v.GetString("API_KEY")
	}
	return AssistantConfig{
		APIKey:        key,
		BaseURL:       strings.TrimRight(v.GetString("GEMINI_BASE_URL"), "/"),
		Model:         v.GetString("GEMINI_MODEL"),
		ConflictModel: v.GetString("GEMINI_CONFLICT_MODEL"),
		Timeout:       v.GetDuration("ASSISTANT_TIMEOUT"),
		WarningTTL:    v.GetDuration("CONFLICT_WARNING_TTL"),
	}
}

func loadSyncConfig(v *viper.Viper) SyncConfig {
	return SyncConfig{
		Mode:       strings.ToLower(v.GetString("SYNC_MODE")),
		Timeout:    v.GetDuration("SYNC_TIMEOUT"),
		Timezone:   v.GetString("SYNC_TIMEZONE"),
		TimeLayout: v.GetString("SYNC_TIME_LAYOUT"),
		Cron:       v.GetString("SYNC_CRON"),
	}
}

// servicePort normalizes "8080" into ":8080".
func servicePort(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
