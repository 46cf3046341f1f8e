package configs

import (
	"fmt"
	"os"
	"strconv"

	"lending-service/internal/models"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Email       EmailConfig
	Collections CollectionsConfig
	Scheduler   SchedulerConfig
	// ProductsFile is the YAML catalogue seeded into loan_products at startup
	ProductsFile string
	LogLevel     string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	TTL    int // in hours
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

// CollectionsConfig holds the delinquency thresholds in days
type CollectionsConfig struct {
	GracePeriodDays    int
	DefaultTriggerDays int
	LegalReadyDays     int
	ReminderDaysBefore int
}

// Policy converts the thresholds into the engine's collection policy
func (c CollectionsConfig) Policy() models.CollectionPolicy {
	policy := models.DefaultCollectionPolicy()
	policy.GracePeriodDays = c.GracePeriodDays
	policy.DefaultDays = c.DefaultTriggerDays
	policy.LegalReadyDays = c.LegalReadyDays
	return policy
}

// SchedulerConfig holds the cron spec of the daily collections sweep
type SchedulerConfig struct {
	Spec string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	jwtTTL, err := getEnvInt("JWT_TTL", 24)
	if err != nil {
		return nil, err
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	grace, err := getEnvInt("GRACE_PERIOD_DAYS", 5)
	if err != nil {
		return nil, err
	}

	defaultDays, err := getEnvInt("DEFAULT_TRIGGER_DAYS", 15)
	if err != nil {
		return nil, err
	}

	legalDays, err := getEnvInt("LEGAL_READY_DAYS", 30)
	if err != nil {
		return nil, err
	}

	reminderDays, err := getEnvInt("REMINDER_DAYS_BEFORE", 3)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port: port,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "lending"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "super_secret_key"),
			TTL:    jwtTTL,
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.example.com"),
			SMTPPort:     smtpPort,
			SMTPUser:     getEnv("SMTP_USER", "user"),
			SMTPPassword: getEnv("SMTP_PASSWORD", "password"),
			SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@lending-service.com"),
		},
		Collections: CollectionsConfig{
			GracePeriodDays:    grace,
			DefaultTriggerDays: defaultDays,
			LegalReadyDays:     legalDays,
			ReminderDaysBefore: reminderDays,
		},
		Scheduler: SchedulerConfig{
			Spec: getEnv("SCHEDULER_SPEC", "@daily"),
		},
		ProductsFile: getEnv("PRODUCTS_FILE", "configs/products.yaml"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
