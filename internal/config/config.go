package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"productcatalog/internal/models"
)

// Pool limits mirror the sizing the service was tuned with: at most 20
// open connections, idle ones recycled after 30 seconds.
const (
	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxIdleTime = 30 * time.Second
)

type Config struct {
	HTTP_ADDR      string
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	JWT_SECRET     string
	JWT_TTL        time.Duration
	KAFKA_ADDRESS  string
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
	LOG_LEVEL      string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTP_ADDR:      getenv("HTTP_ADDR", ":8080"),
		DB_HOST:        getenv("DB_HOST", "localhost"),
		DB_PORT:        getenv("DB_PORT", "5432"),
		DB_USER:        getenv("DB_USER", "postgres"),
		DB_PASSWORD:    getenv("DB_PASSWORD", "password"),
		DB_NAME:        getenv("DB_NAME", "postgres"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		ADMIN_EMAIL:    getenv("ADMIN_EMAIL", "admin@example.com"),
		ADMIN_PASSWORD: getenv("ADMIN_PASSWORD", "admin123"),
		LOG_LEVEL:      getenv("LOG_LEVEL", "info"),
	}

	if config.JWT_SECRET == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttl, err := time.ParseDuration(getenv("JWT_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	config.JWT_TTL = ttl

	return config, nil
}

// InitDB opens the shared connection pool and makes sure the users and
// products tables exist.
func InitDB(configuration *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER,
		configuration.DB_PASSWORD,
		configuration.DB_HOST,
		configuration.DB_PORT,
		configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	return db, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
