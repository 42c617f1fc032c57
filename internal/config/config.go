package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bookshelf-api/bookshelf/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	JWT_SECRET string

	ACCESS_TOKEN_TTL  time.Duration
	REFRESH_TOKEN_TTL time.Duration
	LINK_MAX_AGE      time.Duration
	BCRYPT_COST       int

	REDIS_ADDR     string
	REDIS_PASSWORD string
	REDIS_DB       int

	KAFKA_ADDRESS string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	DOMAIN string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:           os.Getenv("DB_HOST"),
		DB_PORT:           os.Getenv("DB_PORT"),
		DB_USER:           os.Getenv("DB_USER"),
		DB_PASSWORD:       os.Getenv("DB_PASSWORD"),
		DB_NAME:           os.Getenv("DB_NAME"),
		JWT_SECRET:        os.Getenv("JWT_SECRET"),
		ACCESS_TOKEN_TTL:  durationEnv("ACCESS_TOKEN_TTL", time.Hour),
		REFRESH_TOKEN_TTL: durationEnv("REFRESH_TOKEN_TTL", 48*time.Hour),
		LINK_MAX_AGE:      durationEnv("LINK_MAX_AGE", 24*time.Hour),
		BCRYPT_COST:       intEnv("BCRYPT_COST", 12),
		REDIS_ADDR:        os.Getenv("REDIS_ADDR"),
		REDIS_PASSWORD:    os.Getenv("REDIS_PASSWORD"),
		REDIS_DB:          intEnv("REDIS_DB", 0),
		KAFKA_ADDRESS:     os.Getenv("KAFKA_ADDRESS"),
		ES_URL:            os.Getenv("ES_URL"),
		ES_USER:           os.Getenv("ES_USER"),
		ES_PASSWORD:       os.Getenv("ES_PASSWORD"),
		DOMAIN:            os.Getenv("DOMAIN"),
	}

	return config, nil
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func durationEnv(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Notice: invalid %s=%q, using default %s", name, raw, def)
		return def
	}
	return d
}

func intEnv(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Notice: invalid %s=%q, using default %d", name, raw, def)
		return def
	}
	return v
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Book{}, &models.Review{}, &models.Tag{}); err != nil {
		return nil, fmt.Errorf("db migrate failed: %w", err)
	}
	return db, nil
}
