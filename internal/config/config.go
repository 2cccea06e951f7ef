package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string `mapstructure:"DB_DSN"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	Environment string `mapstructure:"ENV"`
}

func Load() (*Config, error) {
	// Try the .env file first; a missing file is fine, the variables may
	// already be in the environment.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:       os.Getenv("DB_DSN"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		Environment: os.Getenv("ENV"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
