package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/tracing"
)

type Config struct {
	AppConfig       *AppConfig
	Logger          *logger.Config
	Tracing         *tracing.JaegerConfig
	IngestionConfig *IngestionConfig
	DatabaseConfig  *DatabaseConfig
	StorageConfig   *StorageConfig
	RedisConfig     *RedisConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:       &AppConfig{},
		Logger:          &logger.Config{},
		Tracing:         &tracing.JaegerConfig{},
		IngestionConfig: &IngestionConfig{},
		DatabaseConfig:  &DatabaseConfig{},
		StorageConfig:   &StorageConfig{},
		RedisConfig:     &RedisConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading docingest config: %v", err)
	}

	return config, nil
}
