package config

import (
	"fmt"
	"os"
	"time"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	EventTTL time.Duration
}

func GetRedisConfig() (*RedisConfig, error) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		return nil, fmt.Errorf("REDIS_URL must be set")
	}
	db, err := envInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	ttl, err := envDuration("REDIS_EVENT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		EventTTL: ttl,
	}, nil
}
