package services

import (
	"context"
	"encoding/json"
	"time"

	"gymcore-http-service/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	Ping() error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// 1 Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// 2 Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// 3 Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// 4 Ping 检查Redis连接
func (s *RedisService) Ping() error {
	ctx, cancel := context.WithTimeout(s.Ctx, 3*time.Second)
	defer cancel()
	return s.Client.Ping(ctx).Err()
}
