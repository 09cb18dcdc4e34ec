package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewClient builds the client and pings it. A failed ping is only logged so
// the service can start before Redis does.
func NewClient(ctx context.Context, config RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Error connect to Redis: %s", err)
	} else {
		log.Printf("Connected to Redis at %s", config.Address)
	}
	return client
}
