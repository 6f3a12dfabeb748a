package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Store     string    `json:"store"`
	Mongo     *bool     `json:"mongo,omitempty"`
	Redis     *bool     `json:"redis,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks until ctx is done.
// Nil clients are skipped, as with the memory store.
func StartHealthMonitor(ctx context.Context, store string, redisClient *redis.Client, mongoClient *mongo.Client) {
	check := func() {
		status := HealthStatus{Store: store, CheckedAt: time.Now().UTC()}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if redisClient != nil {
			ok := redisClient.Ping(pingCtx).Err() == nil
			status.Redis = &ok
		}
		if mongoClient != nil {
			ok := mongoClient.Ping(pingCtx, nil) == nil
			status.Mongo = &ok
		}
		mu.Lock()
		currentHealth = status
		mu.Unlock()
	}

	check()
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}
