package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mytutor/models"
	"mytutor/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// negativeEntry marks a provider id known to have no active card.
const negativeEntry = "null"

// CachedDirectory is a read-through Redis cache in front of another directory.
// Cache failures degrade to the underlying directory.
type CachedDirectory struct {
	Next   ProviderDirectory
	Client *redis.Client
	TTL    time.Duration
	logger *zap.Logger
}

func NewCachedDirectory(next ProviderDirectory, client *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{Next: next, Client: client, TTL: ttl, logger: utils.GetLogger()}
}

func cacheKey(providerID string) string {
	return utils.DirectoryCachePrefix + providerID
}

func (d *CachedDirectory) Lookup(ctx context.Context, providerID string) (*models.ProviderCard, error) {
	raw, err := d.Client.Get(ctx, cacheKey(providerID)).Result()
	switch {
	case err == nil:
		if raw == negativeEntry {
			return nil, nil
		}
		var card models.ProviderCard
		if jerr := json.Unmarshal([]byte(raw), &card); jerr == nil {
			return &card, nil
		}
		d.logger.Warn("Discarding unreadable directory entry", zap.String("providerID", providerID))
	case !errors.Is(err, redis.Nil):
		d.logger.Warn("Directory cache read failed", zap.String("providerID", providerID), zap.Error(err))
	}

	card, err := d.Next.Lookup(ctx, providerID)
	if err != nil {
		return nil, err
	}

	payload := []byte(negativeEntry)
	if card != nil {
		payload, err = json.Marshal(card)
		if err != nil {
			return card, nil
		}
	}
	if err := d.Client.Set(ctx, cacheKey(providerID), payload, d.TTL).Err(); err != nil {
		d.logger.Warn("Directory cache write failed", zap.String("providerID", providerID), zap.Error(err))
	}
	return card, nil
}

func (d *CachedDirectory) Invalidate(ctx context.Context, providerID string) error {
	if err := d.Client.Del(ctx, cacheKey(providerID)).Err(); err != nil {
		return err
	}
	return d.Next.Invalidate(ctx, providerID)
}
