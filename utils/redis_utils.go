package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// TrendingTag is one entry of the cached tag leaderboard.
type TrendingTag struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

const (
	trendingTagsKey = "trending_tags"
	// TrendingTagsTTL bounds staleness of the leaderboard. Recomputing it
	// scans every post's tags, so it is not done per request.
	TrendingTagsTTL = time.Minute
)

type RedisClient struct {
	inner *redis.Client
}

func GetRedisClient() *RedisClient {
	return &RedisClient{
		inner: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
			Password: os.Getenv("REDIS_PASSWD"),
			DB:       0, // use default DB
		})}
}

// GetCachedTrendingTags returns the cached leaderboard, or (nil, false, nil)
// on a cache miss.
func (r *RedisClient) GetCachedTrendingTags(ctx context.Context) ([]TrendingTag, bool, error) {
	raw, err := r.inner.Get(ctx, trendingTagsKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var tags []TrendingTag
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, false, err
	}
	return tags, true, nil
}

// SetCachedTrendingTags stores the leaderboard with the standard TTL.
func (r *RedisClient) SetCachedTrendingTags(ctx context.Context, tags []TrendingTag) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, trendingTagsKey, raw, TrendingTagsTTL).Err()
}
