package screenstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the latest Summary per plant and screen.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func summaryKey(plant, screen string) string {
	return fmt.Sprintf("shopfloor:plant:%s:screen:%s", plant, screen)
}

func plantScreensKey(plant string) string {
	return fmt.Sprintf("shopfloor:plant:%s:screens", plant)
}

func (r *RedisStore) SetSummary(ctx context.Context, s *Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, summaryKey(s.Plant, s.Screen), data, 0)
	pipe.SAdd(ctx, plantScreensKey(s.Plant), s.Screen)
	_, err = pipe.Exec(ctx)
	return err
}

// GetSummary returns nil, nil when nothing is cached.
func (r *RedisStore) GetSummary(ctx context.Context, plant, screen string) (*Summary, error) {
	data, err := r.client.Get(ctx, summaryKey(plant, screen)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Summary
	return &s, json.Unmarshal(data, &s)
}

func (r *RedisStore) PlantScreens(ctx context.Context, plant string) ([]string, error) {
	return r.client.SMembers(ctx, plantScreensKey(plant)).Result()
}

func (r *RedisStore) FlushPlant(ctx context.Context, plant string) error {
	screens, err := r.PlantScreens(ctx, plant)
	if err != nil {
		return err
	}
	keys := []string{plantScreensKey(plant)}
	for _, s := range screens {
		keys = append(keys, summaryKey(plant, s))
	}
	return r.client.Del(ctx, keys...).Err()
}
