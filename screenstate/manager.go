package screenstate

import (
	"context"
	"log"

	"shopfloor/store"
)

// Manager provides write-through screen summaries: SQL first, then Redis.
// Redis is optional; without it every read goes to SQL.
type Manager struct {
	db    *store.DB
	redis *RedisStore
}

func NewManager(db *store.DB, redis *RedisStore) *Manager {
	return &Manager{db: db, redis: redis}
}

// Record logs an activation and refreshes the cached summary.
func (m *Manager) Record(ctx context.Context, s *Summary) error {
	entry := &store.FetchLog{
		Plant:       s.Plant,
		Screen:      s.Screen,
		OK:          s.OK,
		RecordCount: s.RecordCount,
		Error:       s.Error,
		DurationMS:  s.DurationMS,
	}
	if err := m.db.InsertFetchLog(entry); err != nil {
		return err
	}
	if m.redis != nil {
		if err := m.redis.SetSummary(ctx, s); err != nil {
			log.Printf("screenstate: redis set %s/%s: %v", s.Plant, s.Screen, err)
		}
	}
	return nil
}

// Latest reads the summary from Redis, falls back to SQL. It returns nil
// when the screen was never opened for the plant.
func (m *Manager) Latest(ctx context.Context, plant, screen string) (*Summary, error) {
	if m.redis != nil {
		s, err := m.redis.GetSummary(ctx, plant, screen)
		if err == nil && s != nil {
			return s, nil
		}
		if err != nil {
			log.Printf("screenstate: redis get %s/%s: %v", plant, screen, err)
		}
	}

	l, err := m.db.LatestFetchLog(plant, screen)
	if err != nil || l == nil {
		return nil, err
	}
	s := &Summary{
		Plant:       l.Plant,
		Screen:      l.Screen,
		OK:          l.OK,
		RecordCount: l.RecordCount,
		Error:       l.Error,
		DurationMS:  l.DurationMS,
		At:          l.CreatedAt,
	}
	if m.redis != nil {
		m.redis.SetSummary(ctx, s)
	}
	return s, nil
}

// Forget drops the cached summaries of a plant, e.g. on logout.
func (m *Manager) Forget(ctx context.Context, plant string) {
	if m.redis == nil {
		return
	}
	if err := m.redis.FlushPlant(ctx, plant); err != nil {
		log.Printf("screenstate: redis flush %s: %v", plant, err)
	}
}
