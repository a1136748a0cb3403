package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wardwatch/grievance-service/internal/domain"
)

// ActivityStream is an append-only, length-capped log of complaint activity.
type ActivityStream interface {
	Append(ctx context.Context, entry domain.ActivityEntry) (string, error)
	Latest(ctx context.Context, count int64) ([]domain.ActivityEntry, error)
}

type redisActivityStream struct {
	client *redis.Client
	key    string
	maxLen int64
}

// NewRedisActivityStream stores entries in the Redis stream at key, trimmed to about maxLen.
func NewRedisActivityStream(client *redis.Client, key string, maxLen int64) ActivityStream {
	return &redisActivityStream{client: client, key: key, maxLen: maxLen}
}

func (s *redisActivityStream) Append(ctx context.Context, entry domain.ActivityEntry) (string, error) {
	args := &redis.XAddArgs{
		Stream: s.key,
		Values: activityValues(entry),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.client.XAdd(ctx, args).Result()
}

func (s *redisActivityStream) Latest(ctx context.Context, count int64) ([]domain.ActivityEntry, error) {
	if count <= 0 {
		count = 50
	}
	msgs, err := s.client.XRevRangeN(ctx, s.key, "+", "-", count).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.ActivityEntry, 0, len(msgs))
	for _, msg := range msgs {
		entries = append(entries, activityFromValues(msg.ID, msg.Values))
	}
	return entries, nil
}

func activityValues(e domain.ActivityEntry) map[string]any {
	return map[string]any{
		"type":         e.Type,
		"complaint_id": e.ComplaintID,
		"actor_id":     e.ActorID,
		"actor_role":   string(e.ActorRole),
		"ward":         e.Ward,
		"detail":       e.Detail,
		"occurred_at":  e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

func activityFromValues(id string, values map[string]any) domain.ActivityEntry {
	str := func(key string) string {
		if v, ok := values[key].(string); ok {
			return v
		}
		return ""
	}
	entry := domain.ActivityEntry{
		ID:          id,
		Type:        str("type"),
		ComplaintID: str("complaint_id"),
		ActorID:     str("actor_id"),
		ActorRole:   domain.Role(str("actor_role")),
		Ward:        str("ward"),
		Detail:      str("detail"),
	}
	if ts, err := time.Parse(time.RFC3339Nano, str("occurred_at")); err == nil {
		entry.OccurredAt = ts
	}
	return entry
}
