package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wardwatch/grievance-service/internal/domain"
)

const userCachePrefix = "users:by-id:"

// CachedUserLookup serves account reads for request authentication from Redis.
// Cached entries never carry the password hash.
type CachedUserLookup struct {
	inner  UserLookup
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserLookup wraps inner. A nil client or zero ttl disables caching.
func NewCachedUserLookup(inner UserLookup, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedUserLookup {
	return &CachedUserLookup{inner: inner, client: client, ttl: ttl, logger: logger}
}

type cachedUser struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Ward      string      `json:"ward"`
	Phone     string      `json:"phone"`
	GoogleID  *string     `json:"google_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (c *CachedUserLookup) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.inner.GetByID(ctx, id)
	}

	raw, err := c.client.Get(ctx, userCachePrefix+id).Bytes()
	switch {
	case err == nil:
		var entry cachedUser
		if jsonErr := json.Unmarshal(raw, &entry); jsonErr == nil {
			return entry.toDomain(), nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
	}

	user, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(fromDomainUser(user))
	if err == nil {
		if setErr := c.client.Set(ctx, userCachePrefix+id, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("user cache write failed", zap.String("user_id", id), zap.Error(setErr))
		}
	}
	return user, nil
}

// Invalidate drops the cached entry for id.
func (c *CachedUserLookup) Invalidate(ctx context.Context, id string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, userCachePrefix+id).Err(); err != nil {
		c.logger.Warn("user cache invalidate failed", zap.String("user_id", id), zap.Error(err))
	}
}

func fromDomainUser(u *domain.User) cachedUser {
	return cachedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Ward:      u.Ward,
		Phone:     u.Phone,
		GoogleID:  u.GoogleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (e cachedUser) toDomain() *domain.User {
	return &domain.User{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Role:      e.Role,
		Ward:      e.Ward,
		Phone:     e.Phone,
		GoogleID:  e.GoogleID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
