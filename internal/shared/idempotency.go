package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SubmitGuard rejects a second submission of the same rendered form, such
// as a double-clicked purchase button.
type SubmitGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewSubmitGuard constructs the guard.
func NewSubmitGuard(client redis.UniversalClient, ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SubmitGuard{client: client, ttl: ttl}
}

// Issue returns a fresh form key.
func (g *SubmitGuard) Issue() string {
	return uuid.NewString()
}

// Claim marks key as used within scope. A reused key yields
// ErrDuplicateSubmit.
func (g *SubmitGuard) Claim(ctx context.Context, scope, key string) error {
	if g == nil {
		return nil
	}
	if key == "" || scope == "" {
		return errors.New("submit guard: scope and key required")
	}
	ok, err := g.client.SetNX(ctx, g.redisKey(scope, key), time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateSubmit
	}
	return nil
}

// Release frees key so a failed submission can be retried.
func (g *SubmitGuard) Release(ctx context.Context, scope, key string) error {
	if g == nil || key == "" {
		return nil
	}
	return g.client.Del(ctx, g.redisKey(scope, key)).Err()
}

func (g *SubmitGuard) redisKey(scope, key string) string {
	return "submit:" + scope + ":" + key
}
