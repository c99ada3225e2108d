package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	m := NewCSRFManager("csrf-secret")
	sess := newSession()

	token, err := m.EnsureToken(sess)
	require.NoError(t, err)
	again, err := m.EnsureToken(sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, m.VerifyToken(sess, token))
	assert.ErrorIs(t, m.VerifyToken(sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(sess, token+"x"), ErrCSRFTokenMismatch)

	rotated, err := m.Rotate(sess)
	require.NoError(t, err)
	assert.NotEqual(t, token, rotated)
	assert.ErrorIs(t, m.VerifyToken(sess, token), ErrCSRFTokenMismatch)
}

func TestCSRFTokenBoundToSession(t *testing.T) {
	m := NewCSRFManager("csrf-secret")
	first := newSession()
	token, _ := m.EnsureToken(first)

	second := newSession()
	second.Set(CSRFSessionKey, token)
	assert.ErrorIs(t, m.VerifyToken(second, token), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(nil, token), ErrCSRFTokenMissing)
}

func TestSubmitGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	guard := NewSubmitGuard(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	ctx := context.Background()
	key := guard.Issue()

	require.NoError(t, guard.Claim(ctx, "pembelian", key))
	assert.ErrorIs(t, guard.Claim(ctx, "pembelian", key), ErrDuplicateSubmit)
	assert.NoError(t, guard.Claim(ctx, "lain", key))

	require.NoError(t, guard.Release(ctx, "pembelian", key))
	assert.NoError(t, guard.Claim(ctx, "pembelian", key))
	assert.Error(t, guard.Claim(ctx, "pembelian", ""))
}
