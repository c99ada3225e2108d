package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CSRF_SECRET", "rahasia")
	t.Setenv("APP_ENV", "development")
	t.Setenv("BACKEND_URL", "http://api.local/api")
	t.Setenv("OWNERSHIP_POLICY", "preserve")
	t.Setenv("AUDIT_RETENTION_DAYS", "365")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int32(4), cfg.PGMaxConn)
	assert.Equal(t, "30 2 * * *", cfg.AuditPruneCron)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRedisOptions(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	opts := cfg.Redis()
	assert.Equal(t, "redis:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "redis:6380", opts.QueueOpts().Addr)
	assert.Equal(t, 2, opts.QueueOpts().DB)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		key, value string
	}{
		"missing secret":   {"CSRF_SECRET", ""},
		"unknown policy":   {"OWNERSHIP_POLICY", "steal"},
		"backend scheme":   {"BACKEND_URL", "ftp://api.local"},
		"no retention":     {"AUDIT_RETENTION_DAYS", "0"},
		"invalid duration": {"SESSION_TTL", "sehari"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestClaimPolicyIsNormalised(t *testing.T) {
	for _, value := range []string{"Claim", " claim", "CLAIM \t"} {
		t.Run(value, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("OWNERSHIP_POLICY", value)

			cfg, err := LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, "claim", cfg.OwnershipPolicy)
		})
	}
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, &Config{AppEnv: "production", LogFormat: "json"}).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"env":"production"`)

	buf.Reset()
	logger := newLogger(&buf, &Config{AppEnv: "production", LogFormat: "pretty"})
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
