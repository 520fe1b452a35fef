package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	return dir
}

func TestMustLoad(t *testing.T) {
	public := `
threads_per_page: 20
threads_tail: 5
readtracker_cutoff: 10
jwt_ttl: 1h
ranking:
  length: 7
  size: 3
  ttl: 30m
  schedule: "@hourly"
`
	private := `
jwt_key: secret
pg:
  host: localhost
  port: 5432
  user: forum
  password: pass
  dbname: forum
redis:
  addr: localhost:6379
`
	cfg := MustLoad(writeConfig(t, public, private))

	assert.Equal(t, 20, cfg.Public.ThreadsPerPage)
	assert.Equal(t, 5, cfg.Public.ThreadsTail)
	assert.Equal(t, 10*24*time.Hour, cfg.ReadTrackerCutoff())
	assert.Equal(t, time.Hour, cfg.JwtTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RankingLength())
	assert.Equal(t, 3, cfg.Public.Ranking.Size)
	assert.Equal(t, 30*time.Minute, cfg.Public.Ranking.TTL)
	assert.Equal(t, "@hourly", cfg.Public.Ranking.Schedule)
	assert.Equal(t, "secret", cfg.JwtKey())
	assert.Equal(t, "localhost", cfg.Private.Pg.Host)
	assert.Equal(t, 5432, cfg.Private.Pg.Port)
	assert.Equal(t, "localhost:6379", cfg.Private.Redis.Addr)
}

func TestMustLoad_Defaults(t *testing.T) {
	cfg := MustLoad(writeConfig(t, "log_level: debug\n", "jwt_key: k\n"))

	assert.Equal(t, 25, cfg.Public.ThreadsPerPage)
	assert.Equal(t, 40*24*time.Hour, cfg.ReadTrackerCutoff())
	assert.Equal(t, 24, cfg.Public.SplitPostsLimit)
	assert.Equal(t, "@daily", cfg.Public.Ranking.Schedule)
	assert.Equal(t, "forum-api", cfg.Public.Tracing.ServiceName)
	assert.Equal(t, 30.0, cfg.Public.RateLimit.PerMinute)
	assert.Equal(t, 10, cfg.Public.RateLimit.Burst)
}

func TestMustLoad_MissingJwtKey(t *testing.T) {
	dir := writeConfig(t, "threads_per_page: 20\n", "pg:\n  host: localhost\n")
	assert.Panics(t, func() { MustLoad(dir) })
}

func TestMustLoad_MissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}
