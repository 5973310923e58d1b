package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
database:
  type: sqlite
  path: test.db
jwt:
  secret: from-file
  expire_hours: 2
storage:
  type: local
  local_path: `+filepath.Join(t.TempDir(), "uploads")+`
cors:
  allowed_origins:
    - http://localhost:3000
graph:
  chapter_radius: 250
  seed: 9
`)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 250.0, cfg.Graph.ChapterRadius)
	assert.Equal(t, 100.0, cfg.Graph.KnowledgeRadiusMin)
	assert.Equal(t, uint64(9), cfg.Graph.Seed)
	assert.Equal(t, 300, cfg.Redis.CacheTTL)
	assert.Equal(t, 1000, cfg.RateLimit.MaxRequests)
	assert.DirExists(t, cfg.Storage.LocalPath)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Mode: "release"},
			Database: DatabaseConfig{Type: "mysql"},
			JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Graph:    GraphConfig{ChapterRadius: 300, KnowledgeRadiusMin: 100, KnowledgeRadiusMax: 150},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.JWT.Secret = "short"
	assert.ErrorContains(t, cfg.Validate(), "JWT secret")

	cfg = base()
	cfg.Database.Type = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unsupported database type")

	cfg = base()
	cfg.Graph.KnowledgeRadiusMax = 50
	assert.ErrorContains(t, cfg.Validate(), "invalid graph layout")
}

func TestLoadConfigReadsWorkingDirDotEnv(t *testing.T) {
	cfgDir := t.TempDir()
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, ".env"), []byte("GRAPH_SEED=4242\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workDir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("GRAPH_SEED", "")
	require.NoError(t, os.Unsetenv("GRAPH_SEED"))

	cfg, err := LoadConfig(cfgDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), cfg.Graph.Seed)
}

func TestLoadConfigDotEnvDoesNotOverrideEnv(t *testing.T) {
	cfgDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, ".env"), []byte("GRAPH_SEED=1\n"), 0644))
	t.Setenv("GRAPH_SEED", "7")

	cfg, err := LoadConfig(cfgDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Graph.Seed)
}
