package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_OverridesDefaults(t *testing.T) {
	cfg, err := Decode([]byte(`
schema: ./signup.yaml
addr: ":9090"
log:
  format: json
session:
  backend: redis
  ttl: 5m
  redis:
    addr: redis:6379
    db: "2"
theme:
  manifest: theme.json
  variant: dark
`))
	require.NoError(t, err)

	assert.Equal(t, "./signup.yaml", cfg.Schema)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, BackendRedis, cfg.Sess.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Sess.TTL)
	assert.Equal(t, "formwizard_session", cfg.Sess.Cookie)
	assert.Equal(t, "redis:6379", cfg.Sess.Redis.Addr)
	assert.Equal(t, 2, cfg.Sess.Redis.DB)
	assert.Equal(t, "formwizard:session:", cfg.Sess.Redis.Prefix)
	assert.Equal(t, "dark", cfg.Theme.Variant)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "colour: blue\n",
		"bad duration":    "session:\n  ttl: soon\n",
		"bad backend":     "session:\n  backend: etcd\n",
		"negative ttl":    "session:\n  ttl: -1s\n",
		"malformed yaml":  "addr: [\n",
		"blank cookie":    "session:\n  cookie: \"\"\n",
		"redis sans addr": "session:\n  backend: redis\n  redis:\n    addr: \"\"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "formwizard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale: es\n"), 0o600))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "es", cfg.Locale)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
