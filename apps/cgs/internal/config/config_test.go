package config

import (
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/cgs/apps/cgs/internal/clone"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(memoryfs.New(), "", env(nil))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "cgs", cfg.UserAgent)
	assert.Equal(t, clone.DefaultMaxDepth, cfg.MaxDepth)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Equal(t, clone.FullPath, cfg.Mode())
}

func TestLoad_File(t *testing.T) {
	fs := memoryfs.New()
	require.NoError(t, vfs.WriteFile(fs, "cgs.yaml", []byte(`
apiURL: http://localhost:9090
userAgent: my-agent
maxDepth: 3
httpTimeout: 30s
currentDirOnly: true
`), 0o644))

	cfg, err := Load(fs, "cgs.yaml", env(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090", cfg.APIURL)
	assert.Equal(t, "my-agent", cfg.UserAgent)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, clone.CurrentDirOnly, cfg.Mode())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	fs := memoryfs.New()
	require.NoError(t, vfs.WriteFile(fs, "cgs.yaml", []byte("apiURL: http://mock\n"), 0o644))

	cfg, err := Load(fs, "cgs.yaml", env(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://mock", cfg.APIURL)
	assert.Equal(t, "cgs", cfg.UserAgent)
	assert.Equal(t, clone.DefaultMaxDepth, cfg.MaxDepth)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := memoryfs.New()
	require.NoError(t, vfs.WriteFile(fs, "cgs.yaml", []byte("apiURL: http://file\nmaxDepth: 3\n"), 0o644))

	cfg, err := Load(fs, "cgs.yaml", env(map[string]string{
		EnvAPIURL:      "http://env",
		EnvUserAgent:   "env-agent",
		EnvMaxDepth:    "0",
		EnvHTTPTimeout: "1m",
		EnvOTelEnabled: "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://env", cfg.APIURL)
	assert.Equal(t, "env-agent", cfg.UserAgent)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, time.Minute, cfg.HTTPTimeout)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoad_Errors(t *testing.T) {
	fs := memoryfs.New()
	require.NoError(t, vfs.WriteFile(fs, "bad.yaml", []byte("maxDepth: [nope"), 0o644))

	tests := []struct {
		name string
		path string
		env  map[string]string
		want string
	}{
		{name: "missing file", path: "absent.yaml", want: "read config"},
		{name: "malformed yaml", path: "bad.yaml", want: "parse config"},
		{name: "max depth not a number", env: map[string]string{EnvMaxDepth: "deep"}, want: EnvMaxDepth},
		{name: "bad timeout", env: map[string]string{EnvHTTPTimeout: "soon"}, want: EnvHTTPTimeout},
		{name: "negative depth", env: map[string]string{EnvMaxDepth: "-1"}, want: "maxDepth must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(fs, tt.path, env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
