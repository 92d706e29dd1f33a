package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/commentbox/config"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.NotNil(t, root.RunE, "bare invocation serves")
	assert.NotNil(t, root.Flags().Lookup("port"))
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "cmd-secret")
	t.Setenv("PORT", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("LOG_LEVEL", "")

	root := NewRootCmd()
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)

	missing := filepath.Join(t.TempDir(), "absent.yaml")
	require.NoError(t, root.PersistentFlags().Set("config", missing))
	require.NoError(t, root.PersistentFlags().Set("log-level", "debug"))
	require.NoError(t, serve.Flags().Set("port", "9191"))

	cfg, err := loadConfig(serve)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.App.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "cmd-secret", cfg.Auth.JWTSecret)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TOKEN", "")

	root := NewRootCmd()
	require.NoError(t, root.PersistentFlags().Set("config", filepath.Join(t.TempDir(), "absent.yaml")))

	_, err := loadConfig(root)
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}
