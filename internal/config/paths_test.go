package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trustlink/internal/constants"
)

func TestGlobalConfigDir_Success(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := GlobalConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.TrustlinkHome), dir)
}

func TestGlobalConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".trustlink", "config.yaml"), path)
}

func TestProjectConfigPaths(t *testing.T) {
	assert.Equal(t, ".trustlink", ProjectConfigDir())
	assert.Equal(t, filepath.Join(".trustlink", "config.yaml"), ProjectConfigPath())
	assert.False(t, filepath.IsAbs(ProjectConfigPath()))
}
