// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSecret(t *testing.T, dir, key, value string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, key), []byte(value), 0o644))
}

func TestLoadTrimsValues(t *testing.T) {
	dir := t.TempDir()
	seedSecret(t, dir, "anthropic-api-key", "  sk-ant-abc123  \n")
	seedSecret(t, dir, "webhook-token", "tok_xyz789")

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"anthropic-api-key": "sk-ant-abc123",
		"webhook-token":     "tok_xyz789",
	}, got)
}

func TestLoadMissingDirectory(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSkipsNonSecrets(t *testing.T) {
	dir := t.TempDir()
	seedSecret(t, dir, "anthropic-api-key", "sk-ant-real")
	seedSecret(t, dir, ".gitkeep", "")
	seedSecret(t, dir, ".hidden-key", "never loaded")
	seedSecret(t, dir, "empty-key", "")
	seedSecret(t, dir, "whitespace-only", "   \n\t  ")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	got, err := Load(dir)
	require.NoError(t, err)
	// Only the real key survives: dotfiles, directories, and files that
	// trim to nothing are all ignored.
	assert.Equal(t, map[string]string{"anthropic-api-key": "sk-ant-real"}, got)
}

func TestLoadEmptyDirectory(t *testing.T) {
	got, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	dir := t.TempDir()
	seedSecret(t, dir, "anthropic-api-key", "sk-ant-good")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The readable key still loads; the unreadable one is skipped with a
	// warning rather than failing the whole load.
	assert.Equal(t, "sk-ant-good", got["anthropic-api-key"])
	assert.NotContains(t, got, "bad-key")
}
