package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMissingSessionFileStartsFresh(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "session.json"))

	require.False(t, c.IsLoggedIn())
	url, userID, _ := c.Status()
	require.Equal(t, defaultServerURL, url)
	require.Empty(t, userID)
}

func TestCorruptSessionFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	c := NewClientAt(path)

	require.False(t, c.IsLoggedIn())
	url, _, _ := c.Status()
	require.Equal(t, defaultServerURL, url)
}

func TestSessionFileWithoutServerURLGetsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"t"}`), 0600))

	c := NewClientAt(path)

	require.True(t, c.IsLoggedIn())
	url, _, _ := c.Status()
	require.Equal(t, defaultServerURL, url)
}
