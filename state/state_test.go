package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	t.Setenv("VIVID_HOME", t.TempDir())

	st, err := Load()
	require.NoError(t, err)
	require.Empty(t, st)

	require.NoError(t, Set(KeyMCPBannerDismissed, true))
	require.NoError(t, Set(KeyWindowSize, map[string]interface{}{"width": 220, "height": 60}))

	dismissed, err := GetBool(KeyMCPBannerDismissed)
	require.NoError(t, err)
	require.True(t, dismissed)

	val, ok, err := Get(KeyWindowSize)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, val)
}

func TestStateDelete(t *testing.T) {
	t.Setenv("VIVID_HOME", t.TempDir())

	require.NoError(t, Set(KeyDockLayout, "blob"))
	require.NoError(t, Delete(KeyDockLayout))

	_, ok, err := Get(KeyDockLayout)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetStringWrongType(t *testing.T) {
	t.Setenv("VIVID_HOME", t.TempDir())

	require.NoError(t, Set(KeyLayoutCollapse, 42))
	s, err := GetString(KeyLayoutCollapse)
	require.NoError(t, err)
	require.Equal(t, "", s)
}
