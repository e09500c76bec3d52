package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/vividtools/vivid-ide/config"
)

type testKeyMap struct {
	ToggleConsole key.Binding
	Clear         key.Binding
}

func newTestKeyMap() testKeyMap {
	return testKeyMap{
		ToggleConsole: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "toggle console"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
	}
}

func TestApplyOverridesRewritesKeys(t *testing.T) {
	km := newTestKeyMap()
	ApplyOverrides(&km, config.KeybindingSectionConfig{
		"toggle_console": {"f9", "alt+c"},
	})

	assert.Equal(t, []string{"f9", "alt+c"}, km.ToggleConsole.Keys())
	assert.Equal(t, "f9", km.ToggleConsole.Help().Key)
	assert.Equal(t, "toggle console", km.ToggleConsole.Help().Desc)
	// Untouched actions keep their defaults.
	assert.Equal(t, []string{"ctrl+l"}, km.Clear.Keys())
}

func TestApplyOverridesIgnoresUnknownActions(t *testing.T) {
	km := newTestKeyMap()
	ApplyOverrides(&km, config.KeybindingSectionConfig{
		"no_such_action": {"x"},
	})
	assert.Equal(t, []string{"f3"}, km.ToggleConsole.Keys())
}

func TestApplyOverridesNilSafe(t *testing.T) {
	km := newTestKeyMap()
	ApplyOverrides(&km, nil)
	ApplyOverrides(km, config.KeybindingSectionConfig{"clear": {"x"}}) // not a pointer
	assert.Equal(t, []string{"ctrl+l"}, km.Clear.Keys())
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "toggle_console", ToSnakeCase("ToggleConsole"))
	assert.Equal(t, "up", ToSnakeCase("Up"))
	assert.Equal(t, "big_step", ToSnakeCase("BigStep"))
}
