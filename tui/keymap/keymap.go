// Package keymap applies user keybinding overrides to keymap structs.
//
// Every panel and the app root declare their bindings as a struct of
// key.Binding fields. Users remap them in vivid.yml under a keybindings
// scope, with snake_case action names matching the CamelCase field names:
//
//	keybindings:
//	  app:
//	    toggle_console: ["F3"]
//	  console:
//	    clear: ["ctrl+k"]
package keymap

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/vividtools/vivid-ide/config"
)

// Section is a named group of bindings, used for help rendering.
type Section struct {
	Name     string
	Bindings []key.Binding
}

// SectionedKeyMap is implemented by keymaps that organize their bindings
// into named sections for the help overlay.
type SectionedKeyMap interface {
	Sections() []Section
}

// ApplyOverrides rewrites the key lists of a keymap struct from config.
// km must be a pointer to a struct; only key.Binding fields are touched,
// and embedded structs are processed recursively. The help text keeps the
// original description with the new primary key.
func ApplyOverrides(km interface{}, overrides config.KeybindingSectionConfig) {
	if len(overrides) == 0 {
		return
	}

	v := reflect.ValueOf(km)
	if v.Kind() != reflect.Ptr {
		return
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	applyRecursive(v, overrides)
}

func applyRecursive(v reflect.Value, overrides config.KeybindingSectionConfig) {
	t := v.Type()
	bindingType := reflect.TypeOf(key.Binding{})

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct && field.Type() != bindingType {
			applyRecursive(field, overrides)
			continue
		}
		if field.Type() != bindingType {
			continue
		}

		keys, ok := overrides[ToSnakeCase(t.Field(i).Name)]
		if !ok || len(keys) == 0 {
			continue
		}

		binding := field.Addr().Interface().(*key.Binding)
		desc := binding.Help().Desc
		binding.SetKeys(keys...)
		binding.SetHelp(keys[0], desc)
	}
}

// ToSnakeCase converts a CamelCase field name to the snake_case form used
// in config files ("ToggleConsole" -> "toggle_console").
func ToSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
