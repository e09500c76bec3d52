package store

import (
	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/errors"
	"github.com/vividtools/vivid-ide/state"
)

// loadLayout restores the persisted collapse flags. Any read failure falls
// back to the zero layout; stale-but-default beats refusing to start.
func loadLayout(logger *logrus.Entry) LayoutState {
	val, ok, err := state.Get(state.KeyLayoutCollapse)
	if err != nil {
		logger.WithError(err).Warn("Failed to read persisted layout")
		return LayoutState{}
	}
	if !ok {
		return LayoutState{}
	}

	flags, ok := val.(map[string]interface{})
	if !ok {
		return LayoutState{}
	}

	boolAt := func(key string) bool {
		b, _ := flags[key].(bool)
		return b
	}
	return LayoutState{
		LeftCollapsed:   boolAt("left_collapsed"),
		RightCollapsed:  boolAt("right_collapsed"),
		BottomCollapsed: boolAt("bottom_collapsed"),
	}
}

// persistLayout writes the collapse flags to the state file.
func persistLayout(layout LayoutState) error {
	err := state.Set(state.KeyLayoutCollapse, map[string]interface{}{
		"left_collapsed":   layout.LeftCollapsed,
		"right_collapsed":  layout.RightCollapsed,
		"bottom_collapsed": layout.BottomCollapsed,
	})
	if err != nil {
		return errors.PersistenceFailed("write", "layout_collapse", err)
	}
	return nil
}
