package dock

import (
	"encoding/json"

	"github.com/vividtools/vivid-ide/errors"
	"github.com/vividtools/vivid-ide/state"
)

// layoutBlob is the persisted form: the tree plus the set of closed panels,
// so a restore knows which panels were deliberately removed rather than
// simply unknown.
type layoutBlob struct {
	Version int       `json:"version"`
	Root    *Node     `json:"root"`
	Closed  []PanelID `json:"closed,omitempty"`
}

const layoutVersion = 1

// Serialize encodes the layout as an opaque blob.
func (m *Manager) Serialize() (string, error) {
	blob := layoutBlob{
		Version: layoutVersion,
		Root:    m.root,
		Closed:  m.closedPanels(),
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodePersistenceFailed, "failed to encode layout")
	}
	return string(data), nil
}

// Restore replaces the layout with a previously serialized blob. A blob
// that fails to decode or validate leaves the current layout untouched.
func (m *Manager) Restore(blob string) error {
	var decoded layoutBlob
	if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
		return errors.Wrap(err, errors.ErrCodePersistenceFailed, "failed to decode layout")
	}
	if decoded.Root == nil || !validNode(decoded.Root) {
		return errors.New(errors.ErrCodePersistenceFailed, "layout blob is malformed")
	}
	m.root = decoded.Root
	return nil
}

// SaveLayout persists the current layout to the state file.
func (m *Manager) SaveLayout() error {
	blob, err := m.Serialize()
	if err != nil {
		return err
	}
	if err := state.Set(state.KeyDockLayout, blob); err != nil {
		return errors.PersistenceFailed("write", state.KeyDockLayout, err)
	}
	return nil
}

// LoadLayout restores the persisted layout, if any. Returns false when no
// usable layout was found and the default stays in place.
func (m *Manager) LoadLayout() (bool, error) {
	blob, err := state.GetString(state.KeyDockLayout)
	if err != nil {
		return false, errors.PersistenceFailed("read", state.KeyDockLayout, err)
	}
	if blob == "" {
		return false, nil
	}
	if err := m.Restore(blob); err != nil {
		return false, err
	}
	return true, nil
}

// closedPanels lists the known panels missing from the tree.
func (m *Manager) closedPanels() []PanelID {
	present := make(map[PanelID]bool)
	WalkGroups(m.root, func(g *TabGroup) {
		for _, p := range g.Panels {
			present[p] = true
		}
	})

	var closed []PanelID
	for _, id := range AllPanels {
		if !present[id] {
			closed = append(closed, id)
		}
	}
	return closed
}

// validNode checks structural sanity: every node is exactly a split or a
// group, splits have two children, ratios stay in range, panel IDs are known.
func validNode(n *Node) bool {
	if n == nil {
		return false
	}
	if (n.Split == nil) == (n.Tabs == nil) {
		return false
	}
	if n.Tabs != nil {
		g := n.Tabs
		if g.Active < 0 || (len(g.Panels) > 0 && g.Active >= len(g.Panels)) {
			return false
		}
		for _, p := range g.Panels {
			if !p.Valid() {
				return false
			}
		}
		return true
	}
	s := n.Split
	if s.Orientation != Row && s.Orientation != Column {
		return false
	}
	if s.Ratio <= 0 || s.Ratio >= 1 {
		return false
	}
	return validNode(s.First) && validNode(s.Second)
}
