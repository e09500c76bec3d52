package dock

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayoutShowsEveryRegion(t *testing.T) {
	m := NewManager()

	assert.Equal(t, Visible, m.Visibility(PanelEditor))
	assert.Equal(t, Visible, m.Visibility(PanelPreview))
	assert.Equal(t, Visible, m.Visibility(PanelInspector))
	assert.Equal(t, Visible, m.Visibility(PanelConsole))

	// Terminal and performance share the bottom group behind console.
	assert.Equal(t, InactiveTab, m.Visibility(PanelTerminal))
	assert.Equal(t, InactiveTab, m.Visibility(PanelPerformance))
}

func TestShowActivatesBackgroundTab(t *testing.T) {
	m := NewManager()

	m.Show(PanelTerminal)
	assert.Equal(t, Visible, m.Visibility(PanelTerminal))
	assert.Equal(t, InactiveTab, m.Visibility(PanelConsole))
}

func TestShowVisiblePanelIsNoop(t *testing.T) {
	m := NewManager()
	before, err := m.Serialize()
	require.NoError(t, err)

	m.Show(PanelEditor)
	after, err := m.Serialize()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHideRemovesPanelAndCollapsesSplit(t *testing.T) {
	m := NewManager()

	m.Hide(PanelInspector)
	assert.Equal(t, Absent, m.Visibility(PanelInspector))

	// The preview keeps its region after its sibling collapsed away.
	assert.Equal(t, Visible, m.Visibility(PanelPreview))
	assert.Equal(t, Visible, m.Visibility(PanelEditor))
}

func TestShowRecreatesClosedPanel(t *testing.T) {
	m := NewManager()

	m.Hide(PanelInspector)
	require.Equal(t, Absent, m.Visibility(PanelInspector))

	m.Show(PanelInspector)
	assert.Equal(t, Visible, m.Visibility(PanelInspector))
}

func TestShowRecreatesWhenWholeRegionGone(t *testing.T) {
	m := NewManager()

	// Close the entire bottom group.
	m.Hide(PanelConsole)
	m.Hide(PanelTerminal)
	m.Hide(PanelPerformance)
	require.Equal(t, Absent, m.Visibility(PanelTerminal))

	// No related group survives, so the terminal splits off the root again.
	m.Show(PanelTerminal)
	assert.Equal(t, Visible, m.Visibility(PanelTerminal))
	assert.Equal(t, Visible, m.Visibility(PanelEditor))
}

func TestToggle(t *testing.T) {
	m := NewManager()

	m.Toggle(PanelConsole)
	assert.Equal(t, Absent, m.Visibility(PanelConsole))

	m.Toggle(PanelConsole)
	assert.Equal(t, Visible, m.Visibility(PanelConsole))
}

func TestSerializeRoundTrip(t *testing.T) {
	m := NewManager()

	// Exercise the interesting shapes: one closed panel, one tabbed group
	// with a non-default active tab.
	m.Hide(PanelPreview)
	m.Show(PanelPerformance)

	blob, err := m.Serialize()
	require.NoError(t, err)

	restored := NewManager()
	require.NoError(t, restored.Restore(blob))

	assert.Equal(t, Absent, restored.Visibility(PanelPreview))
	assert.Equal(t, Visible, restored.Visibility(PanelPerformance))
	assert.Equal(t, InactiveTab, restored.Visibility(PanelConsole))
	assert.Equal(t, InactiveTab, restored.Visibility(PanelTerminal))

	if diff := cmp.Diff(m.Root(), restored.Root()); diff != "" {
		t.Errorf("layout tree changed across round trip (-want +got):\n%s", diff)
	}
}

func TestRestoreRejectsMalformedBlob(t *testing.T) {
	m := NewManager()
	before := m.VisiblePanels()

	assert.Error(t, m.Restore("not json"))
	assert.Error(t, m.Restore(`{"version":1}`))
	assert.Error(t, m.Restore(`{"version":1,"root":{"tabs":{"panels":["bogus"],"active":0}}}`))

	// Failed restores leave the layout untouched.
	assert.Equal(t, before, m.VisiblePanels())
}

func TestSaveAndLoadLayout(t *testing.T) {
	t.Setenv("VIVID_HOME", t.TempDir())

	m := NewManager()
	m.Hide(PanelPreview)
	m.Show(PanelTerminal)
	require.NoError(t, m.SaveLayout())

	restored := NewManager()
	found, err := restored.LoadLayout()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Absent, restored.Visibility(PanelPreview))
	assert.Equal(t, Visible, restored.Visibility(PanelTerminal))
}

func TestActivateNextCyclesTabs(t *testing.T) {
	m := NewManager()

	require.Equal(t, Visible, m.Visibility(PanelConsole))
	m.ActivateNext(PanelConsole)
	assert.Equal(t, Visible, m.Visibility(PanelTerminal))
	m.ActivateNext(PanelTerminal)
	assert.Equal(t, Visible, m.Visibility(PanelPerformance))
	m.ActivateNext(PanelPerformance)
	assert.Equal(t, Visible, m.Visibility(PanelConsole))
}
