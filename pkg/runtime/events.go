package runtime

import "encoding/json"

// Event names delivered over the event subscription.
const (
	EventInitialized      = "vivid-initialized"
	EventProjectLoaded    = "vivid-project-loaded"
	EventCompileStatus    = "vivid-compile-status"
	EventOperatorSelected = "vivid-operator-selected"
	EventOutput           = "vivid-output"
	EventMenuAction       = "menu-action"
)

// Event is one named event with its raw payload. Callers decode the payload
// with the typed Decode* helpers.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InitializedPayload accompanies vivid-initialized and vivid-project-loaded.
type InitializedPayload struct {
	Success       bool   `json:"success"`
	ProjectLoaded bool   `json:"project_loaded"`
	ProjectPath   string `json:"project_path,omitempty"`
}

// OperatorSelectedPayload accompanies vivid-operator-selected. An empty name
// means the selection was cleared.
type OperatorSelectedPayload struct {
	Name string `json:"name,omitempty"`
}

// OutputPayload accompanies vivid-output: one captured line of the runtime's
// stdout or stderr.
type OutputPayload struct {
	Stream string `json:"stream"` // "stdout" or "stderr"
	Text   string `json:"text"`
}

// DecodeInitialized decodes the payload of an initialized/project-loaded event.
func (e Event) DecodeInitialized() (InitializedPayload, error) {
	var p InitializedPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// DecodeCompileStatus decodes the payload of a compile-status event.
func (e Event) DecodeCompileStatus() (CompileStatusInfo, error) {
	var p CompileStatusInfo
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// DecodeOperatorSelected decodes the payload of an operator-selected event.
func (e Event) DecodeOperatorSelected() (OperatorSelectedPayload, error) {
	var p OperatorSelectedPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// DecodeOutput decodes the payload of an output event.
func (e Event) DecodeOutput() (OutputPayload, error) {
	var p OutputPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// DecodeMenuAction decodes the payload of a menu-action event: the action id.
func (e Event) DecodeMenuAction() (string, error) {
	var action string
	err := json.Unmarshal(e.Payload, &action)
	return action, err
}
