package runtime

import (
	"context"
)

// Client is the typed command surface of the runtime bridge. Every method is
// one named command; all of them suspend on the process boundary and honor
// the context deadline.
type Client struct {
	bridge *Bridge
}

// NewClient wraps a Bridge with the typed command surface.
func NewClient(bridge *Bridge) *Client {
	return &Client{bridge: bridge}
}

// Bridge exposes the underlying transport, mainly for event subscription.
func (c *Client) Bridge() *Bridge {
	return c.bridge
}

// IsReady reports whether the runtime has finished initializing.
func (c *Client) IsReady(ctx context.Context) (bool, error) {
	var ready bool
	err := c.bridge.Invoke(ctx, "is_vivid_ready", nil, &ready)
	return ready, err
}

// ProjectInfo returns the currently loaded project, if any.
func (c *Client) ProjectInfo(ctx context.Context) (ProjectInfo, error) {
	var info ProjectInfo
	err := c.bridge.Invoke(ctx, "get_project_info", nil, &info)
	return info, err
}

// CompileStatus returns the outcome of the last chain compilation.
func (c *Client) CompileStatus(ctx context.Context) (CompileStatusInfo, error) {
	var status CompileStatusInfo
	err := c.bridge.Invoke(ctx, "get_compile_status", nil, &status)
	return status, err
}

// Operators returns the operator chain.
func (c *Client) Operators(ctx context.Context) ([]OperatorInfo, error) {
	var ops []OperatorInfo
	err := c.bridge.Invoke(ctx, "get_operators", nil, &ops)
	return ops, err
}

// OperatorParams returns the parameter declarations and values of one operator.
func (c *Client) OperatorParams(ctx context.Context, opName string) ([]ParamInfo, error) {
	var params []ParamInfo
	err := c.bridge.Invoke(ctx, "get_operator_params",
		map[string]string{"op_name": opName}, &params)
	return params, err
}

// SetParam sets a parameter value. Values always travel as four components.
func (c *Client) SetParam(ctx context.Context, opName, paramName string, value [4]float32) (bool, error) {
	var ok bool
	err := c.bridge.Invoke(ctx, "set_param", map[string]interface{}{
		"op_name":    opName,
		"param_name": paramName,
		"value":      value,
	}, &ok)
	return ok, err
}

// LoadProject loads the project at path.
func (c *Client) LoadProject(ctx context.Context, path string) error {
	return c.bridge.Invoke(ctx, "load_project", map[string]string{"path": path}, nil)
}

// ReloadProject recompiles and live-swaps the chain.
func (c *Client) ReloadProject(ctx context.Context) error {
	return c.bridge.Invoke(ctx, "reload_project", nil, nil)
}

// SelectOperator informs the runtime of the new selection.
func (c *Client) SelectOperator(ctx context.Context, name string) error {
	return c.bridge.Invoke(ctx, "select_operator", map[string]string{"name": name}, nil)
}

// SelectedOperator returns the runtime's current selection; empty when none.
func (c *Client) SelectedOperator(ctx context.Context) (string, error) {
	var name string
	err := c.bridge.Invoke(ctx, "get_selected_operator", nil, &name)
	return name, err
}

// ToggleVisualizer toggles the runtime's built-in node graph overlay.
func (c *Client) ToggleVisualizer(ctx context.Context) error {
	return c.bridge.Invoke(ctx, "toggle_visualizer", nil, nil)
}

// MouseMove forwards a pointer position in preview-surface coordinates.
func (c *Client) MouseMove(ctx context.Context, x, y float32) error {
	return c.bridge.Invoke(ctx, "input_mouse_move",
		map[string]float32{"x": x, "y": y}, nil)
}

// MouseButton forwards a button press or release.
func (c *Client) MouseButton(ctx context.Context, button int, pressed bool) error {
	return c.bridge.Invoke(ctx, "input_mouse_button", map[string]interface{}{
		"button":  button,
		"pressed": pressed,
	}, nil)
}

// Scroll forwards a scroll delta.
func (c *Client) Scroll(ctx context.Context, dx, dy float32) error {
	return c.bridge.Invoke(ctx, "input_scroll",
		map[string]float32{"dx": dx, "dy": dy}, nil)
}

// PerformanceStats returns the runtime's rolling performance snapshot.
func (c *Client) PerformanceStats(ctx context.Context) (PerformanceStats, error) {
	var stats PerformanceStats
	err := c.bridge.Invoke(ctx, "get_performance_stats", nil, &stats)
	return stats, err
}

// BundleProject exports the project as a standalone app.
func (c *Client) BundleProject(ctx context.Context, opts BundleOptions) (BundleResult, error) {
	var result BundleResult
	err := c.bridge.Invoke(ctx, "bundle_project", opts, &result)
	return result, err
}

// ReadFile reads a file through the runtime's file bridge.
func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	var content string
	err := c.bridge.Invoke(ctx, "read_file", map[string]string{"path": path}, &content)
	return content, err
}

// WriteFile writes a file through the runtime's file bridge.
func (c *Client) WriteFile(ctx context.Context, path, content string) error {
	return c.bridge.Invoke(ctx, "write_file", map[string]string{
		"path":    path,
		"content": content,
	}, nil)
}

// CreateProject scaffolds a new project from a template.
func (c *Client) CreateProject(ctx context.Context, path, name, template string) error {
	return c.bridge.Invoke(ctx, "create_project", map[string]string{
		"path":     path,
		"name":     name,
		"template": template,
	}, nil)
}
