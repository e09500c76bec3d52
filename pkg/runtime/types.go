package runtime

// ProjectInfo describes the project currently loaded by the runtime.
type ProjectInfo struct {
	Loaded      bool   `json:"loaded"`
	ProjectPath string `json:"project_path,omitempty"`
	ChainPath   string `json:"chain_path,omitempty"`
}

// CompileStatusInfo is the outcome of the last chain compilation.
type CompileStatusInfo struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	ErrorLine   int    `json:"error_line,omitempty"`
	ErrorColumn int    `json:"error_column,omitempty"`
}

// OperatorInfo describes one node of the operator chain.
type OperatorInfo struct {
	Name       string   `json:"name"`
	TypeName   string   `json:"type_name"`
	OutputKind string   `json:"output_kind"`
	Bypassed   bool     `json:"bypassed"`
	InputCount int      `json:"input_count"`
	Inputs     []string `json:"inputs"`
}

// ParamType tags the kind of an operator parameter. Inspector controls are
// constructed per variant; see tui/panels/inspector.
type ParamType string

const (
	ParamFloat ParamType = "Float"
	ParamInt   ParamType = "Int"
	ParamBool  ParamType = "Bool"
	ParamVec2  ParamType = "Vec2"
	ParamVec3  ParamType = "Vec3"
	ParamVec4  ParamType = "Vec4"
	ParamColor ParamType = "Color"
	ParamEnum  ParamType = "Enum"
)

// Components returns how many of the 4 value slots the type uses.
func (t ParamType) Components() int {
	switch t {
	case ParamVec2:
		return 2
	case ParamVec3:
		return 3
	case ParamVec4, ParamColor:
		return 4
	default:
		return 1
	}
}

// ParamInfo describes one parameter of an operator. Values always travel as
// four components; unused slots are zero.
type ParamInfo struct {
	Name       string     `json:"name"`
	ParamType  ParamType  `json:"param_type"`
	MinVal     float32    `json:"min_val"`
	MaxVal     float32    `json:"max_val"`
	Value      [4]float32 `json:"value"`
	DefaultVal [4]float32 `json:"default_val"`
	EnumLabels []string   `json:"enum_labels,omitempty"`
}

// PerformanceStats is the runtime's rolling performance snapshot.
type PerformanceStats struct {
	FPS                float32   `json:"fps"`
	FrameTimeMS        float32   `json:"frame_time_ms"`
	FPSHistory         []float32 `json:"fps_history"`
	FrameTimeHistory   []float32 `json:"frame_time_history"`
	MemoryHistory      []float64 `json:"memory_history"`
	TextureMemoryBytes uint64    `json:"texture_memory_bytes"`
	OperatorCount      int       `json:"operator_count"`
}

// BundleOptions configures a standalone-app export.
type BundleOptions struct {
	ProjectPath string `json:"project_path"`
	OutputDir   string `json:"output_dir,omitempty"`
	AppName     string `json:"app_name,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

// BundleResult reports the outcome of a bundle run.
type BundleResult struct {
	Success    bool   `json:"success"`
	Output     string `json:"output"`
	BundlePath string `json:"bundle_path,omitempty"`
}
