package store

import (
	"github.com/vividtools/vivid-ide/pkg/runtime"
)

// State keys, used for per-key subscriptions. Every top-level AppState field
// has one.
const (
	KeyProjectPath            = "projectPath"
	KeyChainPath              = "chainPath"
	KeyProjectLoaded          = "projectLoaded"
	KeyRuntimeReady           = "runtimeReady"
	KeyOperators              = "operators"
	KeySelectedOperator       = "selectedOperator"
	KeySelectedOperatorParams = "selectedOperatorParams"
	KeyCompileStatus          = "compileStatus"
	KeyPerformanceStats       = "performanceStats"
	KeyCurrentFile            = "currentFile"
	KeyFileModified           = "fileModified"
	KeyLayout                 = "layout"
)

// LayoutState holds the collapse flags of the three collapsible dock regions.
// It is the only durable state owned by this layer.
type LayoutState struct {
	LeftCollapsed   bool `yaml:"left_collapsed" json:"left_collapsed"`
	RightCollapsed  bool `yaml:"right_collapsed" json:"right_collapsed"`
	BottomCollapsed bool `yaml:"bottom_collapsed" json:"bottom_collapsed"`
}

// AppState is the single source of truth for everything the panels render.
// Snapshots are returned by value; treat them as immutable.
type AppState struct {
	ProjectPath            string
	ChainPath              string
	ProjectLoaded          bool
	RuntimeReady           bool
	Operators              []runtime.OperatorInfo
	SelectedOperator       string
	SelectedOperatorParams []runtime.ParamInfo
	CompileStatus          runtime.CompileStatusInfo
	PerformanceStats       runtime.PerformanceStats
	CurrentFile            string
	FileModified           bool
	Layout                 LayoutState
}

// Partial is a sparse update: nil fields are left untouched by Set. Scalar
// fields only count as changed when the new value differs; slice and struct
// fields count as changed whenever they are supplied, since their contents
// are replaced wholesale.
type Partial struct {
	ProjectPath            *string
	ChainPath              *string
	ProjectLoaded          *bool
	RuntimeReady           *bool
	Operators              *[]runtime.OperatorInfo
	SelectedOperator       *string
	SelectedOperatorParams *[]runtime.ParamInfo
	CompileStatus          *runtime.CompileStatusInfo
	PerformanceStats       *runtime.PerformanceStats
	CurrentFile            *string
	FileModified           *bool
	Layout                 *LayoutState
}

// merge applies the partial to the state and returns the keys whose value
// changed, in declaration order.
func merge(s *AppState, p Partial) []string {
	var changed []string

	if p.ProjectPath != nil && *p.ProjectPath != s.ProjectPath {
		s.ProjectPath = *p.ProjectPath
		changed = append(changed, KeyProjectPath)
	}
	if p.ChainPath != nil && *p.ChainPath != s.ChainPath {
		s.ChainPath = *p.ChainPath
		changed = append(changed, KeyChainPath)
	}
	if p.ProjectLoaded != nil && *p.ProjectLoaded != s.ProjectLoaded {
		s.ProjectLoaded = *p.ProjectLoaded
		changed = append(changed, KeyProjectLoaded)
	}
	if p.RuntimeReady != nil && *p.RuntimeReady != s.RuntimeReady {
		s.RuntimeReady = *p.RuntimeReady
		changed = append(changed, KeyRuntimeReady)
	}
	if p.Operators != nil {
		s.Operators = *p.Operators
		changed = append(changed, KeyOperators)
	}
	if p.SelectedOperator != nil && *p.SelectedOperator != s.SelectedOperator {
		s.SelectedOperator = *p.SelectedOperator
		changed = append(changed, KeySelectedOperator)
	}
	if p.SelectedOperatorParams != nil {
		s.SelectedOperatorParams = *p.SelectedOperatorParams
		changed = append(changed, KeySelectedOperatorParams)
	}
	if p.CompileStatus != nil {
		s.CompileStatus = *p.CompileStatus
		changed = append(changed, KeyCompileStatus)
	}
	if p.PerformanceStats != nil {
		s.PerformanceStats = *p.PerformanceStats
		changed = append(changed, KeyPerformanceStats)
	}
	if p.CurrentFile != nil && *p.CurrentFile != s.CurrentFile {
		s.CurrentFile = *p.CurrentFile
		changed = append(changed, KeyCurrentFile)
	}
	if p.FileModified != nil && *p.FileModified != s.FileModified {
		s.FileModified = *p.FileModified
		changed = append(changed, KeyFileModified)
	}
	if p.Layout != nil && *p.Layout != s.Layout {
		s.Layout = *p.Layout
		changed = append(changed, KeyLayout)
	}

	return changed
}

// Ptr returns a pointer to v, for building Partial literals.
func Ptr[T any](v T) *T {
	return &v
}
