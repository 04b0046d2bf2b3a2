package config

const SourceFileExt = ".cube"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".cube", ".cubelang"}

// ConfigFileNames are looked up, in order, in every directory walked by
// FindConfig.
var ConfigFileNames = []string{"cubelang.yaml", "cubelang.yml"}

// Version is reported by the CLI.
const Version = "0.4.0"

// Built-in type names as written in source code
const (
	IntTypeName      = "int"
	RealTypeName     = "real"
	BoolTypeName     = "bool"
	VoidTypeName     = "void"
	ColorTypeName    = "color"
	SideTypeName     = "side"
	PatternTypeName  = "pattern"
	ListTypeName     = "list"
	SetTypeName      = "set"
	FunctionTypeName = "function"
)

// Built-in function names
const (
	PrintFuncName            = "print"
	ExitFuncName             = "exit"
	PushOrientationFuncName  = "push_orientation"
	PopOrientationFuncName   = "pop_orientation"
	SuspendRotationsFuncName = "suspend_rotations"
	ResumeRotationsFuncName  = "resume_rotations"
)

// Hidden operations targeted by lowered cube statements. They are bound at
// run time but never declared to programs.
const (
	CubeTurnOp     = "cube_turn"
	CubeRotateOp   = "cube_rotate"
	CubeGetColorOp = "cube_get_color"
	OrientOp       = "orient"
)

// OrientKeepingKey is the keyword argument of orient that names the side to
// keep in place.
const OrientKeepingKey = "keeping"

// Default settings used when no configuration file is present.
const (
	DefaultCubeSize = 3
	DefaultMaxWidth = 100
	DefaultTimeout  = "30s"
)
