package semantic

import "github.com/viant/luasentry/lua"

// Severity classifies a Diagnostic, matching §3's four-level scale.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic codes, stable and grouped by prefix per §3 ("syntax / semantic
// / style / sandbox"), named by what triggers them rather than by number so
// a host can match on them directly.
const (
	CodeSyntaxError           = "syntax/parse-error"
	CodeUndefinedVariable     = "semantic/undefined-variable"
	CodeDisabledGlobal        = "sandbox/disabled-global"
	CodeUnusedVariable        = "style/unused-variable"
	CodeUnusedParameter       = "style/unused-parameter"
	CodeShadowedVariable      = "style/shadowed-variable"
	CodeDeeplyNestedLoop      = "style/deeply-nested-loop"
	CodeScriptTooLarge        = "sandbox/script-too-large"
	CodeAsyncWithoutAwait     = "sandbox/async-without-await"
)

// Tag marks a diagnostic as belonging to a well-known editor category that
// can drive rendering (e.g. fading out unused-variable squiggles).
const (
	TagUnused     = "Unused"
	TagDeprecated = "Deprecated"
)

// Diagnostic is one reported issue: a code, severity, source range,
// human-readable message, optional tags, and an optional structured
// payload (e.g. the shadowed symbol's declaration range).
type Diagnostic struct {
	Code     string
	Severity Severity
	Range    lua.Range
	Message  string
	Tags     []string
	Data     interface{}
}
