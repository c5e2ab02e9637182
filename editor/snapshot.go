package editor

import (
	"gopkg.in/yaml.v3"

	"github.com/viant/luasentry/semantic"
)

// diagnosticSnapshot is the small YAML-friendly projection
// DiagnosticsSnapshot renders, deliberately narrower than
// semantic.Diagnostic (no Tags/Data) since a golden test should pin the
// facts a reviewer actually reads, not every internal field.
type diagnosticSnapshot struct {
	Code     string `yaml:"code"`
	Severity string `yaml:"severity"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
	Message  string `yaml:"message"`
}

// DiagnosticsSnapshot renders diags as deterministic YAML, in the order
// the analyzer produced them, for golden tests that pin a script's exact
// diagnostic set and catch accidental drift in review.
func DiagnosticsSnapshot(diags []semantic.Diagnostic) (string, error) {
	out := make([]diagnosticSnapshot, len(diags))
	for i, d := range diags {
		out[i] = diagnosticSnapshot{
			Code:     d.Code,
			Severity: d.Severity.String(),
			Start:    d.Range.Start,
			End:      d.Range.End,
			Message:  d.Message,
		}
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
