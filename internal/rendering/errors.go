// Package rendering renders analysis results as an HTML report and exports it as an image.
package rendering

import "fmt"

// Stage names the step of report production that failed.
type Stage string

const (
	StageTemplate Stage = "template"
	StageCapture  Stage = "capture"
)

// Error reports a failed rendering stage.
type Error struct {
	Stage   Stage
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("report %s: %s", e.Stage, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}
