package pipeline

import "errors"

// Stage names a pipeline step.
type Stage string

const (
	StageBootstrap Stage = "bootstrap"
	StageExtract   Stage = "extract"
	StageAggregate Stage = "aggregate"
	StageExport    Stage = "export"
	StagePublish   Stage = "publish"
)

// StageError is a fatal failure in one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitAggregate = 2
	ExitExport    = 3
	ExitPublish   = 4
)

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var se *StageError
	if !errors.As(err, &se) {
		return ExitFailure
	}
	switch se.Stage {
	case StageAggregate:
		return ExitAggregate
	case StageExport:
		return ExitExport
	case StagePublish:
		return ExitPublish
	default:
		return ExitFailure
	}
}

// FailedStage returns the stage of err, or "" when err is not a StageError.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
