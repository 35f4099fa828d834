package lib

import "time"

// Strategy selects how the child's standard streams are captured.
// It is chosen once per spawn and recorded in the resulting ProcessOutput.
type Strategy int

const (
	// StrategyCombined redirects stdout and stderr onto one shared pipe.
	// The kernel serializes all writes into a single byte stream, so the
	// combined order is exact, but the per-stream split is unrecoverable.
	StrategyCombined Strategy = iota
	// StrategySeparate captures each stream on its own pipe. Per-stream
	// order is exact; the combined order is a best-effort timestamp merge.
	StrategySeparate
)

func (s Strategy) String() string {
	switch s {
	case StrategyCombined:
		return "combined"
	case StrategySeparate:
		return "separate"
	default:
		return "unknown"
	}
}

// ProcessState is the lifecycle state of a spawned child process.
// Transitions are monotonic and one-directional:
// Ready -> Running -> FinishedSuccess | FinishedError.
type ProcessState int

const (
	// ProcessStateReady means the process has not been spawned yet.
	ProcessStateReady ProcessState = iota
	// ProcessStateRunning means the process was spawned and has not been
	// observed as terminated.
	ProcessStateRunning
	// ProcessStateFinishedSuccess means the process exited with code 0.
	ProcessStateFinishedSuccess
	// ProcessStateFinishedError means the process exited with a non-zero
	// code or was terminated by a signal.
	ProcessStateFinishedError
)

// Finished reports whether the state is terminal.
func (s ProcessState) Finished() bool {
	return s == ProcessStateFinishedSuccess || s == ProcessStateFinishedError
}

func (s ProcessState) String() string {
	switch s {
	case ProcessStateReady:
		return "ready"
	case ProcessStateRunning:
		return "running"
	case ProcessStateFinishedSuccess:
		return "finished (success)"
	case ProcessStateFinishedError:
		return "finished (error)"
	default:
		return "unknown"
	}
}

// CapturedLine is one text line read from a capture pipe, without its line
// terminator. At is the instant the terminating newline was observed; it is
// only meaningful under StrategySeparate, where it drives the merge.
type CapturedLine struct {
	Text string
	At   time.Time
}

// ProcessOutput holds everything the child wrote to its standard streams,
// plus its exit code and the strategy that produced the capture.
type ProcessOutput struct {
	// StdoutLines and StderrLines are nil under StrategyCombined: both
	// streams shared one pipe and the split cannot be reconstructed.
	// Under StrategySeparate they are always present, possibly empty.
	StdoutLines []string
	StderrLines []string
	// CombinedLines is always present. It is exact under StrategyCombined
	// and best-effort under StrategySeparate.
	CombinedLines []string
	// ExitCode is the child's exit code; 0 means success. A child killed
	// by a signal reports 128 plus the signal number.
	ExitCode int
	// Strategy is the capture strategy that was actually used.
	Strategy Strategy
}
