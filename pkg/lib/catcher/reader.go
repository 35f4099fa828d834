package catcher

import (
	"time"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
	"github.com/phip1611/unix-exec-output-catcher/pkg/lib/pipe"
)

// pollBackoff is how long a drain loop sleeps between status polls once its
// pipe has reported end-of-stream while the child is still running. Without
// it, a child that closes a stream early and keeps running would turn the
// loop into a busy spin.
const pollBackoff = 10 * time.Millisecond

// OutputReader drains the capture pipes to completion and assembles the
// final output. The implementation depends on the strategy.
type OutputReader interface {
	// ReadAll blocks until the child has terminated and every buffered
	// byte has been drained, then returns the assembled output.
	ReadAll() (*lib.ProcessOutput, error)
}

// CombinedReader drains the single shared pipe of lib.StrategyCombined.
// Per-stream sequences are unrecoverable under this strategy and stay nil.
type CombinedReader struct {
	pipe  *pipe.Pipe
	child *ChildProcess
}

// NewCombinedReader builds the reader for a child spawned with
// lib.StrategyCombined.
func NewCombinedReader(child *ChildProcess) *CombinedReader {
	// stdout and stderr share one pipe under this strategy
	return &CombinedReader{pipe: child.Pipes().Stdout(), child: child}
}

func (r *CombinedReader) ReadAll() (*lib.ProcessOutput, error) {
	captured, err := drain(r.pipe, r.child)
	if err != nil {
		return nil, err
	}
	code, ok := r.child.ExitCode()
	if !ok {
		return nil, &lib.Error{Kind: lib.ErrUnknown}
	}
	return &lib.ProcessOutput{
		CombinedLines: texts(captured),
		ExitCode:      code,
		Strategy:      lib.StrategyCombined,
	}, nil
}

// drain reads lines until the pipe reports end-of-stream AND the child has
// reached a terminal state. Both signals are required before declaring
// completion: the kernel buffer can still hold bytes after the child died,
// and the child can outlive a stream it closed early. Reads block in the
// kernel, so the loop never spins while data may still arrive.
func drain(p *pipe.Pipe, child *ChildProcess) ([]lib.CapturedLine, error) {
	var lines []lib.CapturedLine
	for {
		line, err := p.ReadLine()
		if err != nil {
			return nil, err
		}
		eof := line == nil
		if !eof {
			lines = append(lines, *line)
		}

		state, err := child.PollState()
		if err != nil {
			return nil, err
		}
		if eof {
			if state.Finished() {
				return lines, nil
			}
			time.Sleep(pollBackoff)
		}
	}
}

func texts(lines []lib.CapturedLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
