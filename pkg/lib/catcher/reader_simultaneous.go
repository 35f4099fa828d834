package catcher

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
	"github.com/phip1611/unix-exec-output-catcher/pkg/lib/pipe"
)

// SimultaneousReader drains the two pipes of lib.StrategySeparate
// concurrently, one goroutine per stream. Each stream's own order is exact.
// The combined order comes from merging by capture timestamp and is
// best-effort only: it can be wrong when the child alternates between
// streams faster than goroutine scheduling and clock resolution can follow.
type SimultaneousReader struct {
	stdout *pipe.Pipe
	stderr *pipe.Pipe
	child  *ChildProcess
}

// NewSimultaneousReader builds the reader for a child spawned with
// lib.StrategySeparate.
func NewSimultaneousReader(child *ChildProcess) *SimultaneousReader {
	return &SimultaneousReader{
		stdout: child.Pipes().Stdout(),
		stderr: child.Pipes().Stderr(),
		child:  child,
	}
}

func (r *SimultaneousReader) ReadAll() (*lib.ProcessOutput, error) {
	var stdoutLines, stderrLines []lib.CapturedLine

	// Both drains poll the same handle; its mutex keeps the cached
	// termination state consistent between them.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		stdoutLines, err = drain(r.stdout, r.child)
		return err
	})
	g.Go(func() error {
		var err error
		stderrLines, err = drain(r.stderr, r.child)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	code, ok := r.child.ExitCode()
	if !ok {
		return nil, &lib.Error{Kind: lib.ErrUnknown}
	}

	return &lib.ProcessOutput{
		StdoutLines:   texts(stdoutLines),
		StderrLines:   texts(stderrLines),
		CombinedLines: texts(mergeByTimestamp(stdoutLines, stderrLines)),
		ExitCode:      code,
		Strategy:      lib.StrategySeparate,
	}, nil
}

// mergeByTimestamp interleaves both streams by capture time. Ties keep every
// line: stdout sorts before stderr, then per-stream arrival order. The sort
// is stable, so lines within one stream can never swap.
func mergeByTimestamp(stdout, stderr []lib.CapturedLine) []lib.CapturedLine {
	type tagged struct {
		line   lib.CapturedLine
		stream int // 0 = stdout, 1 = stderr
		seq    int
	}
	merged := make([]tagged, 0, len(stdout)+len(stderr))
	for i, l := range stdout {
		merged = append(merged, tagged{line: l, stream: 0, seq: i})
	}
	for i, l := range stderr {
		merged = append(merged, tagged{line: l, stream: 1, seq: i})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.line.At.Equal(b.line.At) {
			return a.line.At.Before(b.line.At)
		}
		if a.stream != b.stream {
			return a.stream < b.stream
		}
		return a.seq < b.seq
	})

	out := make([]lib.CapturedLine, len(merged))
	for i, t := range merged {
		out[i] = t.line
	}
	return out
}
