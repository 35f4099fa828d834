// Package catcher executes a child process and catches everything it writes
// to stdout and stderr, delivered as line sequences after the child exited.
//
// Beyond what os/exec offers, the capture can reconstruct the chronological
// interleaving of both streams: lib.StrategyCombined yields the exact order
// by funneling both streams through one pipe, lib.StrategySeparate keeps the
// streams apart and merges them by capture timestamp afterwards.
package catcher

import (
	"github.com/rs/zerolog"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
	"github.com/phip1611/unix-exec-output-catcher/pkg/lib/pipe"
)

var logger = zerolog.Nop()

// SetLogger replaces the package logger. The default discards everything.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// SpawnAndCapture runs executable with args and returns everything it wrote
// to its standard streams, as lines, once it terminated. args holds only the
// real arguments; argv[0] is handled internally. Lookup in $PATH happens
// automatically.
//
// This blocks until the child exits and buffers all output in memory. A
// child that never terminates and never closes its streams blocks forever;
// there is no cancellation and no timeout. There are also no retries: the
// first OS failure aborts the capture and no partial output is returned.
func SpawnAndCapture(executable string, args []string, strategy lib.Strategy) (*lib.ProcessOutput, error) {
	pipes, err := pipe.NewCapturePipes(strategy)
	if err != nil {
		return nil, err
	}
	defer pipes.Close()

	child, err := Spawn(executable, args, pipes, pipes.ChildFiles, pipes.MarkAllConsumer)
	if err != nil {
		return nil, err
	}

	var reader OutputReader
	switch strategy {
	case lib.StrategySeparate:
		reader = NewSimultaneousReader(child)
	default:
		reader = NewCombinedReader(child)
	}
	return reader.ReadAll()
}
