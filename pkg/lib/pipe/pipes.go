package pipe

import (
	"os"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
)

// CapturePipes is the set of pipes allocated for one spawn. The strategy is
// chosen once, before the child exists, and is immutable afterwards.
//
// Under lib.StrategyCombined one pipe is shared by both standard streams;
// under lib.StrategySeparate each stream gets its own pipe.
type CapturePipes struct {
	strategy lib.Strategy
	stdout   *Pipe
	stderr   *Pipe // same as stdout under StrategyCombined
}

// NewCapturePipes allocates the pipes required by the strategy.
func NewCapturePipes(strategy lib.Strategy) (*CapturePipes, error) {
	stdout, err := New()
	if err != nil {
		return nil, err
	}
	stderr := stdout
	if strategy == lib.StrategySeparate {
		stderr, err = New()
		if err != nil {
			stdout.Close()
			return nil, err
		}
	}
	return &CapturePipes{strategy: strategy, stdout: stdout, stderr: stderr}, nil
}

// Strategy returns the strategy these pipes were allocated for.
func (c *CapturePipes) Strategy() lib.Strategy {
	return c.strategy
}

// Stdout returns the pipe carrying the child's stdout. Under
// StrategyCombined this is the single shared pipe.
func (c *CapturePipes) Stdout() *Pipe {
	return c.stdout
}

// Stderr returns the pipe carrying the child's stderr. Under
// StrategyCombined this is the same pipe as Stdout.
func (c *CapturePipes) Stderr() *Pipe {
	return c.stderr
}

// ChildFiles builds the descriptor table the child's standard streams start
// with: stdin is inherited unchanged, slots 1 and 2 point at the capture
// pipes' write ends. The returned files beyond stdin are duplicates owned by
// the caller; close them once the child is running.
func (c *CapturePipes) ChildFiles() ([]*os.File, error) {
	stdoutFile, err := c.stdout.ProducerFile("stdout-pipe")
	if err != nil {
		return nil, err
	}
	stderrFile, err := c.stderr.ProducerFile("stderr-pipe")
	if err != nil {
		_ = stdoutFile.Close()
		return nil, err
	}
	return []*os.File{os.Stdin, stdoutFile, stderrFile}, nil
}

// MarkAllConsumer closes the parent's write ends and assigns the read ends.
// Must run after the spawn: from here on, end-of-stream on the pipes is
// driven solely by the child's lifetime.
func (c *CapturePipes) MarkAllConsumer() error {
	if err := c.stdout.MarkAsConsumer(); err != nil {
		return err
	}
	if c.stderr != c.stdout {
		if err := c.stderr.MarkAsConsumer(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every descriptor still held by the set.
func (c *CapturePipes) Close() {
	c.stdout.Close()
	if c.stderr != c.stdout {
		c.stderr.Close()
	}
}
