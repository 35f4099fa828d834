package catcher

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
	"github.com/phip1611/unix-exec-output-catcher/pkg/lib/pipe"
)

// ChildProcess tracks the lifecycle of one spawned child. State transitions
// are monotonic: Ready -> Running -> FinishedSuccess | FinishedError.
//
// All state is behind one mutex because the separate-strategy reader polls
// the same handle from two goroutines.
type ChildProcess struct {
	mu sync.Mutex

	id         string
	executable string
	args       []string
	pid        int
	exitCode   *int
	state      lib.ProcessState
	pipes      *pipe.CapturePipes
}

func newChildProcess(executable string, args []string, pipes *pipe.CapturePipes) *ChildProcess {
	return &ChildProcess{
		id:         lib.NewID(),
		executable: executable,
		args:       append([]string(nil), args...),
		state:      lib.ProcessStateReady,
		pipes:      pipes,
	}
}

// ID returns the capture id used in log lines.
func (c *ChildProcess) ID() string {
	return c.id
}

// Pid returns the child's process id, 0 before the spawn.
func (c *ChildProcess) Pid() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pid
}

// Pipes returns the capture pipes the child's streams are wired to.
func (c *ChildProcess) Pipes() *pipe.CapturePipes {
	return c.pipes
}

// PollState issues a non-blocking status query for the child. If the child
// has not terminated yet, the prior state is returned unchanged. Once a
// terminal state has been observed it is cached and returned without
// touching the OS again: the wait already reaped the child, so its pid is no
// longer ours to query.
func (c *ChildProcess) PollState() (lib.ProcessState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != lib.ProcessStateRunning {
		return c.state, nil
	}

	var ws unix.WaitStatus
	var wpid int
	var err error
	for {
		wpid, err = unix.Wait4(c.pid, &ws, unix.WNOHANG, nil)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return c.state, lib.NewSyscallError(lib.ErrProcessStatusQuery, err)
	}
	if wpid == 0 {
		// no status to report yet
		return c.state, nil
	}

	switch {
	case ws.Exited():
		c.finish(ws.ExitStatus())
	case ws.Signaled():
		// shell convention; keeps signal deaths distinguishable from 0
		c.finish(128 + int(ws.Signal()))
	}
	return c.state, nil
}

func (c *ChildProcess) finish(code int) {
	c.exitCode = &code
	if code == 0 {
		c.state = lib.ProcessStateFinishedSuccess
	} else {
		c.state = lib.ProcessStateFinishedError
	}
	logger.Debug().
		Str("id", c.id).
		Int("pid", c.pid).
		Int("exit_code", code).
		Msg("child finished")
}

// ExitCode returns the child's recorded exit code. ok is false until a
// terminal state has been observed via PollState; asking earlier is a logic
// error in the caller.
func (c *ChildProcess) ExitCode() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exitCode == nil {
		return 0, false
	}
	return *c.exitCode, true
}
