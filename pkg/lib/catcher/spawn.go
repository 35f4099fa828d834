package catcher

import (
	"os"
	"os/exec"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
	"github.com/phip1611/unix-exec-output-catcher/pkg/lib/pipe"
)

// ChildFilesFunc builds the descriptor table the child's standard streams
// start with. It is the child-side half of the spawn hooks: the wiring it
// returns is installed between process duplication and image replacement, so
// descriptor setup always completes before the child becomes the target
// program.
type ChildFilesFunc func() ([]*os.File, error)

// ParentHookFunc runs in the parent immediately after a successful spawn,
// before any reading starts. The default hook closes the parent's unused
// write ends and marks the pipes as consumer side.
type ParentHookFunc func() error

// Spawn starts executable with args and returns a handle in Running state.
// Lookup in $PATH happens automatically, like execvp. args holds only the
// real arguments; argv[0] is prepended internally.
//
// Go cannot run arbitrary code between fork and exec, so the child-side hook
// is expressed as data: childFiles produces the descriptor wiring and the
// OS-level fork/exec installs it. If the spawn fails neither the child runs
// nor does parentAfterSpawn.
func Spawn(executable string, args []string, pipes *pipe.CapturePipes, childFiles ChildFilesFunc, parentAfterSpawn ParentHookFunc) (*ChildProcess, error) {
	child := newChildProcess(executable, args, pipes)

	path, err := exec.LookPath(executable)
	if err != nil {
		return nil, lib.NewSyscallError(lib.ErrProcessSpawn, err)
	}

	files, err := childFiles()
	if err != nil {
		return nil, err
	}

	argv := append([]string{executable}, args...)
	proc, err := os.StartProcess(path, argv, &os.ProcAttr{Files: files})

	// Whether the spawn worked or not, the duplicates handed to the child
	// are not needed in this address space anymore. files[0] is our own
	// stdin and stays open.
	for _, f := range files[1:] {
		_ = f.Close()
	}

	if err != nil {
		return nil, lib.NewSyscallError(lib.ErrProcessSpawn, err)
	}

	child.mu.Lock()
	child.pid = proc.Pid
	child.state = lib.ProcessStateRunning
	child.mu.Unlock()

	logger.Debug().
		Str("id", child.id).
		Int("pid", proc.Pid).
		Str("executable", executable).
		Strs("args", args).
		Stringer("strategy", pipes.Strategy()).
		Msg("child running")

	if parentAfterSpawn != nil {
		if err := parentAfterSpawn(); err != nil {
			return nil, err
		}
	}

	return child, nil
}
