// Package pipe abstracts UNIX pipes for the specific use case of catching a
// child process's standard streams line by line.
package pipe

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
)

var logger = zerolog.Nop()

// SetLogger replaces the package logger. The default discards everything.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// PipeEnd marks which end of a pipe this address space kept after spawn.
type PipeEnd int

const (
	PipeEndUnassigned PipeEnd = iota
	PipeEndRead
	PipeEndWrite
)

// Pipe owns one kernel pipe. Both descriptors are open until the owning side
// is decided right after spawn; after that only the kept end stays open.
//
// The descriptors are close-on-exec. The child never sees them directly: it
// receives explicit duplicates on its standard stream slots (ProducerFile).
type Pipe struct {
	end     PipeEnd
	readFd  int
	writeFd int
}

// New allocates a kernel pipe with both descriptors open and no end assigned.
func New() (*Pipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return nil, lib.NewSyscallError(lib.ErrChannelCreation, err)
	}
	logger.Trace().Int("read_fd", fds[0]).Int("write_fd", fds[1]).Msg("pipe created")
	return &Pipe{end: PipeEndUnassigned, readFd: fds[0], writeFd: fds[1]}, nil
}

// End returns which end of the pipe this address space has been assigned.
func (p *Pipe) End() PipeEnd {
	return p.end
}

// MarkAsConsumer closes the write descriptor and assigns the read end to
// this address space. Called exactly once, in the parent, right after spawn;
// until every write end (ours and the child's) is closed, a blocked read can
// never observe end-of-stream.
func (p *Pipe) MarkAsConsumer() error {
	if err := unix.Close(p.writeFd); err != nil {
		return lib.NewSyscallError(lib.ErrDescriptorClose, err)
	}
	p.writeFd = -1
	p.end = PipeEndRead
	logger.Trace().Int("fd", p.readFd).Msg("pipe marked as read end")
	return nil
}

// MarkAsProducer closes the read descriptor and assigns the write end to
// this address space. The counterpart of MarkAsConsumer.
func (p *Pipe) MarkAsProducer() error {
	if err := unix.Close(p.readFd); err != nil {
		return lib.NewSyscallError(lib.ErrDescriptorClose, err)
	}
	p.readFd = -1
	p.end = PipeEndWrite
	logger.Trace().Int("fd", p.writeFd).Msg("pipe marked as write end")
	return nil
}

// ProducerFile duplicates the write descriptor into a new *os.File suitable
// for a standard stream slot in the child's descriptor table. The duplicate
// is installed on fd 1 or 2 between process duplication and image
// replacement; the caller closes it once the child holds its own copy.
func (p *Pipe) ProducerFile(name string) (*os.File, error) {
	fd, err := unix.Dup(p.writeFd)
	if err != nil {
		return nil, lib.NewSyscallError(lib.ErrDescriptorDuplicate, err)
	}
	return os.NewFile(uintptr(fd), name), nil
}

// ReadLine reads one line from the consumer side of the pipe. It blocks
// until a full line is available or the last write end has been closed.
//
// nil, nil means end-of-stream: no more data will ever arrive. A final
// fragment without a terminating newline is dropped at end-of-stream.
//
// Reading goes one byte per syscall. That is intentionally simple and not
// performance-optimized; the per-byte granularity is what gives the capture
// timestamp its resolution under the separate strategy.
func (p *Pipe) ReadLine() (*lib.CapturedLine, error) {
	if p.end != PipeEndRead {
		return nil, &lib.Error{Kind: lib.ErrChannelNotReadable}
	}

	var buf [1]byte
	var acc []byte
	for {
		n, err := unix.Read(p.readFd, buf[:])
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, lib.NewSyscallError(lib.ErrRead, err)
		}
		if n == 0 {
			logger.Trace().Int("fd", p.readFd).Int("dropped_bytes", len(acc)).Msg("end of stream")
			return nil, nil
		}
		if buf[0] == '\n' {
			return &lib.CapturedLine{Text: string(acc), At: time.Now()}, nil
		}
		acc = append(acc, buf[0])
	}
}

// Close releases whichever descriptors are still open. Safe to call more
// than once.
func (p *Pipe) Close() {
	if p.readFd >= 0 {
		_ = unix.Close(p.readFd)
		p.readFd = -1
	}
	if p.writeFd >= 0 {
		_ = unix.Close(p.writeFd)
		p.writeFd = -1
	}
}
