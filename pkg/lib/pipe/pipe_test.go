package pipe

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
)

// writeAll writes data into the pipe's write descriptor directly, playing
// the role of the child process.
func writeAll(t *testing.T, p *Pipe, data string) {
	t.Helper()
	buf := []byte(data)
	for len(buf) > 0 {
		n, err := unix.Write(p.writeFd, buf)
		if err != nil {
			t.Fatalf("write to pipe failed: %v", err)
		}
		buf = buf[n:]
	}
}

func TestReadLine_BeforeAssignmentFails(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	line, err := p.ReadLine()
	if line != nil {
		t.Fatalf("expected no line, got %q", line.Text)
	}
	if !lib.IsKind(err, lib.ErrChannelNotReadable) {
		t.Fatalf("expected ChannelNotReadable, got %v", err)
	}
}

func TestReadLine_SplitsLines(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	writeAll(t, p, "hello\n\nworld\n")
	if err := p.MarkAsConsumer(); err != nil {
		t.Fatalf("MarkAsConsumer failed: %v", err)
	}

	want := []string{"hello", "", "world"}
	for _, w := range want {
		line, err := p.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if line == nil {
			t.Fatalf("premature end of stream, want %q", w)
		}
		if line.Text != w {
			t.Fatalf("line mismatch: got %q want %q", line.Text, w)
		}
		if line.At.IsZero() {
			t.Fatalf("line %q carries no capture timestamp", w)
		}
	}

	// write end is closed, so the stream must now report EOF, repeatedly
	for i := 0; i < 2; i++ {
		line, err := p.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine at EOF failed: %v", err)
		}
		if line != nil {
			t.Fatalf("expected end of stream, got %q", line.Text)
		}
	}
}

func TestReadLine_DropsUnterminatedFragment(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	writeAll(t, p, "first\nfragment-without-newline")
	if err := p.MarkAsConsumer(); err != nil {
		t.Fatalf("MarkAsConsumer failed: %v", err)
	}

	line, err := p.ReadLine()
	if err != nil || line == nil {
		t.Fatalf("ReadLine failed: line=%v err=%v", line, err)
	}
	if line.Text != "first" {
		t.Fatalf("line mismatch: got %q want %q", line.Text, "first")
	}

	line, err = p.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine at EOF failed: %v", err)
	}
	if line != nil {
		t.Fatalf("unterminated fragment should be dropped, got %q", line.Text)
	}
}

func TestMarkAsConsumer_AssignsReadEnd(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	if p.End() != PipeEndUnassigned {
		t.Fatalf("fresh pipe must be unassigned, got %v", p.End())
	}
	if err := p.MarkAsConsumer(); err != nil {
		t.Fatalf("MarkAsConsumer failed: %v", err)
	}
	if p.End() != PipeEndRead {
		t.Fatalf("expected read end, got %v", p.End())
	}
}

func TestMarkAsProducer_AssignsWriteEnd(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	if err := p.MarkAsProducer(); err != nil {
		t.Fatalf("MarkAsProducer failed: %v", err)
	}
	if p.End() != PipeEndWrite {
		t.Fatalf("expected write end, got %v", p.End())
	}

	// the producer side must refuse to read
	if _, err := p.ReadLine(); !lib.IsKind(err, lib.ErrChannelNotReadable) {
		t.Fatalf("expected ChannelNotReadable, got %v", err)
	}
}

func TestCapturePipes_CombinedSharesOnePipe(t *testing.T) {
	c, err := NewCapturePipes(lib.StrategyCombined)
	if err != nil {
		t.Fatalf("NewCapturePipes failed: %v", err)
	}
	defer c.Close()

	if c.Stdout() != c.Stderr() {
		t.Fatal("combined strategy must share one pipe for both streams")
	}
}

func TestCapturePipes_SeparateAllocatesTwoPipes(t *testing.T) {
	c, err := NewCapturePipes(lib.StrategySeparate)
	if err != nil {
		t.Fatalf("NewCapturePipes failed: %v", err)
	}
	defer c.Close()

	if c.Stdout() == c.Stderr() {
		t.Fatal("separate strategy must allocate independent pipes")
	}
}

func TestCapturePipes_ChildFilesLifecycle(t *testing.T) {
	c, err := NewCapturePipes(lib.StrategySeparate)
	if err != nil {
		t.Fatalf("NewCapturePipes failed: %v", err)
	}
	defer c.Close()

	files, err := c.ChildFiles()
	if err != nil {
		t.Fatalf("ChildFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected stdin/stdout/stderr slots, got %d files", len(files))
	}
	if files[0] != os.Stdin {
		t.Fatal("slot 0 must be the inherited stdin")
	}

	// Close the duplicates (normally the launcher's job after spawn) and
	// give up the write ends; both streams must then report EOF.
	for _, f := range files[1:] {
		if err := f.Close(); err != nil {
			t.Fatalf("closing child file failed: %v", err)
		}
	}
	if err := c.MarkAllConsumer(); err != nil {
		t.Fatalf("MarkAllConsumer failed: %v", err)
	}

	for _, p := range []*Pipe{c.Stdout(), c.Stderr()} {
		line, err := p.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if line != nil {
			t.Fatalf("expected end of stream, got %q", line.Text)
		}
	}
}
