package catcher

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
)

func capturedAt(text string, at time.Time) lib.CapturedLine {
	return lib.CapturedLine{Text: text, At: at}
}

func TestMergeByTimestamp_OrdersAcrossStreams(t *testing.T) {
	base := time.Now()
	stdout := []lib.CapturedLine{
		capturedAt("o1", base),
		capturedAt("o2", base.Add(20*time.Millisecond)),
	}
	stderr := []lib.CapturedLine{
		capturedAt("e1", base.Add(10*time.Millisecond)),
		capturedAt("e2", base.Add(30*time.Millisecond)),
	}

	got := texts(mergeByTimestamp(stdout, stderr))
	want := []string{"o1", "e1", "o2", "e2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeByTimestamp_TieKeepsEveryLine(t *testing.T) {
	at := time.Now()
	stdout := []lib.CapturedLine{capturedAt("out", at)}
	stderr := []lib.CapturedLine{capturedAt("err", at)}

	// A timestamp collision must never swallow a line; stdout wins the tie.
	got := texts(mergeByTimestamp(stdout, stderr))
	want := []string{"out", "err"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeByTimestamp_TieKeepsArrivalOrderWithinStream(t *testing.T) {
	at := time.Now()
	stdout := []lib.CapturedLine{
		capturedAt("first", at),
		capturedAt("second", at),
		capturedAt("third", at),
	}

	got := texts(mergeByTimestamp(stdout, nil))
	want := []string{"first", "second", "third"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestTexts_EmptyInputYieldsEmptySlice(t *testing.T) {
	got := texts(nil)
	if got == nil {
		t.Fatal("texts must not return nil; per-stream sequences are always present under the separate strategy")
	}
	if len(got) != 0 {
		t.Fatalf("expected no lines, got %v", got)
	}
}
