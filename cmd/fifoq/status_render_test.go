package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"fifoq/internal/testsupport"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Items", statusError, "broken", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Items:", "[ERROR] broken")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Items", statusOK, "5", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestStatsLinesEmpty(t *testing.T) {
	lines := statsLines(computeStats(nil, 10), false)
	if len(lines) != 3 {
		t.Fatalf("expected header plus one line, got %q", lines)
	}
	if !strings.Contains(lines[2], "[OK] empty") {
		t.Fatalf("unexpected empty stats line: %q", lines[2])
	}
}

func TestStatsLinesStatuses(t *testing.T) {
	jobs := testsupport.SampleJobs()
	jobs[0]["status"] = jobs[0]["title"]
	stats := computeStats(jobs, 100)
	if stats.OverRetryLimit != 1 {
		t.Fatalf("expected one item over limit 100, got %d", stats.OverRetryLimit)
	}

	joined := strings.Join(statsLines(stats, false), "\n")
	for _, want := range []string{
		"Pending:",
		"Failed:",
		"Do Something Fast:",
		"[WARN] 1 over limit 100",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in stats output:\n%s", want, joined)
		}
	}
	if strings.Index(joined, "Failed:") > strings.Index(joined, "Do Something Fast:") {
		t.Fatalf("expected conventional statuses before custom ones:\n%s", joined)
	}
}
