package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	p := NewFrameProfiler()

	stop := p.Track("pass.terrain")
	time.Sleep(time.Millisecond)
	stop()

	stop = p.Track("pass.terrain")
	time.Sleep(time.Millisecond)
	stop()

	totals := p.Snapshot()
	if totals["pass.terrain"] < 2*time.Millisecond {
		t.Errorf("Expected at least 2ms accumulated, got %v", totals["pass.terrain"])
	}
}

func TestResetFrame(t *testing.T) {
	p := NewFrameProfiler()
	p.Track("pass.sky")()
	p.ResetFrame()

	if len(p.Snapshot()) != 0 {
		t.Errorf("Expected empty totals after reset, got %v", p.Snapshot())
	}
}

func TestTopNOrder(t *testing.T) {
	p := NewFrameProfiler()
	p.mu.Lock()
	p.totals["slow"] = 5 * time.Millisecond
	p.totals["fast"] = 1 * time.Millisecond
	p.mu.Unlock()

	out := p.TopN(2)
	if !strings.HasPrefix(out, "slow:") {
		t.Errorf("Expected slowest entry first, got %q", out)
	}
	if !strings.Contains(out, "fast:") {
		t.Errorf("Expected both entries, got %q", out)
	}
}

func TestNilProfilerTrack(t *testing.T) {
	var p *FrameProfiler
	// Must not panic.
	p.Track("anything")()
}
