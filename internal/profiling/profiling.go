// Package profiling is a lightweight per-frame CPU profiler for
// pass-level insights.
package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// FrameProfiler accumulates named durations within one frame. It is
// constructed where the renderer is and threaded through explicitly.
type FrameProfiler struct {
	mu     sync.Mutex
	totals map[string]time.Duration
}

func NewFrameProfiler() *FrameProfiler {
	return &FrameProfiler{totals: make(map[string]time.Duration)}
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiler.Track("render.Frame")()
func (p *FrameProfiler) Track(name string) func() {
	if p == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		p.mu.Lock()
		p.totals[name] += d
		p.mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func (p *FrameProfiler) ResetFrame() {
	p.mu.Lock()
	for k := range p.totals {
		delete(p.totals, k)
	}
	p.mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func (p *FrameProfiler) Snapshot() map[string]time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]time.Duration, len(p.totals))
	for k, v := range p.totals {
		out[k] = v
	}
	return out
}

// TopN formats the top N durations from the current frame totals.
// Example: "render.Frame:4.2ms, pass.terrain:2.1ms"
func (p *FrameProfiler) TopN(n int) string {
	ss := p.Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms", list[i].name, ms))
	}
	return strings.Join(parts, ", ")
}
