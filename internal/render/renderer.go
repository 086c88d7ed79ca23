// Package render owns the compiled render graph and the per-frame
// scheduler that walks it.
package render

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"

	"voxelgfx/internal/profiling"
	"voxelgfx/internal/resource"
)

// Surface color format for every pipeline output.
const ColorFormat = wgpu.TextureFormatBGRA8Unorm

// Depth attachment format.
const DepthFormat = wgpu.TextureFormatDepth32Float

// Renderer bundles the GPU device, its queue, the asset provider, and
// the logger. It is constructed once at startup and threaded through
// every call; there is no ambient global state.
type Renderer struct {
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Provider resource.Provider
	Log      *slog.Logger
	// Profiler is optional; a nil profiler records nothing.
	Profiler *profiling.FrameProfiler
}

func NewRenderer(device *wgpu.Device, queue *wgpu.Queue, provider resource.Provider, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{
		Device:   device,
		Queue:    queue,
		Provider: provider,
		Log:      log,
	}
}
