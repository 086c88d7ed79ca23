package render

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"voxelgfx/internal/world"
)

// GeometryProvider draws one custom geometry kind into an open render
// pass. Providers allocate transient GPU objects through the arena so
// they are released when the frame completes.
type GeometryProvider interface {
	Render(pass *wgpu.RenderPassEncoder, pipeline *BoundPipeline, scene *Scene, arena *ReleaseArena) error
}

// Render encodes and submits one frame: one render pass per compiled
// pipeline, in declaration order.
//
// The first pipeline that declares a depth attachment clears depth;
// every later depth-attached pipeline loads it, so depth is cleared
// exactly once per frame no matter how many passes write it.
func (r *Renderer) Render(graph *RenderGraph, scene *Scene, target *wgpu.TextureView, clearColor [3]uint8, providers map[string]GeometryProvider, frustum *Frustum) error {
	defer r.Profiler.Track("render.Frame")()

	snapshot := graph.Snapshot()
	if snapshot == nil {
		return configErrorf("", "render graph has not been compiled")
	}

	encoder, err := r.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("could not create command encoder: %w", err)
	}
	defer encoder.Release()

	arena := &ReleaseArena{}
	defer arena.Release()

	clear := wgpu.Color{
		R: float64(clearColor[0]) / 255,
		G: float64(clearColor[1]) / 255,
		B: float64(clearColor[2]) / 255,
		A: 1,
	}

	shouldClearDepth := true
	for _, pipeline := range snapshot.Pipelines {
		stopPass := r.Profiler.Track("pass." + pipeline.Name)
		colorAttachments, err := r.colorAttachments(snapshot, pipeline, target, clear)
		if err != nil {
			return err
		}

		var depthAttachment *wgpu.RenderPassDepthStencilAttachment
		if pipeline.Config.Depth != "" {
			view, err := r.depthView(snapshot, pipeline, scene)
			if err != nil {
				return err
			}
			depthLoad := wgpu.LoadOpLoad
			if shouldClearDepth {
				depthLoad = wgpu.LoadOpClear
				shouldClearDepth = false
			}
			depthAttachment = &wgpu.RenderPassDepthStencilAttachment{
				View:            view,
				DepthLoadOp:     depthLoad,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			}
		}

		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label:                  pipeline.Name,
			ColorAttachments:       colorAttachments,
			DepthStencilAttachment: depthAttachment,
		})
		pass.SetPipeline(pipeline.Pipeline)
		for i := range pipeline.BindGroups {
			bg := &pipeline.BindGroups[i]
			if bg.Group != nil {
				pass.SetBindGroup(bg.Slot, bg.Group, nil)
			}
		}

		switch pipeline.Config.Geometry {
		case GeoTerrain:
			r.renderTerrain(pass, pipeline, scene, frustum)
		case GeoEntities:
			r.renderEntities(pass, pipeline, scene)
		default:
			provider, ok := providers[pipeline.Config.Geometry]
			if !ok {
				pass.End()
				pass.Release()
				// Custom geometry may be registered after compile, so
				// this surfaces at render time, never silently.
				return configErrorf(pipeline.Name, "no geometry provider for kind '%s'", pipeline.Config.Geometry)
			}
			if err := provider.Render(pass, pipeline, scene, arena); err != nil {
				pass.End()
				pass.Release()
				return fmt.Errorf("geometry provider '%s': %w", pipeline.Config.Geometry, err)
			}
		}

		pass.End()
		pass.Release()
		stopPass()
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("could not finish command encoder: %w", err)
	}
	defer cmd.Release()
	r.Queue.Submit(cmd)
	return nil
}

func (r *Renderer) colorAttachments(snapshot *GraphSnapshot, pipeline *BoundPipeline, target *wgpu.TextureView, clear wgpu.Color) ([]wgpu.RenderPassColorAttachment, error) {
	loadOp := wgpu.LoadOpLoad
	if pipeline.Config.Clear {
		loadOp = wgpu.LoadOpClear
	}
	attachments := make([]wgpu.RenderPassColorAttachment, 0, len(pipeline.Config.Output))
	for _, id := range pipeline.Config.Output {
		var view *wgpu.TextureView
		if id == ResFramebuffer {
			view = target
		} else {
			backing, err := snapshot.Resources.Get(id)
			if err != nil {
				return nil, configErrorf(pipeline.Name, "output %v", err)
			}
			if backing.Kind != BackingTexture2D {
				return nil, configErrorf(pipeline.Name, "output '%s' is not a texture", id)
			}
			view = backing.Texture.View
		}
		attachments = append(attachments, wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clear,
		})
	}
	return attachments, nil
}

func (r *Renderer) depthView(snapshot *GraphSnapshot, pipeline *BoundPipeline, scene *Scene) (*wgpu.TextureView, error) {
	if pipeline.Config.Depth == ResDepth {
		return scene.Depth.View, nil
	}
	backing, err := snapshot.Resources.Get(pipeline.Config.Depth)
	if err != nil {
		return nil, configErrorf(pipeline.Name, "depth %v", err)
	}
	if backing.Kind != BackingTexture2D {
		return nil, configErrorf(pipeline.Name, "depth '%s' is not a texture", pipeline.Config.Depth)
	}
	return backing.Texture.View, nil
}

// renderTerrain draws every visible chunk section. The section read
// lock is held for the whole pass, so a bake thread replacing a section
// waits for the pass to end.
func (r *Renderer) renderTerrain(pass *wgpu.RenderPassEncoder, pipeline *BoundPipeline, scene *Scene, frustum *Frustum) {
	scene.mu.RLock()
	defer scene.mu.RUnlock()

	if scene.chunkBindGroup == nil {
		return
	}
	for i := range pipeline.BindGroups {
		bg := &pipeline.BindGroups[i]
		if bg.Name == BGChunkSSBO {
			pass.SetBindGroup(bg.Slot, scene.chunkBindGroup, nil)
		}
	}
	pass.SetIndexBuffer(scene.chunkIndices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)

	cam := scene.cameraSection()
	pcOffset, hasPC := pipeline.PushConstantOffset(PCSectionPosition)

	for _, sec := range scene.sections {
		relX := sec.Pos.X - cam[0]
		relZ := sec.Pos.Z - cam[1]
		min := mgl32.Vec3{
			float32(relX) * world.ChunkWidth,
			float32(sec.Pos.Y) * world.SectionHeight,
			float32(relZ) * world.ChunkWidth,
		}
		max := min.Add(mgl32.Vec3{world.ChunkWidth, world.SectionHeight, world.ChunkWidth})
		if frustum != nil && !frustum.IntersectsAABB(min, max) {
			continue
		}

		layer := sec.Layers[world.LayerSolid]
		if layer == nil {
			continue
		}
		if hasPC {
			var pc [12]byte
			binary.LittleEndian.PutUint32(pc[0:], uint32(relX))
			binary.LittleEndian.PutUint32(pc[4:], uint32(sec.Pos.Y))
			binary.LittleEndian.PutUint32(pc[8:], uint32(relZ))
			pass.SetPushConstants(wgpu.ShaderStageVertex, pcOffset, pc[:])
		}
		// The vertex shader fetches from the storage buffer at
		// firstInstance+vertex_index, so the layer's vertex offset
		// rides in the instance range.
		pass.DrawIndexed(layer.IndexEnd-layer.IndexStart, 1, layer.IndexStart, 0, layer.VertexStart)
	}
}

// renderEntities draws a snapshot of the entity batches, so encoding
// never holds the live entity lock.
func (r *Renderer) renderEntities(pass *wgpu.RenderPassEncoder, pipeline *BoundPipeline, scene *Scene) {
	batches := scene.entitySnapshot()
	if len(batches) == 0 {
		return
	}

	entitySlot := uint32(0)
	for i := range pipeline.BindGroups {
		if pipeline.BindGroups[i].Name == BGEntity {
			entitySlot = pipeline.BindGroups[i].Slot
		}
	}
	pcOffset, hasPC := pipeline.PushConstantOffset(PCPartsPerEntity)

	names := make([]string, 0, len(batches))
	for name := range batches {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		batch := batches[name]
		if batch.InstanceCount == 0 {
			continue
		}
		pass.SetBindGroup(entitySlot, batch.BindGroup, nil)
		if hasPC {
			var pc [4]byte
			binary.LittleEndian.PutUint32(pc[:], batch.PartCount)
			pass.SetPushConstants(wgpu.ShaderStageVertex, pcOffset, pc[:])
		}
		pass.SetVertexBuffer(0, batch.MeshBuffer, 0, wgpu.WholeSize)
		pass.SetVertexBuffer(1, batch.InstanceBuffer, 0, wgpu.WholeSize)
		pass.Draw(batch.VertexCount, batch.InstanceCount, 0, 0)
	}
}
