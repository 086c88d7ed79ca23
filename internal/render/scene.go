package render

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"voxelgfx/internal/world"
)

// TerrainVertex is one baked chunk vertex as stored in the shared
// chunk storage buffer.
type TerrainVertex struct {
	Position [3]float32
	UV       [2]float32
	Normal   [3]float32
	// BlockKey packs the BlockstateKey: block id in the low 16 bits,
	// augment in the high 16.
	BlockKey uint32
}

// TerrainVertexStride is the packed byte size of one TerrainVertex.
const TerrainVertexStride = 9 * 4

// PackBlockKey packs a state key into the per-vertex metadata word.
func PackBlockKey(key world.BlockstateKey) uint32 {
	return uint32(key.Block) | uint32(key.Augment)<<16
}

// PackTerrainVertices serializes vertices for upload into the chunk
// storage buffer.
func PackTerrainVertices(vertices []TerrainVertex) []byte {
	out := make([]byte, 0, len(vertices)*TerrainVertexStride)
	var scratch [4]byte
	putF32 := func(f float32) {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(f))
		out = append(out, scratch[:]...)
	}
	for i := range vertices {
		v := &vertices[i]
		putF32(v.Position[0])
		putF32(v.Position[1])
		putF32(v.Position[2])
		putF32(v.UV[0])
		putF32(v.UV[1])
		putF32(v.Normal[0])
		putF32(v.Normal[1])
		putF32(v.Normal[2])
		binary.LittleEndian.PutUint32(scratch[:], v.BlockKey)
		out = append(out, scratch[:]...)
	}
	return out
}

// QuadIndices builds a triangle-list index stream for consecutive
// quads, two triangles per four vertices.
func QuadIndices(quads int) []uint32 {
	out := make([]uint32, 0, quads*6)
	for i := 0; i < quads; i++ {
		base := uint32(i * 4)
		out = append(out, base, base+1, base+2, base+2, base+3, base)
	}
	return out
}

// ChunkSection is the renderable geometry of one 16³ section: ranges
// into the shared chunk buffers, one optional range per layer.
type ChunkSection struct {
	Pos    world.SectionPos
	Layers [world.RenderLayerCount]*world.LayerRange
}

// EntityBatch is the per-entity-type instance state drawn by the
// entity geometry kind.
type EntityBatch struct {
	BindGroup      *wgpu.BindGroup
	MeshBuffer     *wgpu.Buffer
	InstanceBuffer *wgpu.Buffer
	VertexCount    uint32
	InstanceCount  uint32
	PartCount      uint32
}

// Scene is the per-frame mutable render state. It outlives individual
// frames: sections are replaced by chunk baking while the scheduler
// reads them, so section storage is lock-guarded. The scheduler holds
// the read lock for the whole terrain pass, bounding staleness to one
// frame.
type Scene struct {
	renderer *Renderer

	mu       sync.RWMutex
	sections map[world.SectionPos]*ChunkSection

	// Camera chunk-grid position; terrain AABBs are computed relative
	// to it.
	camMu      sync.Mutex
	camSection [2]int32

	chunkLayout    *wgpu.BindGroupLayout
	entityLayout   *wgpu.BindGroupLayout
	chunkVertices  *wgpu.Buffer
	chunkIndices   *wgpu.Buffer
	chunkBindGroup *wgpu.BindGroup

	entityMu sync.Mutex
	entities map[string]*EntityBatch

	Depth *TextureAndView
}

func NewScene(renderer *Renderer, width, height uint32) (*Scene, error) {
	depth, err := renderer.CreateDepthTexture(width, height)
	if err != nil {
		return nil, err
	}

	chunkLayout, err := renderer.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "chunk ssbo layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
		}},
	})
	if err != nil {
		depth.Release()
		return nil, fmt.Errorf("could not create chunk layout: %w", err)
	}

	entityLayout, err := renderer.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "entity layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		chunkLayout.Release()
		depth.Release()
		return nil, fmt.Errorf("could not create entity layout: %w", err)
	}

	return &Scene{
		renderer:     renderer,
		sections:     make(map[world.SectionPos]*ChunkSection),
		entities:     make(map[string]*EntityBatch),
		chunkLayout:  chunkLayout,
		entityLayout: entityLayout,
		Depth:        depth,
	}, nil
}

// Layouts exposes the bind group layouts pipelines referencing the
// reserved groups are compiled against.
func (s *Scene) Layouts() *SceneLayouts {
	return &SceneLayouts{ChunkSSBO: s.chunkLayout, Entity: s.entityLayout}
}

// Resize recreates the depth texture for a new target size.
func (s *Scene) Resize(width, height uint32) error {
	depth, err := s.renderer.CreateDepthTexture(width, height)
	if err != nil {
		return err
	}
	if s.Depth != nil {
		s.Depth.Release()
	}
	s.Depth = depth
	return nil
}

// SetCameraSection records the camera's chunk-grid position.
func (s *Scene) SetCameraSection(x, z int32) {
	s.camMu.Lock()
	s.camSection = [2]int32{x, z}
	s.camMu.Unlock()
}

func (s *Scene) cameraSection() [2]int32 {
	s.camMu.Lock()
	defer s.camMu.Unlock()
	return s.camSection
}

// UploadTerrain replaces the shared chunk vertex storage and index
// buffers with freshly baked data.
func (s *Scene) UploadTerrain(vertexData []byte, indices []uint32) error {
	vertexBuf, err := s.renderer.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "chunk vertices",
		Contents: vertexData,
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("could not create chunk vertex buffer: %w", err)
	}
	indexBuf, err := s.renderer.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "chunk indices",
		Contents: wgpu.ToBytes(indices),
		Usage:    wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertexBuf.Release()
		return fmt.Errorf("could not create chunk index buffer: %w", err)
	}
	bindGroup, err := s.renderer.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "chunk ssbo",
		Layout: s.chunkLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  vertexBuf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		indexBuf.Release()
		vertexBuf.Release()
		return fmt.Errorf("could not create chunk bind group: %w", err)
	}

	s.mu.Lock()
	old := [3]interface{ Release() }{}
	if s.chunkBindGroup != nil {
		old = [3]interface{ Release() }{s.chunkBindGroup, s.chunkVertices, s.chunkIndices}
	}
	s.chunkVertices = vertexBuf
	s.chunkIndices = indexBuf
	s.chunkBindGroup = bindGroup
	s.mu.Unlock()

	for _, o := range old {
		if o != nil {
			o.Release()
		}
	}
	return nil
}

// SetSection inserts or replaces one section's layer ranges. A
// superseded bake is replaced whole, never merged.
func (s *Scene) SetSection(section *ChunkSection) {
	s.mu.Lock()
	s.sections[section.Pos] = section
	s.mu.Unlock()
}

// RemoveSection drops a section from the draw set.
func (s *Scene) RemoveSection(pos world.SectionPos) {
	s.mu.Lock()
	delete(s.sections, pos)
	s.mu.Unlock()
}

// SectionCount returns the number of stored sections.
func (s *Scene) SectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sections)
}

// SetEntityBatch installs or replaces the instance batch of one entity
// type. A nil batch removes the type.
func (s *Scene) SetEntityBatch(entityType string, batch *EntityBatch) {
	s.entityMu.Lock()
	if batch == nil {
		delete(s.entities, entityType)
	} else {
		s.entities[entityType] = batch
	}
	s.entityMu.Unlock()
}

// entitySnapshot clones the batch map so GPU encoding never holds the
// live entity lock.
func (s *Scene) entitySnapshot() map[string]*EntityBatch {
	s.entityMu.Lock()
	defer s.entityMu.Unlock()
	out := make(map[string]*EntityBatch, len(s.entities))
	for k, v := range s.entities {
		out[k] = v
	}
	return out
}

// Release frees the scene's GPU objects.
func (s *Scene) Release() {
	s.mu.Lock()
	if s.chunkBindGroup != nil {
		s.chunkBindGroup.Release()
		s.chunkVertices.Release()
		s.chunkIndices.Release()
		s.chunkBindGroup = nil
		s.chunkVertices = nil
		s.chunkIndices = nil
	}
	s.mu.Unlock()

	s.chunkLayout.Release()
	s.entityLayout.Release()
	if s.Depth != nil {
		s.Depth.Release()
		s.Depth = nil
	}
}
