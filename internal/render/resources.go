package render

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"voxelgfx/internal/shaderpack"
)

// Reserved resource ids injected by the graph compiler itself. They
// must be present before pipeline compilation begins.
const (
	ResBlockAtlas  = "@texture_block_atlas"
	ResSampler     = "@sampler"
	ResFramebuffer = "@framebuffer_texture"
	ResDepth       = "@texture_depth"
	BGChunkSSBO    = "@bg_ssbo_chunks"
	BGEntity       = "@bg_entity"
)

// BackingKind tags the variants of ResourceBacking.
type BackingKind uint8

const (
	BackingBuffer BackingKind = iota
	BackingBufferArray
	BackingTexture2D
	BackingSampler
)

// ResourceBacking is a named logical resource resolved to live GPU
// objects. Its lifetime is the lifetime of the compiled graph that
// owns it.
type ResourceBacking struct {
	Kind BackingKind

	Buffer     *wgpu.Buffer
	BufferType wgpu.BufferBindingType
	Buffers    []*wgpu.Buffer
	Texture    *TextureAndView
	Sampler    *wgpu.Sampler

	// owned marks backings whose GPU objects the registry releases;
	// injected backings stay owned by their creator.
	owned bool
}

// LayoutEntries describes this backing as bind-group-layout entries
// starting at the given binding index. Buffer arrays expand to one
// entry per buffer, mirroring BindingEntries.
func (b *ResourceBacking) LayoutEntries(binding uint32) []wgpu.BindGroupLayoutEntry {
	if b.Kind == BackingBufferArray {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(b.Buffers))
		for i := range b.Buffers {
			entries = append(entries, wgpu.BindGroupLayoutEntry{
				Binding:    binding + uint32(i),
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: b.BufferType},
			})
		}
		return entries
	}
	return []wgpu.BindGroupLayoutEntry{b.layoutEntry(binding)}
}

func (b *ResourceBacking) layoutEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	switch b.Kind {
	case BackingTexture2D:
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  false,
			},
		}
	case BackingSampler:
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		}
	default:
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: b.BufferType,
			},
		}
	}
}

// BindingEntries describes this backing as bind-group entries starting
// at the given binding index. Buffer arrays expand to one entry per
// buffer.
func (b *ResourceBacking) BindingEntries(binding uint32) []wgpu.BindGroupEntry {
	switch b.Kind {
	case BackingTexture2D:
		return []wgpu.BindGroupEntry{{Binding: binding, TextureView: b.Texture.View}}
	case BackingSampler:
		return []wgpu.BindGroupEntry{{Binding: binding, Sampler: b.Sampler}}
	case BackingBufferArray:
		entries := make([]wgpu.BindGroupEntry, 0, len(b.Buffers))
		for i, buf := range b.Buffers {
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: binding + uint32(i),
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			})
		}
		return entries
	default:
		return []wgpu.BindGroupEntry{{
			Binding: binding,
			Buffer:  b.Buffer,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}}
	}
}

func (b *ResourceBacking) release() {
	if !b.owned {
		return
	}
	switch b.Kind {
	case BackingTexture2D:
		b.Texture.Release()
	case BackingSampler:
		b.Sampler.Release()
	case BackingBufferArray:
		for _, buf := range b.Buffers {
			buf.Release()
		}
	default:
		if b.Buffer != nil {
			b.Buffer.Release()
		}
	}
}

// ResourceRegistry resolves declared resource ids to backings. It is
// rebuilt from scratch on every graph compile.
type ResourceRegistry struct {
	renderer *Renderer
	backings map[string]*ResourceBacking
}

func NewResourceRegistry(renderer *Renderer) *ResourceRegistry {
	return &ResourceRegistry{
		renderer: renderer,
		backings: make(map[string]*ResourceBacking),
	}
}

// Register resolves one declared resource. Shorthand scalar and matrix
// literals are deferred: they belong to a different subsystem and get
// no GPU allocation here.
func (r *ResourceRegistry) Register(id string, res shaderpack.Resource) error {
	switch res.Kind {
	case shaderpack.ResourceInt, shaderpack.ResourceFloat,
		shaderpack.ResourceMat3, shaderpack.ResourceMat4,
		shaderpack.ResourceTextureDepth:
		// Depth textures are attachment-owned; the declaration only names
		// the id for pipelines that bind it.
		return nil

	case shaderpack.ResourceTexture2D:
		if res.Src == "" {
			return fmt.Errorf("texture2d resource '%s' needs a src", id)
		}
		tex, err := r.renderer.LoadTexture(res.Src)
		if err != nil {
			return err
		}
		r.backings[id] = &ResourceBacking{Kind: BackingTexture2D, Texture: tex, owned: true}
		return nil

	case shaderpack.ResourceBlob:
		if res.Src == "" {
			return fmt.Errorf("blob resource '%s' needs a src", id)
		}
		data, err := r.renderer.Provider.GetBytes(res.Src)
		if err != nil {
			return fmt.Errorf("could not load blob '%s': %w", id, err)
		}
		buf, err := r.renderer.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    id,
			Contents: data,
			Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("could not create blob buffer '%s': %w", id, err)
		}
		r.backings[id] = &ResourceBacking{
			Kind:       BackingBuffer,
			Buffer:     buf,
			BufferType: wgpu.BufferBindingTypeReadOnlyStorage,
			owned:      true,
		}
		return nil

	case shaderpack.ResourceF32, shaderpack.ResourceI32:
		buf, err := r.renderer.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: id,
			Size:  4,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("could not create uniform buffer '%s': %w", id, err)
		}
		r.backings[id] = &ResourceBacking{
			Kind:       BackingBuffer,
			Buffer:     buf,
			BufferType: wgpu.BufferBindingTypeUniform,
			owned:      true,
		}
		return nil
	}
	return fmt.Errorf("resource '%s' has unsupported kind %s", id, res.Kind)
}

// Insert adds an externally owned backing under a reserved id.
func (r *ResourceRegistry) Insert(id string, backing *ResourceBacking) {
	r.backings[id] = backing
}

// Get returns the backing for a resource id.
func (r *ResourceRegistry) Get(id string) (*ResourceBacking, error) {
	backing, ok := r.backings[id]
	if !ok {
		return nil, &UnknownResourceError{ID: id}
	}
	return backing, nil
}

// Has reports whether an id resolves without fetching it.
func (r *ResourceRegistry) Has(id string) bool {
	_, ok := r.backings[id]
	return ok
}

// IDs returns every registered resource id.
func (r *ResourceRegistry) IDs() []string {
	out := make([]string, 0, len(r.backings))
	for id := range r.backings {
		out = append(out, id)
	}
	return out
}

// Release frees every backing the registry owns.
func (r *ResourceRegistry) Release() {
	for _, backing := range r.backings {
		backing.release()
	}
	r.backings = make(map[string]*ResourceBacking)
}
