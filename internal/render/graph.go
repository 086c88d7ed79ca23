package render

import (
	"fmt"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"

	"voxelgfx/internal/shaderpack"
)

// BoundPipeline is one compiled pipeline together with its resolved
// bind groups. It is immutable once compiled; recompilation replaces
// the whole graph snapshot, never a pipeline in place.
type BoundPipeline struct {
	Name     string
	Config   shaderpack.Pipeline
	Pipeline *wgpu.RenderPipeline
	// BindGroups is ordered by slot. Entries with a Name are bound late
	// against scene state; entries with a Group were created at compile
	// time from inline resource declarations.
	BindGroups []BoundBindGroup

	pushOffsets map[string]uint32
}

// PushConstantOffset returns the declared byte offset of a semantic
// push-constant name in this pipeline.
func (p *BoundPipeline) PushConstantOffset(name string) (uint32, bool) {
	offset, ok := p.pushOffsets[name]
	return offset, ok
}

type BoundBindGroup struct {
	Slot  uint32
	Name  string
	Group *wgpu.BindGroup

	layout *wgpu.BindGroupLayout
}

func (b *BoundBindGroup) release() {
	if b.Group != nil {
		b.Group.Release()
	}
	if b.layout != nil {
		b.layout.Release()
	}
}

// GraphSnapshot is one complete compiled graph. Readers always see a
// whole snapshot or none; a rebuild swaps the pointer atomically.
type GraphSnapshot struct {
	Config    *shaderpack.Config
	Pipelines []*BoundPipeline
	byName    map[string]*BoundPipeline
	Resources *ResourceRegistry

	ownedSampler *wgpu.Sampler
}

// Pipeline looks a compiled pipeline up by name.
func (s *GraphSnapshot) Pipeline(name string) (*BoundPipeline, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// PipelineNames returns the names in declaration order.
func (s *GraphSnapshot) PipelineNames() []string {
	names := make([]string, len(s.Pipelines))
	for i, p := range s.Pipelines {
		names[i] = p.Name
	}
	return names
}

func (s *GraphSnapshot) release() {
	for _, p := range s.Pipelines {
		for i := range p.BindGroups {
			p.BindGroups[i].release()
		}
		if p.Pipeline != nil {
			p.Pipeline.Release()
		}
	}
	if s.ownedSampler != nil {
		s.ownedSampler.Release()
	}
	if s.Resources != nil {
		s.Resources.Release()
	}
}

// CompileOptions carries the inputs the configuration cannot express.
type CompileOptions struct {
	// Atlas backs the reserved "@texture_block_atlas" id. Required.
	Atlas *TextureAndView
	// Sampler backs "@sampler"; a default nearest sampler is created
	// when nil.
	Sampler *wgpu.Sampler
	// SceneLayouts supplies the bind group layouts of the late-bound
	// reserved groups. Required when a pipeline references them.
	SceneLayouts *SceneLayouts
	// CustomBindGroupLayouts resolves named bind-group references
	// beyond the reserved set.
	CustomBindGroupLayouts map[string]*wgpu.BindGroupLayout
	// CustomVertexLayouts resolves geometry kinds beyond the built-in
	// set.
	CustomVertexLayouts map[string][]wgpu.VertexBufferLayout
}

// SceneLayouts are the bind group layouts a Scene exposes for the
// reserved late-bound groups.
type SceneLayouts struct {
	ChunkSSBO *wgpu.BindGroupLayout
	Entity    *wgpu.BindGroupLayout
}

// RenderGraph holds the live compiled graph. One snapshot is current at
// a time; Compile builds a complete replacement and swaps it in, so
// in-flight frames never observe a half-updated graph.
type RenderGraph struct {
	renderer *Renderer
	snapshot atomic.Pointer[GraphSnapshot]
}

func NewRenderGraph(renderer *Renderer) *RenderGraph {
	return &RenderGraph{renderer: renderer}
}

// Snapshot returns the current compiled graph, or nil before the first
// successful Compile.
func (g *RenderGraph) Snapshot() *GraphSnapshot {
	return g.snapshot.Load()
}

// Release frees the current snapshot's GPU objects.
func (g *RenderGraph) Release() {
	if old := g.snapshot.Swap(nil); old != nil {
		old.release()
	}
}

// Compile builds every pipeline of the configuration and atomically
// replaces the previous graph. On any error the previous graph stays
// current and the partial build is released.
func (g *RenderGraph) Compile(cfg *shaderpack.Config, opts CompileOptions) error {
	if opts.Atlas == nil {
		return configErrorf("", "no block atlas texture supplied for '%s'", ResBlockAtlas)
	}

	namedBindGroup := func(name string) bool {
		switch name {
		case BGChunkSSBO, BGEntity:
			return opts.SceneLayouts != nil
		}
		_, ok := opts.CustomBindGroupLayouts[name]
		return ok
	}
	plans, err := planGraph(cfg, opts.CustomVertexLayouts, namedBindGroup)
	if err != nil {
		return err
	}

	snapshot := &GraphSnapshot{
		Config:    cfg,
		byName:    make(map[string]*BoundPipeline, len(plans)),
		Resources: NewResourceRegistry(g.renderer),
	}

	for id, res := range cfg.Resources {
		if err := snapshot.Resources.Register(id, res); err != nil {
			snapshot.release()
			return err
		}
	}

	// Reserved ids are injected here, not declared by the pack.
	snapshot.Resources.Insert(ResBlockAtlas, &ResourceBacking{Kind: BackingTexture2D, Texture: opts.Atlas})
	sampler := opts.Sampler
	if sampler == nil {
		sampler, err = g.renderer.CreateDefaultSampler()
		if err != nil {
			snapshot.release()
			return err
		}
		snapshot.ownedSampler = sampler
	}
	snapshot.Resources.Insert(ResSampler, &ResourceBacking{Kind: BackingSampler, Sampler: sampler})

	for i := range plans {
		bound, err := g.realizePipeline(&plans[i], snapshot.Resources, &opts)
		if err != nil {
			snapshot.release()
			return err
		}
		snapshot.Pipelines = append(snapshot.Pipelines, bound)
		snapshot.byName[bound.Name] = bound
	}

	if old := g.snapshot.Swap(snapshot); old != nil {
		old.release()
	}
	g.renderer.Log.Info("render graph compiled",
		"pipelines", len(snapshot.Pipelines),
		"resources", len(snapshot.Resources.IDs()))
	return nil
}

func (g *RenderGraph) realizePipeline(plan *pipelinePlan, registry *ResourceRegistry, opts *CompileOptions) (*BoundPipeline, error) {
	shaderPath := "shaders/" + plan.name + ".wgsl"
	source, err := g.renderer.Provider.GetString(shaderPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline '%s': %w", plan.name, err)
	}
	module, err := g.renderer.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          plan.name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline '%s': could not compile shader: %w", plan.name, err)
	}
	defer module.Release()

	bound := &BoundPipeline{
		Name:        plan.name,
		Config:      plan.config,
		pushOffsets: plan.pushOffsets,
	}

	var groupLayouts []*wgpu.BindGroupLayout
	for _, bg := range plan.bindGroups {
		switch {
		case bg.named == BGChunkSSBO:
			groupLayouts = append(groupLayouts, opts.SceneLayouts.ChunkSSBO)
			bound.BindGroups = append(bound.BindGroups, BoundBindGroup{Slot: bg.slot, Name: bg.named})
		case bg.named == BGEntity:
			groupLayouts = append(groupLayouts, opts.SceneLayouts.Entity)
			bound.BindGroups = append(bound.BindGroups, BoundBindGroup{Slot: bg.slot, Name: bg.named})
		case bg.named != "":
			groupLayouts = append(groupLayouts, opts.CustomBindGroupLayouts[bg.named])
			bound.BindGroups = append(bound.BindGroups, BoundBindGroup{Slot: bg.slot, Name: bg.named})
		default:
			layout, group, err := g.realizeBindGroup(plan.name, bg, registry)
			if err != nil {
				for i := range bound.BindGroups {
					bound.BindGroups[i].release()
				}
				return nil, err
			}
			groupLayouts = append(groupLayouts, layout)
			bound.BindGroups = append(bound.BindGroups, BoundBindGroup{
				Slot: bg.slot, Group: group, layout: layout,
			})
		}
	}

	releaseGroups := func() {
		for i := range bound.BindGroups {
			bound.BindGroups[i].release()
		}
	}

	pipelineLayout, err := g.renderer.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:              plan.name,
		BindGroupLayouts:   groupLayouts,
		PushConstantRanges: plan.pushRanges,
	})
	if err != nil {
		releaseGroups()
		return nil, fmt.Errorf("pipeline '%s': %w", plan.name, err)
	}
	defer pipelineLayout.Release()

	targets := make([]wgpu.ColorTargetState, len(plan.config.Output))
	for i := range targets {
		targets[i] = wgpu.ColorTargetState{
			Format:    ColorFormat,
			Blend:     plan.blend,
			WriteMask: wgpu.ColorWriteMaskAll,
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if plan.config.Depth != "" {
		depthStencil = &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	pipeline, err := g.renderer.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  plan.name,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vert",
			Buffers:    plan.vertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "frag",
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		releaseGroups()
		return nil, fmt.Errorf("pipeline '%s': %w", plan.name, err)
	}
	bound.Pipeline = pipeline
	return bound, nil
}

func (g *RenderGraph) realizeBindGroup(pipeline string, plan bindGroupPlan, registry *ResourceRegistry) (*wgpu.BindGroupLayout, *wgpu.BindGroup, error) {
	var layoutEntries []wgpu.BindGroupLayoutEntry
	var bindingEntries []wgpu.BindGroupEntry
	for _, entry := range plan.entries {
		backing, err := registry.Get(entry.resourceID)
		if err != nil {
			return nil, nil, fmt.Errorf("pipeline '%s' bind group %d: %w", pipeline, plan.slot, err)
		}
		layoutEntries = append(layoutEntries, backing.LayoutEntries(entry.binding)...)
		bindingEntries = append(bindingEntries, backing.BindingEntries(entry.binding)...)
	}

	label := fmt.Sprintf("%s bind group %d", pipeline, plan.slot)
	layout, err := g.renderer.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: layoutEntries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline '%s': %w", pipeline, err)
	}
	group, err := g.renderer.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: bindingEntries,
	})
	if err != nil {
		layout.Release()
		return nil, nil, fmt.Errorf("pipeline '%s': %w", pipeline, err)
	}
	return layout, group, nil
}
