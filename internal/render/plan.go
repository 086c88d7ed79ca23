package render

import (
	"sort"

	"github.com/cogentcore/webgpu/wgpu"

	"voxelgfx/internal/shaderpack"
)

// pipelinePlan is the device-independent resolution of one pipeline
// entry: every name checked, every layout and range computed. Plans
// carry no GPU handles, so resolution is testable without a device.
type pipelinePlan struct {
	name          string
	config        shaderpack.Pipeline
	pushRanges    []wgpu.PushConstantRange
	pushOffsets   map[string]uint32
	blend         *wgpu.BlendState
	vertexBuffers []wgpu.VertexBufferLayout
	bindGroups    []bindGroupPlan
}

type bindGroupPlan struct {
	slot    uint32
	named   string
	entries []entryPlan
}

type entryPlan struct {
	binding    uint32
	resourceID string
}

// planGraph resolves every pipeline of the configuration. namedBindGroup
// reports whether a named bind-group reference is available (reserved
// or caller-supplied).
func planGraph(cfg *shaderpack.Config, customVertex map[string][]wgpu.VertexBufferLayout, namedBindGroup func(string) bool) ([]pipelinePlan, error) {
	plans := make([]pipelinePlan, 0, len(cfg.Pipelines))
	for _, entry := range cfg.Pipelines {
		plan, err := planPipeline(entry.Name, entry.Pipeline, customVertex, namedBindGroup)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func planPipeline(name string, cfg shaderpack.Pipeline, customVertex map[string][]wgpu.VertexBufferLayout, namedBindGroup func(string) bool) (pipelinePlan, error) {
	plan := pipelinePlan{name: name, config: cfg}

	if len(cfg.Output) == 0 {
		return plan, configErrorf(name, "pipeline declares no outputs")
	}

	ranges, offsets, err := resolvePushConstants(name, cfg.PushConstants)
	if err != nil {
		return plan, err
	}
	plan.pushRanges = ranges
	plan.pushOffsets = offsets

	blend, err := resolveBlend(name, cfg.Blending)
	if err != nil {
		return plan, err
	}
	plan.blend = blend

	layouts, err := resolveVertexLayouts(name, cfg.Geometry, customVertex)
	if err != nil {
		return plan, err
	}
	plan.vertexBuffers = layouts

	for slot, def := range cfg.BindGroups {
		bg := bindGroupPlan{slot: slot}
		if def.Resource != "" {
			if !namedBindGroup(def.Resource) {
				return plan, configErrorf(name, "unresolved bind group reference '%s'", def.Resource)
			}
			bg.named = def.Resource
		} else {
			for binding, id := range def.Entries {
				bg.entries = append(bg.entries, entryPlan{binding: binding, resourceID: id})
			}
			sort.Slice(bg.entries, func(i, j int) bool {
				return bg.entries[i].binding < bg.entries[j].binding
			})
		}
		plan.bindGroups = append(plan.bindGroups, bg)
	}
	sort.Slice(plan.bindGroups, func(i, j int) bool {
		return plan.bindGroups[i].slot < plan.bindGroups[j].slot
	})

	return plan, nil
}
