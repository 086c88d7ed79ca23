package render

import (
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// Built-in geometry kinds. Each has a hard-coded vertex buffer layout;
// any other kind must come with a caller-supplied layout.
const (
	GeoTerrain    = "@geo_terrain"
	GeoEntities   = "@geo_entities"
	GeoQuad       = "@geo_quad"
	GeoSunMoon    = "@geo_sun_moon"
	GeoSkyScatter = "@geo_sky_scatter"
	GeoSkyStars   = "@geo_sky_stars"
	GeoSkyFog     = "@geo_sky_fog"
)

// Recognized push-constant semantic names.
const (
	PCModelMatrix     = "@pc_mat4_model"
	PCSectionPosition = "@pc_section_position"
	PCTotalSections   = "@pc_total_sections"
	PCPartsPerEntity  = "@pc_parts_per_entity"
	PCColorModulator  = "@pc_color_modulator"
)

type pushConstantInfo struct {
	size   uint32
	stages wgpu.ShaderStage
}

// The set is closed: a name outside this table is a configuration
// error, never a passthrough.
var pushConstantTable = map[string]pushConstantInfo{
	PCModelMatrix:     {size: 64, stages: wgpu.ShaderStageVertex},
	PCSectionPosition: {size: 12, stages: wgpu.ShaderStageVertex},
	PCTotalSections:   {size: 4, stages: wgpu.ShaderStageVertex},
	PCPartsPerEntity:  {size: 4, stages: wgpu.ShaderStageVertex},
	PCColorModulator:  {size: 16, stages: wgpu.ShaderStageFragment},
}

// resolvePushConstants maps declared offset→name pairs to concrete
// ranges, sorted by offset.
func resolvePushConstants(pipeline string, decls map[uint32]string) ([]wgpu.PushConstantRange, map[string]uint32, error) {
	if len(decls) == 0 {
		return nil, nil, nil
	}
	ranges := make([]wgpu.PushConstantRange, 0, len(decls))
	offsets := make(map[string]uint32, len(decls))
	for offset, name := range decls {
		info, ok := pushConstantTable[name]
		if !ok {
			return nil, nil, configErrorf(pipeline, "unknown push constant '%s'", name)
		}
		ranges = append(ranges, wgpu.PushConstantRange{
			Stages: info.stages,
			Start:  offset,
			End:    offset + info.size,
		})
		offsets[name] = offset
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges, offsets, nil
}

// resolveBlend maps a named blend preset to its state. An empty name
// means no blending (opaque write).
func resolveBlend(pipeline, name string) (*wgpu.BlendState, error) {
	switch name {
	case "":
		return nil, nil
	case "replace":
		state := wgpu.BlendStateReplace
		return &state, nil
	case "alpha_blending":
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}, nil
	case "premultiplied_alpha_blending":
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}, nil
	case "color_add_alpha_blending":
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorZero,
				Operation: wgpu.BlendOperationAdd,
			},
		}, nil
	}
	return nil, configErrorf(pipeline, "unknown blend preset '%s'", name)
}

// Entity meshes carry position, UV, and normal per vertex.
var entityMeshLayout = wgpu.VertexBufferLayout{
	ArrayStride: 8 * 4,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 2},
	},
}

// Entity instances carry the entity index and its texture slot.
var entityInstanceLayout = wgpu.VertexBufferLayout{
	ArrayStride: 2 * 4,
	StepMode:    wgpu.VertexStepModeInstance,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatUint32, Offset: 0, ShaderLocation: 6},
		{Format: wgpu.VertexFormatUint32, Offset: 4, ShaderLocation: 7},
	},
}

var quadLayout = wgpu.VertexBufferLayout{
	ArrayStride: 5 * 4,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
	},
}

var skyLayout = wgpu.VertexBufferLayout{
	ArrayStride: 3 * 4,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
	},
}

// resolveVertexLayouts returns the vertex buffer layouts for a geometry
// kind. Terrain has none: its vertices live in a storage buffer indexed
// by the index buffer.
func resolveVertexLayouts(pipeline, kind string, custom map[string][]wgpu.VertexBufferLayout) ([]wgpu.VertexBufferLayout, error) {
	switch kind {
	case GeoTerrain:
		return nil, nil
	case GeoEntities:
		return []wgpu.VertexBufferLayout{entityMeshLayout, entityInstanceLayout}, nil
	case GeoQuad, GeoSunMoon:
		return []wgpu.VertexBufferLayout{quadLayout}, nil
	case GeoSkyScatter, GeoSkyStars, GeoSkyFog:
		return []wgpu.VertexBufferLayout{skyLayout}, nil
	}
	if layouts, ok := custom[kind]; ok {
		return layouts, nil
	}
	return nil, configErrorf(pipeline, "unknown geometry kind '%s'", kind)
}
