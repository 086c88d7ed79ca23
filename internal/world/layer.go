package world

// RenderLayer classifies baked geometry into exclusive draw groups.
// Each section stores at most one index/vertex range per layer.
type RenderLayer int

const (
	LayerSolid RenderLayer = iota
	LayerCutout
	LayerTranslucent

	RenderLayerCount
)

func (l RenderLayer) String() string {
	switch l {
	case LayerSolid:
		return "solid"
	case LayerCutout:
		return "cutout"
	case LayerTranslucent:
		return "translucent"
	default:
		return "unknown"
	}
}

// LayerRange is the slice of the shared chunk buffer holding one
// section's geometry for one layer.
type LayerRange struct {
	IndexStart, IndexEnd   uint32
	VertexStart, VertexEnd uint32
}
