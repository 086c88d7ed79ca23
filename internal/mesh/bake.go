// Package mesh bakes chunk block data into vertex streams.
package mesh

import (
	"voxelgfx/internal/block"
	"voxelgfx/internal/world"
)

// Mapper converts one baked model vertex at a chunk-local block
// position into the caller's output vertex type.
type Mapper[T any] func(v block.Vertex, x, y, z float32, key world.BlockstateKey) T

// Filter decides whether a block state takes part in the bake. A nil
// filter admits everything.
type Filter func(key world.BlockstateKey) bool

// Bake walks every cell of the chunk and emits quad vertices for the
// visible faces, 4 vertices per quad in winding order.
//
// Cells scan x fastest, then z, then y; whole sections are skipped when
// the provider reports them empty. Cube mesh faces are culled against
// the six neighbors: a neighbor whose mesh occludes the shared face
// drops it, while cells without a resolved mesh (chunk borders, unloaded
// neighbors) leave the face visible. Complex meshes are emitted whole.
func Bake[T any](mgr *block.Manager, c *world.Chunk, mapper Mapper[T], filter Filter, provider world.BlockStateProvider) []T {
	baseX := c.Pos[0] * world.ChunkWidth
	baseZ := c.Pos[1] * world.ChunkWidth

	var out []T
	emit := func(faces []block.Face, x, y, z int, key world.BlockstateKey) {
		fx, fy, fz := float32(x), float32(y), float32(z)
		for i := range faces {
			for _, v := range faces[i].Vertices {
				out = append(out, mapper(v, fx, fy, fz, key))
			}
		}
	}

	for idx := 0; idx < world.ChunkVolume; {
		x := idx % world.ChunkWidth
		y := idx / world.ChunkArea
		z := (idx % world.ChunkArea) / world.ChunkWidth

		if x == 0 && z == 0 && y%world.SectionHeight == 0 &&
			provider.IsSectionEmpty(y/world.SectionHeight) {
			idx += world.SectionVolume
			continue
		}
		idx++

		ax, ay, az := baseX+int32(x), int32(y), baseZ+int32(z)
		state := provider.GetState(ax, ay, az)
		key, ok := state.Key()
		if !ok {
			continue
		}
		if filter != nil && !filter(key) {
			continue
		}
		m, ok := mgr.ByKey(key)
		if !ok {
			continue
		}

		if !m.IsCube {
			emit(m.Complex, x, y, z, key)
			continue
		}
		for d := block.Direction(0); d < block.DirectionCount; d++ {
			faces := m.CubeFaces[d]
			if len(faces) == 0 {
				continue
			}
			if neighborOccludes(mgr, provider, ax, ay, az, d) {
				continue
			}
			emit(faces, x, y, z, key)
		}
	}
	return out
}

func neighborOccludes(mgr *block.Manager, provider world.BlockStateProvider, x, y, z int32, d block.Direction) bool {
	dx, dy, dz := d.Offset()
	state := provider.GetState(x+dx, y+dy, z+dz)
	key, ok := state.Key()
	if !ok {
		return false
	}
	m, ok := mgr.ByKey(key)
	if !ok {
		return false
	}
	return m.Occludes(d.Opposite())
}
