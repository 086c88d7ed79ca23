package mesh

import (
	"testing"

	"voxelgfx/internal/block"
	"voxelgfx/internal/resource"
	"voxelgfx/internal/world"
	"voxelgfx/pkg/blockmodel"
)

type testVertex struct {
	Pos [3]float32
	Key world.BlockstateKey
}

func testMapper(v block.Vertex, x, y, z float32, key world.BlockstateKey) testVertex {
	return testVertex{
		Pos: [3]float32{v.Position[0] + x, v.Position[1] + y, v.Position[2] + z},
		Key: key,
	}
}

// gridProvider serves block states from a sparse map of absolute
// coordinates.
type gridProvider struct {
	states   map[[3]int32]world.ChunkBlockState
	getCalls int
}

func newGridProvider() *gridProvider {
	return &gridProvider{states: make(map[[3]int32]world.ChunkBlockState)}
}

func (g *gridProvider) set(x, y, z int32, key world.BlockstateKey) {
	g.states[[3]int32{x, y, z}] = world.State(key)
}

func (g *gridProvider) GetState(x, y, z int32) world.ChunkBlockState {
	g.getCalls++
	return g.states[[3]int32{x, y, z}]
}

func (g *gridProvider) IsSectionEmpty(index int) bool {
	lo := int32(index * world.SectionHeight)
	hi := lo + world.SectionHeight
	for pos := range g.states {
		if pos[1] >= lo && pos[1] < hi {
			return false
		}
	}
	return true
}

func bakeManager(t *testing.T) *testRegistry {
	t.Helper()
	provider := resource.MapProvider{
		"models/block/cube_all.json": []byte(`{
			"textures": { "all": "block/stone" },
			"elements": [ { "from": [0,0,0], "to": [16,16,16], "faces": {
				"north": { "texture": "#all", "cullface": "north" },
				"south": { "texture": "#all", "cullface": "south" },
				"east":  { "texture": "#all", "cullface": "east" },
				"west":  { "texture": "#all", "cullface": "west" },
				"up":    { "texture": "#all", "cullface": "up" },
				"down":  { "texture": "#all", "cullface": "down" }
			} } ]
		}`),
		"models/block/torch.json": []byte(`{
			"elements": [ { "from": [7,0,7], "to": [9,10,9], "faces": {
				"north": { "texture": "block/torch" },
				"south": { "texture": "block/torch" }
			} } ]
		}`),
		"blockstates/stone.json": []byte(`{ "variants": { "": { "model": "block/cube_all" } } }`),
		"blockstates/torch.json": []byte(`{ "variants": { "": { "model": "block/torch" } } }`),
	}
	mgr := block.NewManager(blockmodel.NewLoader(provider))
	if err := mgr.BakeBlocks([]string{"stone", "torch"}); err != nil {
		t.Fatalf("Failed to bake blocks: %v", err)
	}
	return &testRegistry{mgr: mgr}
}

// testRegistry bundles the manager with the registered test keys.
type testRegistry struct {
	mgr *block.Manager
}

func (m *testRegistry) stone() world.BlockstateKey {
	return world.BlockstateKey{Block: 0, Augment: 0}
}

func (m *testRegistry) torch() world.BlockstateKey {
	return world.BlockstateKey{Block: 1, Augment: 0}
}

func TestBakeEmptyChunk(t *testing.T) {
	m := bakeManager(t)
	provider := newGridProvider()
	chunk := world.NewChunk(0, 0)

	verts := Bake(m.mgr, chunk, testMapper, nil, provider)
	if len(verts) != 0 {
		t.Errorf("Expected no vertices for empty chunk, got %d", len(verts))
	}
	if provider.getCalls != 0 {
		t.Errorf("Expected empty sections to be skipped without state reads, got %d reads", provider.getCalls)
	}
}

func TestBakeIsolatedCube(t *testing.T) {
	m := bakeManager(t)
	provider := newGridProvider()
	provider.set(5, 20, 5, m.stone())
	chunk := world.NewChunk(0, 0)

	verts := Bake(m.mgr, chunk, testMapper, nil, provider)
	if len(verts) != 24 {
		t.Fatalf("Expected 24 vertices (6 quads), got %d", len(verts))
	}
	for i, v := range verts {
		if v.Key != m.stone() {
			t.Errorf("Expected vertex %d key %+v, got %+v", i, m.stone(), v.Key)
		}
		if v.Pos[0] < 5 || v.Pos[0] > 6 || v.Pos[1] < 20 || v.Pos[1] > 21 {
			t.Errorf("Expected vertex %d inside cell (5,20,5), got %v", i, v.Pos)
		}
	}
}

func TestBakeAdjacentCubesCullSharedFaces(t *testing.T) {
	m := bakeManager(t)
	provider := newGridProvider()
	provider.set(5, 0, 5, m.stone())
	provider.set(6, 0, 5, m.stone())
	chunk := world.NewChunk(0, 0)

	verts := Bake(m.mgr, chunk, testMapper, nil, provider)
	// Two cubes share one face pair: 2*24 - 2*4 = 40.
	if len(verts) != 40 {
		t.Errorf("Expected 40 vertices with shared faces culled, got %d", len(verts))
	}
}

func TestBakeComplexNeighborDoesNotCull(t *testing.T) {
	m := bakeManager(t)
	provider := newGridProvider()
	provider.set(5, 0, 5, m.stone())
	provider.set(6, 0, 5, m.torch())
	chunk := world.NewChunk(0, 0)

	verts := Bake(m.mgr, chunk, testMapper, nil, provider)
	// Torch does not occlude, so the cube keeps all 6 faces; the torch
	// itself emits its 2 complex faces unconditionally.
	if len(verts) != 24+8 {
		t.Errorf("Expected 32 vertices, got %d", len(verts))
	}
}

func TestBakeFilter(t *testing.T) {
	m := bakeManager(t)
	provider := newGridProvider()
	provider.set(5, 0, 5, m.stone())
	provider.set(6, 0, 5, m.torch())
	chunk := world.NewChunk(0, 0)

	onlyTorch := func(key world.BlockstateKey) bool { return key == m.torch() }
	verts := Bake(m.mgr, chunk, testMapper, onlyTorch, provider)
	if len(verts) != 8 {
		t.Errorf("Expected 8 vertices with filter, got %d", len(verts))
	}
	for i, v := range verts {
		if v.Key != m.torch() {
			t.Errorf("Expected vertex %d to come from the torch, got %+v", i, v.Key)
		}
	}
}

func TestBakeFullSection(t *testing.T) {
	m := bakeManager(t)
	provider := newGridProvider()
	for x := int32(0); x < world.ChunkWidth; x++ {
		for z := int32(0); z < world.ChunkWidth; z++ {
			for y := int32(0); y < world.SectionHeight; y++ {
				provider.set(x, y, z, m.stone())
			}
		}
	}
	chunk := world.NewChunk(0, 0)

	verts := Bake(m.mgr, chunk, testMapper, nil, provider)
	// Only the 6*16*16 surface faces survive culling, 4 vertices each.
	if len(verts) != 6144 {
		t.Errorf("Expected 6144 vertices for a full section, got %d", len(verts))
	}
}

// fullScanProvider reports every section as occupied, forcing the bake
// to visit every cell.
type fullScanProvider struct {
	*gridProvider
}

func (f fullScanProvider) IsSectionEmpty(index int) bool { return false }

func TestBakeSectionSkipEquivalence(t *testing.T) {
	m := bakeManager(t)
	provider := newGridProvider()
	provider.set(1, 3, 2, m.stone())
	provider.set(1, 4, 2, m.stone())
	provider.set(8, 70, 8, m.torch())
	chunk := world.NewChunk(0, 0)

	skipped := Bake(m.mgr, chunk, testMapper, nil, provider)
	full := Bake(m.mgr, chunk, testMapper, nil, fullScanProvider{provider})

	if len(skipped) != len(full) {
		t.Fatalf("Expected identical vertex counts, got %d vs %d", len(skipped), len(full))
	}
	for i := range skipped {
		if skipped[i] != full[i] {
			t.Fatalf("Expected identical output at vertex %d, got %+v vs %+v", i, skipped[i], full[i])
		}
	}
}

func TestBakeChunkOffset(t *testing.T) {
	m := bakeManager(t)
	provider := newGridProvider()
	// Block stored at absolute coordinates of chunk (2, -1).
	provider.set(2*16+3, 0, -16+4, m.stone())
	chunk := world.NewChunk(2, -1)

	verts := Bake(m.mgr, chunk, testMapper, nil, provider)
	if len(verts) != 24 {
		t.Fatalf("Expected 24 vertices, got %d", len(verts))
	}
	// Emitted positions are chunk-local.
	for i, v := range verts {
		if v.Pos[0] < 3 || v.Pos[0] > 4 || v.Pos[2] < 4 || v.Pos[2] > 5 {
			t.Errorf("Expected vertex %d at local cell (3,0,4), got %v", i, v.Pos)
		}
	}
}
