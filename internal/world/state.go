package world

// BlockstateKey is a dense handle identifying one rendered variant of
// one block type: Block indexes into the block manager's ordered
// registry, Augment indexes the variant within that block. Keys are
// stable for the lifetime of a loaded block-definition set and are
// embedded as per-vertex metadata.
type BlockstateKey struct {
	Block   uint16
	Augment uint16
}

// ChunkBlockState is the state of a single cell: air, or a concrete
// block variant. Air never resolves to a mesh.
type ChunkBlockState struct {
	key BlockstateKey
	set bool
}

// Air is the empty block state.
var Air = ChunkBlockState{}

// State returns a block state holding the given key.
func State(key BlockstateKey) ChunkBlockState {
	return ChunkBlockState{key: key, set: true}
}

// IsAir reports whether the state is the air state.
func (s ChunkBlockState) IsAir() bool {
	return !s.set
}

// Key returns the blockstate key and whether the state is non-air.
func (s ChunkBlockState) Key() (BlockstateKey, bool) {
	return s.key, s.set
}

// BlockStateProvider supplies block states by absolute world
// coordinates. Implementations must answer queries outside the chunk
// currently being baked (cross-chunk neighbor lookups) and must be safe
// for concurrent use by baking workers.
type BlockStateProvider interface {
	// GetState returns the state at the given absolute coordinates.
	// Coordinates outside the loaded grid return Air.
	GetState(x, y, z int32) ChunkBlockState

	// IsSectionEmpty reports whether the indexed vertical section of
	// the chunk being baked contains only air.
	IsSectionEmpty(index int) bool
}
