package world

const (
	// Chunk dimensions
	ChunkWidth  = 16
	ChunkHeight = 256
	ChunkArea   = ChunkWidth * ChunkWidth
	ChunkVolume = ChunkArea * ChunkHeight

	// Section dimensions
	SectionHeight = 16
	SectionCount  = ChunkHeight / SectionHeight
	SectionVolume = ChunkArea * SectionHeight
)

// Chunk is a 16x256x16 column of the world, identified by its position
// on the chunk grid. Chunks are read-only while they are being baked;
// block data lives behind a BlockStateProvider so that neighbor lookups
// can cross chunk boundaries.
type Chunk struct {
	Pos [2]int32
}

// NewChunk creates a chunk at the given chunk-grid coordinates.
func NewChunk(x, z int32) *Chunk {
	return &Chunk{Pos: [2]int32{x, z}}
}

// SectionPos identifies one 16x16x16 section in world section-grid
// coordinates (X and Z in chunk units, Y in section units).
type SectionPos struct {
	X, Y, Z int32
}
