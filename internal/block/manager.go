package block

import (
	"fmt"
	"sort"

	"voxelgfx/internal/world"
	"voxelgfx/pkg/blockmodel"
)

// Manager is the ordered block registry. Block ids are assigned in
// registration order and double as the Block field of a
// world.BlockstateKey.
type Manager struct {
	loader *blockmodel.Loader
	blocks []*Block
	byName map[string]uint16
}

func NewManager(loader *blockmodel.Loader) *Manager {
	return &Manager{
		loader: loader,
		byName: make(map[string]uint16),
	}
}

// BakeBlocks loads and bakes the blockstate definition of every named
// block, registering them in order. Baking stops at the first failure.
func (m *Manager) BakeBlocks(names []string) error {
	for _, name := range names {
		if _, err := m.BakeBlock(name); err != nil {
			return err
		}
	}
	return nil
}

// BakeBlock loads one blockstate definition, bakes all of its models,
// and registers the block. Re-baking a registered name returns the
// existing id.
func (m *Manager) BakeBlock(name string) (uint16, error) {
	if id, ok := m.byName[name]; ok {
		return id, nil
	}

	state, err := m.loader.LoadBlockState(name)
	if err != nil {
		return 0, fmt.Errorf("could not bake block '%s': %w", name, err)
	}

	blk := &Block{Name: name}
	switch {
	case len(state.Variants) > 0:
		set, err := m.bakeVariants(state.Variants)
		if err != nil {
			return 0, fmt.Errorf("could not bake block '%s': %w", name, err)
		}
		blk.Variants = set
	case len(state.Multipart) > 0:
		cases, err := m.bakeMultipart(state.Multipart)
		if err != nil {
			return 0, fmt.Errorf("could not bake block '%s': %w", name, err)
		}
		blk.Multipart = NewMultipartSet(cases)
	default:
		return 0, fmt.Errorf("blockstate '%s' has neither variants nor multipart", name)
	}

	id := uint16(len(m.blocks))
	m.blocks = append(m.blocks, blk)
	m.byName[name] = id
	return id, nil
}

func (m *Manager) bakeVariants(variants map[string]blockmodel.VariantList) (*VariantSet, error) {
	// JSON object order is not preserved by decoding, so handles are
	// assigned over the sorted key list to keep them stable across runs.
	keys := make([]string, 0, len(variants))
	for key := range variants {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	set := &VariantSet{
		keys:   keys,
		byKey:  make(map[string]uint16, len(keys)),
		meshes: make([][]*ModelMesh, 0, len(keys)),
	}
	for i, key := range keys {
		candidates, err := m.bakeCandidates(variants[key])
		if err != nil {
			return nil, fmt.Errorf("variant '%s': %w", key, err)
		}
		set.byKey[key] = uint16(i)
		set.meshes = append(set.meshes, candidates)
	}
	return set, nil
}

func (m *Manager) bakeMultipart(cases []blockmodel.MultipartCase) ([]MultipartCase, error) {
	out := make([]MultipartCase, 0, len(cases))
	for i := range cases {
		candidates, err := m.bakeCandidates(cases[i].Apply)
		if err != nil {
			return nil, fmt.Errorf("multipart case %d: %w", i, err)
		}
		out = append(out, MultipartCase{When: cases[i].When, Apply: candidates})
	}
	return out, nil
}

func (m *Manager) bakeCandidates(variants blockmodel.VariantList) ([]*ModelMesh, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("no model candidates")
	}
	out := make([]*ModelMesh, 0, len(variants))
	for _, v := range variants {
		model, err := m.loader.LoadModel(v.Model)
		if err != nil {
			return nil, err
		}
		mesh, err := Mesh(model)
		if err != nil {
			return nil, fmt.Errorf("model '%s': %w", v.Model, err)
		}
		out = append(out, mesh)
	}
	return out, nil
}

// Lookup returns the registered block with the given name.
func (m *Manager) Lookup(name string) (*Block, uint16, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, 0, false
	}
	return m.blocks[id], id, true
}

// Block returns the block registered under the given id.
func (m *Manager) Block(id uint16) (*Block, bool) {
	if int(id) >= len(m.blocks) {
		return nil, false
	}
	return m.blocks[id], true
}

// Resolve maps a named block state to its baked mesh and the compact
// key chunk storage uses for it.
func (m *Manager) Resolve(name string, props []StateProperty, seed int64) (world.BlockstateKey, *ModelMesh, error) {
	blk, id, ok := m.Lookup(name)
	if !ok {
		return world.BlockstateKey{}, nil, &UnknownBlockError{Name: name}
	}
	mesh, handle, err := blk.Resolve(props, seed)
	if err != nil {
		return world.BlockstateKey{}, nil, err
	}
	return world.BlockstateKey{Block: id, Augment: handle}, mesh, nil
}

// ByKey looks a mesh up directly from a compact state key. It never
// bakes: multipart handles not yet resolved report no mesh.
func (m *Manager) ByKey(key world.BlockstateKey) (*ModelMesh, bool) {
	blk, ok := m.Block(key.Block)
	if !ok {
		return nil, false
	}
	return blk.Mesh(key.Augment)
}
