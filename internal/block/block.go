package block

import (
	"fmt"
	"strings"
	"sync"
)

// UnknownBlockError is returned when a block name is not registered.
type UnknownBlockError struct {
	Name string
}

func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("unknown block '%s'", e.Name)
}

// UnknownVariantError is returned when a variants-type block has no
// entry matching the requested state key.
type UnknownVariantError struct {
	Block   string
	Variant string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("block '%s' has no variant '%s'", e.Block, e.Variant)
}

// StateProperty is one key=value pair of a block state. Property order
// is significant: the canonical state key preserves caller order.
type StateProperty struct {
	Key, Value string
}

// StateKey renders properties into the canonical "k=v,k=v" form.
func StateKey(props []StateProperty) string {
	var b strings.Builder
	for i, p := range props {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Block is a registered block: either a variants table or a multipart
// definition, never both.
type Block struct {
	Name      string
	Variants  *VariantSet
	Multipart *MultipartSet
}

// Resolve maps a block state to its mesh and a stable per-block handle.
// The seed parameter reserves room for weighted candidate selection;
// until a selection policy exists, candidate 0 is always used.
func (b *Block) Resolve(props []StateProperty, seed int64) (*ModelMesh, uint16, error) {
	_ = seed
	key := StateKey(props)
	if b.Variants != nil {
		return b.Variants.resolve(b.Name, key)
	}
	return b.Multipart.resolve(key, props)
}

// Mesh returns the mesh a previously issued handle refers to.
func (b *Block) Mesh(handle uint16) (*ModelMesh, bool) {
	if b.Variants != nil {
		return b.Variants.mesh(handle)
	}
	return b.Multipart.mesh(handle)
}

// VariantSet holds the baked candidate meshes for each state key of a
// variants-type block. Handles are the state key's index in the sorted
// key order fixed at bake time.
type VariantSet struct {
	keys   []string
	byKey  map[string]uint16
	meshes [][]*ModelMesh
}

func (s *VariantSet) resolve(blockName, key string) (*ModelMesh, uint16, error) {
	handle, ok := s.byKey[key]
	if !ok {
		return nil, 0, &UnknownVariantError{Block: blockName, Variant: key}
	}
	return s.meshes[handle][0], handle, nil
}

func (s *VariantSet) mesh(handle uint16) (*ModelMesh, bool) {
	if int(handle) >= len(s.meshes) {
		return nil, false
	}
	return s.meshes[handle][0], true
}

// MultipartCase is one conditionally applied part. Every property in
// When must match the queried state exactly; an empty When always
// applies.
type MultipartCase struct {
	When  map[string]string
	Apply []*ModelMesh
}

func (c *MultipartCase) applies(props []StateProperty) bool {
	for key, want := range c.When {
		found := false
		for _, p := range props {
			if p.Key == key {
				found = p.Value == want
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MultipartSet evaluates multipart cases against block states and
// caches the combined meshes. Handles are assigned in cache insertion
// order and never invalidated.
type MultipartSet struct {
	Cases []MultipartCase

	mu     sync.RWMutex
	byKey  map[string]uint16
	meshes []*ModelMesh
}

func NewMultipartSet(cases []MultipartCase) *MultipartSet {
	return &MultipartSet{Cases: cases, byKey: make(map[string]uint16)}
}

func (s *MultipartSet) resolve(key string, props []StateProperty) (*ModelMesh, uint16, error) {
	s.mu.RLock()
	if handle, ok := s.byKey[key]; ok {
		mesh := s.meshes[handle]
		s.mu.RUnlock()
		return mesh, handle, nil
	}
	s.mu.RUnlock()

	// Baking is a pure function of the cases and the state, so it runs
	// outside the lock. Concurrent resolvers for the same key may bake
	// twice; the first insert wins and the duplicate is discarded.
	baked := s.bake(props)

	s.mu.Lock()
	defer s.mu.Unlock()
	if handle, ok := s.byKey[key]; ok {
		return s.meshes[handle], handle, nil
	}
	handle := uint16(len(s.meshes))
	s.byKey[key] = handle
	s.meshes = append(s.meshes, baked)
	return baked, handle, nil
}

func (s *MultipartSet) bake(props []StateProperty) *ModelMesh {
	combined := &ModelMesh{}
	for i := range s.Cases {
		c := &s.Cases[i]
		if !c.applies(props) || len(c.Apply) == 0 {
			continue
		}
		combined.Complex = append(combined.Complex, c.Apply[0].AllFaces()...)
	}
	return combined
}

func (s *MultipartSet) mesh(handle uint16) (*ModelMesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(handle) >= len(s.meshes) {
		return nil, false
	}
	return s.meshes[handle], true
}
