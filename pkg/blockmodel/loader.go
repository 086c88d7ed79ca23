package blockmodel

import (
	"encoding/json"
	"fmt"
	"strings"

	"voxelgfx/internal/resource"
)

// Loader reads block models and blockstate definitions from a resource
// provider, resolving parent inheritance and texture indirection.
type Loader struct {
	provider   resource.Provider
	modelCache map[string]*Model
}

func NewLoader(provider resource.Provider) *Loader {
	return &Loader{
		provider:   provider,
		modelCache: make(map[string]*Model),
	}
}

func (l *Loader) LoadModel(name string) (*Model, error) {
	if !strings.Contains(name, "/") {
		name = "block/" + name
	}

	if model, ok := l.modelCache[name]; ok {
		return model, nil
	}

	data, err := l.provider.GetBytes("models/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("could not unmarshal model json: %w", err)
	}

	if model.Parent != "" {
		parentName := model.Parent
		if strings.HasPrefix(parentName, "builtin/") {
			l.modelCache[name] = &model
			return &model, nil
		}

		parent, err := l.LoadModel(parentName)
		if err != nil {
			return nil, fmt.Errorf("could not load parent model '%s': %w", parentName, err)
		}

		if model.AmbientOcclusion == nil {
			model.AmbientOcclusion = parent.AmbientOcclusion
		}
		if len(model.Elements) == 0 {
			// Elements are copied, not aliased: resolveTextures writes
			// resolved names into Faces, and the cached parent must keep
			// its "#key" references for later children.
			model.Elements = copyElements(parent.Elements)
		}
		if model.Textures == nil && len(parent.Textures) > 0 {
			model.Textures = make(map[string]string, len(parent.Textures))
		}
		for key, val := range parent.Textures {
			if _, ok := model.Textures[key]; !ok {
				model.Textures[key] = val
			}
		}
	}

	l.resolveTextures(&model)
	l.modelCache[name] = &model
	return &model, nil
}

// copyElements clones inherited elements so face rewrites never touch
// the parent's cached copies. TintIndex and Rotation stay shared: the
// loader never mutates them.
func copyElements(elements []Element) []Element {
	out := make([]Element, len(elements))
	for i, el := range elements {
		out[i] = el
		out[i].Faces = make(map[string]Face, len(el.Faces))
		for name, face := range el.Faces {
			out[i].Faces[name] = face
		}
	}
	return out
}

func (l *Loader) resolveTextures(m *Model) {
	for i := range m.Elements {
		for faceName, face := range m.Elements[i].Faces {
			originalTexture := face.Texture
			resolvedTexture := l.ResolveTexture(originalTexture, m)
			if resolvedTexture != originalTexture {
				face.Texture = resolvedTexture
				m.Elements[i].Faces[faceName] = face
			}
		}
	}
}

// ResolveTexture follows "#key" references through the model's texture
// map. Chains are capped at 10 hops to break reference cycles.
func (l *Loader) ResolveTexture(textureName string, m *Model) string {
	for i := 0; i < 10 && strings.HasPrefix(textureName, "#"); i++ {
		key := strings.TrimPrefix(textureName, "#")
		if resolved, ok := m.Textures[key]; ok {
			textureName = resolved
		} else {
			break
		}
	}
	return textureName
}

func (l *Loader) LoadBlockState(name string) (*BlockState, error) {
	data, err := l.provider.GetBytes("blockstates/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("could not read blockstate file: %w", err)
	}

	var blockState BlockState
	if err := json.Unmarshal(data, &blockState); err != nil {
		return nil, fmt.Errorf("could not unmarshal blockstate json: %w", err)
	}

	return &blockState, nil
}
