package blockmodel

import (
	"testing"

	"voxelgfx/internal/resource"
)

func testProvider() resource.MapProvider {
	return resource.MapProvider{
		"models/block/test_cube.json": []byte(`{
			"textures": { "all": "block/stone" },
			"elements": [ { "from": [0,0,0], "to": [16,16,16], "faces": { "down": { "texture": "#all" } } } ]
		}`),
		"models/block/test_child.json": []byte(`{
			"parent": "block/test_cube",
			"textures": { "particle": "block/dirt" }
		}`),
		"models/block/test_texture_resolve.json": []byte(`{
			"textures": { "primary": "block/diamond_block", "secondary": "#primary" },
			"elements": [ { "from": [0,0,0], "to": [16,16,16], "faces": { "north": { "texture": "#secondary" } } } ]
		}`),
		"blockstates/test_variants.json": []byte(`{
			"variants": {
				"": { "model": "block/test_cube" },
				"facing=north": [ { "model": "block/test_cube", "weight": 2 }, { "model": "block/test_child" } ]
			}
		}`),
		"blockstates/test_multipart.json": []byte(`{
			"multipart": [
				{ "apply": { "model": "block/test_cube" } },
				{ "when": { "north": "true" }, "apply": [ { "model": "block/test_child" } ] }
			]
		}`),
	}
}

func TestLoadSimpleModel(t *testing.T) {
	loader := NewLoader(testProvider())
	model, err := loader.LoadModel("block/test_cube")
	if err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}

	if len(model.Elements) != 1 {
		t.Errorf("Expected 1 element, got %d", len(model.Elements))
	}

	if model.Textures["all"] != "block/stone" {
		t.Errorf("Expected texture 'all' to be 'block/stone', got '%s'", model.Textures["all"])
	}
}

func TestLoadChildModel(t *testing.T) {
	loader := NewLoader(testProvider())
	model, err := loader.LoadModel("block/test_child")
	if err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}

	if len(model.Elements) != 1 {
		t.Errorf("Expected 1 element from parent, got %d", len(model.Elements))
	}

	if model.Textures["all"] != "block/stone" {
		t.Errorf("Expected texture 'all' to be inherited as 'block/stone', got '%s'", model.Textures["all"])
	}

	if model.Textures["particle"] != "block/dirt" {
		t.Errorf("Expected texture 'particle' to be 'block/dirt', got '%s'", model.Textures["particle"])
	}
}

func TestTextureResolve(t *testing.T) {
	loader := NewLoader(testProvider())
	model, err := loader.LoadModel("block/test_texture_resolve")
	if err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}

	face := model.Elements[0].Faces["north"]
	if face.Texture != "block/diamond_block" {
		t.Errorf("Expected texture to be resolved to 'block/diamond_block', got '%s'", face.Texture)
	}
}

func TestCache(t *testing.T) {
	loader := NewLoader(testProvider())
	model1, err := loader.LoadModel("block/test_cube")
	if err != nil {
		t.Fatalf("Failed to load model first time: %v", err)
	}

	model2, err := loader.LoadModel("block/test_cube")
	if err != nil {
		t.Fatalf("Failed to load model second time: %v", err)
	}

	if model1 != model2 {
		t.Errorf("Expected the same model instance to be returned from cache")
	}
}

func TestLoadBlockStateVariants(t *testing.T) {
	loader := NewLoader(testProvider())
	state, err := loader.LoadBlockState("test_variants")
	if err != nil {
		t.Fatalf("Failed to load blockstate: %v", err)
	}

	if len(state.Variants) != 2 {
		t.Fatalf("Expected 2 variants, got %d", len(state.Variants))
	}

	single := state.Variants[""]
	if len(single) != 1 || single[0].Model != "block/test_cube" {
		t.Errorf("Expected single variant 'block/test_cube', got %+v", single)
	}

	weighted := state.Variants["facing=north"]
	if len(weighted) != 2 {
		t.Fatalf("Expected 2 weighted candidates, got %d", len(weighted))
	}
	if weighted[0].Weight != 2 {
		t.Errorf("Expected first candidate weight 2, got %d", weighted[0].Weight)
	}
}

func TestLoadBlockStateMultipart(t *testing.T) {
	loader := NewLoader(testProvider())
	state, err := loader.LoadBlockState("test_multipart")
	if err != nil {
		t.Fatalf("Failed to load blockstate: %v", err)
	}

	if len(state.Multipart) != 2 {
		t.Fatalf("Expected 2 multipart cases, got %d", len(state.Multipart))
	}

	if !state.Multipart[0].Applies(map[string]string{}) {
		t.Errorf("Expected case without 'when' to always apply")
	}

	if !state.Multipart[1].Applies(map[string]string{"north": "true"}) {
		t.Errorf("Expected case to apply when north=true")
	}
	if state.Multipart[1].Applies(map[string]string{"north": "false"}) {
		t.Errorf("Expected case not to apply when north=false")
	}
}

func TestSiblingsDoNotShareParentFaces(t *testing.T) {
	provider := testProvider()
	provider["models/block/template_cube.json"] = []byte(`{
		"elements": [ { "from": [0,0,0], "to": [16,16,16], "faces": { "up": { "texture": "#all" } } } ]
	}`)
	provider["models/block/test_dirt.json"] = []byte(`{
		"parent": "block/template_cube",
		"textures": { "all": "block/dirt_tex" }
	}`)
	provider["models/block/test_stone.json"] = []byte(`{
		"parent": "block/template_cube",
		"textures": { "all": "block/stone_tex" }
	}`)
	loader := NewLoader(provider)

	dirt, err := loader.LoadModel("block/test_dirt")
	if err != nil {
		t.Fatalf("Failed to load first child: %v", err)
	}
	stone, err := loader.LoadModel("block/test_stone")
	if err != nil {
		t.Fatalf("Failed to load second child: %v", err)
	}

	if got := dirt.Elements[0].Faces["up"].Texture; got != "block/dirt_tex" {
		t.Errorf("Expected dirt face texture 'block/dirt_tex', got '%s'", got)
	}
	if got := stone.Elements[0].Faces["up"].Texture; got != "block/stone_tex" {
		t.Errorf("Expected stone face texture 'block/stone_tex', got '%s'", got)
	}

	parent, err := loader.LoadModel("block/template_cube")
	if err != nil {
		t.Fatalf("Failed to load parent: %v", err)
	}
	if got := parent.Elements[0].Faces["up"].Texture; got != "#all" {
		t.Errorf("Expected cached parent to keep '#all', got '%s'", got)
	}
}

func TestLoadMissingModel(t *testing.T) {
	loader := NewLoader(testProvider())
	if _, err := loader.LoadModel("block/does_not_exist"); err == nil {
		t.Fatalf("Expected error for missing model")
	}
}
