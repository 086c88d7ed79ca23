package shaderpack

import "testing"

const sampleConfig = `
resources:
  res_brightness: 1.5
  res_flags: 42
  res_identity:
    - 1
    - 0
    - 0
    - 0
    - 1
    - 0
    - 0
    - 0
    - 1
  res_atlas:
    type: texture2d
    src: textures/atlas.png

pipelines:
  sky:
    geometry: "@geo_sky_scatter"
    output:
      - "@framebuffer_texture"
    blending: replace
  terrain:
    geometry: "@geo_terrain"
    output:
      - "@framebuffer_texture"
    depth: "@texture_depth"
    clear: true
    blending: alpha_blending
    bind_groups:
      0: "@bg_ssbo_chunks"
      1:
        0: "@texture_block_atlas"
        1: "@sampler"
    push_constants:
      0: "@pc_section_position"
  entities:
    geometry: "@geo_entities"
    output:
      - "@framebuffer_texture"
    depth: "@texture_depth"
    blending: premultiplied_alpha_blending
    bind_groups:
      0: "@bg_entity"
    push_constants:
      0: "@pc_parts_per_entity"
`

func TestParsePreservesPipelineOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	want := []string{"sky", "terrain", "entities"}
	if len(cfg.Pipelines) != len(want) {
		t.Fatalf("Expected %d pipelines, got %d", len(want), len(cfg.Pipelines))
	}
	for i, name := range want {
		if cfg.Pipelines[i].Name != name {
			t.Errorf("Expected pipeline %d to be '%s', got '%s'", i, name, cfg.Pipelines[i].Name)
		}
	}
}

func TestParsePipelineFields(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	terrain := cfg.Pipelines[1].Pipeline
	if terrain.Geometry != "@geo_terrain" {
		t.Errorf("Expected geometry '@geo_terrain', got '%s'", terrain.Geometry)
	}
	if !terrain.Clear {
		t.Errorf("Expected terrain pipeline to clear")
	}
	if terrain.Depth != "@texture_depth" {
		t.Errorf("Expected depth '@texture_depth', got '%s'", terrain.Depth)
	}
	if terrain.Blending != "alpha_blending" {
		t.Errorf("Expected blending 'alpha_blending', got '%s'", terrain.Blending)
	}
	if terrain.PushConstants[0] != "@pc_section_position" {
		t.Errorf("Expected push constant '@pc_section_position', got '%s'", terrain.PushConstants[0])
	}

	sky := cfg.Pipelines[0].Pipeline
	if sky.Depth != "" {
		t.Errorf("Expected sky pipeline without depth, got '%s'", sky.Depth)
	}
}

func TestParseBindGroupForms(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	terrain := cfg.Pipelines[1].Pipeline
	named := terrain.BindGroups[0]
	if named.Resource != "@bg_ssbo_chunks" {
		t.Errorf("Expected named bind group '@bg_ssbo_chunks', got '%s'", named.Resource)
	}
	if named.Entries != nil {
		t.Errorf("Expected named bind group without inline entries")
	}

	inline := terrain.BindGroups[1]
	if inline.Resource != "" {
		t.Errorf("Expected inline bind group without name, got '%s'", inline.Resource)
	}
	if inline.Entries[0] != "@texture_block_atlas" || inline.Entries[1] != "@sampler" {
		t.Errorf("Expected inline entries atlas+sampler, got %v", inline.Entries)
	}
}

func TestParseResources(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if r := cfg.Resources["res_flags"]; r.Kind != ResourceInt || r.Int != 42 {
		t.Errorf("Expected int resource 42, got %+v", r)
	}
	if r := cfg.Resources["res_brightness"]; r.Kind != ResourceFloat || r.Float != 1.5 {
		t.Errorf("Expected float resource 1.5, got %+v", r)
	}
	if r := cfg.Resources["res_identity"]; r.Kind != ResourceMat3 || len(r.Mat) != 9 {
		t.Errorf("Expected mat3 resource, got %+v", r)
	}
	if r := cfg.Resources["res_atlas"]; r.Kind != ResourceTexture2D || r.Src != "textures/atlas.png" {
		t.Errorf("Expected texture2d resource with src, got %+v", r)
	}
}

func TestParseScalarResourceTags(t *testing.T) {
	cfg, err := Parse([]byte("resources:\n  res_whole: 2.0\n  res_count: 7\n"))
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}
	if r := cfg.Resources["res_whole"]; r.Kind != ResourceFloat || r.Float != 2.0 {
		t.Errorf("Expected whole-valued float to stay float, got %+v", r)
	}
	if r := cfg.Resources["res_count"]; r.Kind != ResourceInt || r.Int != 7 {
		t.Errorf("Expected int resource 7, got %+v", r)
	}

	if _, err := Parse([]byte("resources:\n  bad: hello\n")); err == nil {
		t.Fatalf("Expected error for non-numeric scalar resource")
	}
}

func TestParseRejectsBadMatrix(t *testing.T) {
	_, err := Parse([]byte("resources:\n  bad: [1, 2, 3]\n"))
	if err == nil {
		t.Fatalf("Expected error for 3-element matrix")
	}
}

func TestParseRejectsUnknownResourceType(t *testing.T) {
	_, err := Parse([]byte("resources:\n  bad:\n    type: texture_cube\n"))
	if err == nil {
		t.Fatalf("Expected error for unknown resource type")
	}
}
