// Package shaderpack parses shader-pack configuration documents.
//
// A pack declares named resources and an ordered list of render
// pipelines. Pipeline declaration order is also pass execution order,
// so decoding preserves it.
package shaderpack

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Resources map[string]Resource `yaml:"resources"`
	Pipelines PipelineList        `yaml:"pipelines"`
}

// Parse decodes a shader-pack configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse shader pack config: %w", err)
	}
	return &cfg, nil
}

// NamedPipeline pairs a pipeline with its declared name.
type NamedPipeline struct {
	Name     string
	Pipeline Pipeline
}

// PipelineList preserves the document order of the pipelines mapping,
// which plain map decoding would lose.
type PipelineList []NamedPipeline

func (l *PipelineList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("pipelines must be a mapping, got %s", nodeKind(node))
	}
	out := make(PipelineList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var entry NamedPipeline
		if err := node.Content[i].Decode(&entry.Name); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&entry.Pipeline); err != nil {
			return fmt.Errorf("pipeline '%s': %w", entry.Name, err)
		}
		out = append(out, entry)
	}
	*l = out
	return nil
}

// Pipeline is one render pass declaration.
type Pipeline struct {
	// Geometry names the vertex stream kind, e.g. "@geo_terrain".
	Geometry string `yaml:"geometry"`
	// Output lists color attachment resource ids.
	Output []string `yaml:"output"`
	// Depth optionally names the depth attachment resource.
	Depth string `yaml:"depth"`
	// Clear requests a color clear at the start of the pass.
	Clear bool `yaml:"clear"`
	// Blending selects one of the named blend presets.
	Blending string `yaml:"blending"`
	// BindGroups maps bind group slots to their contents.
	BindGroups map[uint32]BindGroupDef `yaml:"bind_groups"`
	// PushConstants maps byte offsets to semantic names.
	PushConstants map[uint32]string `yaml:"push_constants"`
}

// BindGroupDef is either a reference to a named bind group or an inline
// list of binding → resource-id entries.
type BindGroupDef struct {
	Resource string
	Entries  map[uint32]string
}

func (d *BindGroupDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&d.Resource)
	case yaml.MappingNode:
		return node.Decode(&d.Entries)
	default:
		return fmt.Errorf("bind group must be a name or a binding map, got %s", nodeKind(node))
	}
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
