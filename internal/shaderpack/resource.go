package shaderpack

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ResourceKind tags the parsed form of a resource declaration.
type ResourceKind uint8

const (
	ResourceInt ResourceKind = iota
	ResourceFloat
	ResourceMat3
	ResourceMat4
	ResourceTexture2D
	ResourceTextureDepth
	ResourceBlob
	ResourceF32
	ResourceI32
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceInt:
		return "int"
	case ResourceFloat:
		return "float"
	case ResourceMat3:
		return "mat3"
	case ResourceMat4:
		return "mat4"
	case ResourceTexture2D:
		return "texture2d"
	case ResourceTextureDepth:
		return "texture_depth"
	case ResourceBlob:
		return "blob"
	case ResourceF32:
		return "f32"
	case ResourceI32:
		return "i32"
	}
	return "unknown"
}

// Resource is one declared resource. Scalars and matrices use the
// shorthand literal form; everything else uses the longhand mapping
// with an explicit type and optional source path.
type Resource struct {
	Kind  ResourceKind
	Int   int64
	Float float64
	Mat   []float64
	// Src is the resource-provider path for longhand resources that
	// load external bytes (textures, blobs).
	Src string
}

func (r *Resource) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		// Decoding a !!float node into int64 truncates without error, so
		// the int/float split has to come from the node tag.
		switch node.Tag {
		case "!!int":
			if err := node.Decode(&r.Int); err != nil {
				return err
			}
			r.Kind = ResourceInt
			return nil
		case "!!float":
			if err := node.Decode(&r.Float); err != nil {
				return err
			}
			r.Kind = ResourceFloat
			return nil
		}
		return fmt.Errorf("resource scalar must be int or float, got %s", node.Tag)

	case yaml.SequenceNode:
		var mat []float64
		if err := node.Decode(&mat); err != nil {
			return err
		}
		switch len(mat) {
		case 9:
			r.Kind = ResourceMat3
		case 16:
			r.Kind = ResourceMat4
		default:
			return fmt.Errorf("matrix resource must have 9 or 16 elements, got %d", len(mat))
		}
		r.Mat = mat
		return nil

	case yaml.MappingNode:
		var longhand struct {
			Type string `yaml:"type"`
			Src  string `yaml:"src"`
		}
		if err := node.Decode(&longhand); err != nil {
			return err
		}
		kind, ok := longhandKinds[longhand.Type]
		if !ok {
			return fmt.Errorf("unknown resource type '%s'", longhand.Type)
		}
		r.Kind = kind
		r.Src = longhand.Src
		return nil
	}
	return fmt.Errorf("resource must be a scalar, sequence, or mapping, got %s", nodeKind(node))
}

var longhandKinds = map[string]ResourceKind{
	"texture2d":     ResourceTexture2D,
	"texture_depth": ResourceTextureDepth,
	"blob":          ResourceBlob,
	"f32":           ResourceF32,
	"i32":           ResourceI32,
	"mat3":          ResourceMat3,
	"mat4":          ResourceMat4,
}
