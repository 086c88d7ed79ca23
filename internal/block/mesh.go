package block

import (
	"fmt"

	"voxelgfx/pkg/blockmodel"
)

// Vertex is one corner of a baked quad, in model space (one block unit
// spans [0,1] on each axis).
type Vertex struct {
	Position [3]float32
	UV       [2]float32
	Normal   [3]float32
}

// Face is a single quad. Quads are wound counter-clockwise when viewed
// from outside the block.
type Face struct {
	Vertices  [4]Vertex
	Texture   string
	TintIndex int32
}

// ModelMesh is a block model baked to quads. A mesh is either a Cube,
// whose faces are grouped by the neighboring direction that can cull
// them, or Complex, whose faces are always emitted.
type ModelMesh struct {
	IsCube    bool
	CubeFaces [DirectionCount][]Face
	Complex   []Face

	occludes [DirectionCount]bool
}

// Occludes reports whether this mesh fully covers the face a neighbor
// presents toward it from direction d.
func (m *ModelMesh) Occludes(d Direction) bool {
	return m.occludes[d]
}

// FaceCount returns the total number of quads in the mesh.
func (m *ModelMesh) FaceCount() int {
	if !m.IsCube {
		return len(m.Complex)
	}
	n := 0
	for _, faces := range m.CubeFaces {
		n += len(faces)
	}
	return n
}

// AllFaces flattens the mesh into a single face list, ignoring cull
// grouping. Used when combining meshes into an uncullable whole.
func (m *ModelMesh) AllFaces() []Face {
	if !m.IsCube {
		return m.Complex
	}
	var out []Face
	for _, faces := range m.CubeFaces {
		out = append(out, faces...)
	}
	return out
}

// Mesh bakes one or more block models into a ModelMesh. A single
// element spanning the full block volume bakes to a Cube whose faces
// occlude neighbors; everything else bakes to a Complex mesh.
func Mesh(models ...*blockmodel.Model) (*ModelMesh, error) {
	var elements []blockmodel.Element
	for _, model := range models {
		elements = append(elements, model.Elements...)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("model has no elements")
	}

	mesh := &ModelMesh{IsCube: len(elements) == 1 && isFullCube(&elements[0])}
	if mesh.IsCube {
		for i := range mesh.occludes {
			mesh.occludes[i] = true
		}
	}

	for i := range elements {
		el := &elements[i]
		for faceName, face := range el.Faces {
			dir, ok := ParseDirection(faceName)
			if !ok {
				return nil, fmt.Errorf("unknown face direction '%s'", faceName)
			}
			quad := bakeFace(el, dir, face)
			if !mesh.IsCube {
				mesh.Complex = append(mesh.Complex, quad)
				continue
			}
			cull := dir
			if face.CullFace != "" {
				if c, ok := ParseDirection(face.CullFace); ok {
					cull = c
				}
			}
			mesh.CubeFaces[cull] = append(mesh.CubeFaces[cull], quad)
		}
	}
	return mesh, nil
}

func isFullCube(el *blockmodel.Element) bool {
	return el.From == [3]float32{0, 0, 0} && el.To == [3]float32{16, 16, 16}
}

func bakeFace(el *blockmodel.Element, dir Direction, face blockmodel.Face) Face {
	x0, y0, z0 := el.From[0]/16, el.From[1]/16, el.From[2]/16
	x1, y1, z1 := el.To[0]/16, el.To[1]/16, el.To[2]/16

	var corners [4][3]float32
	switch dir {
	case Up:
		corners = [4][3]float32{{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}}
	case Down:
		corners = [4][3]float32{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}
	case North:
		corners = [4][3]float32{{x1, y0, z0}, {x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}}
	case South:
		corners = [4][3]float32{{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1}}
	case East:
		corners = [4][3]float32{{x1, y0, z1}, {x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}}
	case West:
		corners = [4][3]float32{{x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0}}
	}

	uv := face.UV
	if uv == [4]float32{} {
		uv = [4]float32{0, 0, 16, 16}
	}
	u0, v0, u1, v1 := uv[0]/16, uv[1]/16, uv[2]/16, uv[3]/16
	uvs := [4][2]float32{{u0, v1}, {u1, v1}, {u1, v0}, {u0, v0}}

	normal := dir.Normal()
	out := Face{Texture: face.Texture}
	if face.TintIndex != nil {
		out.TintIndex = int32(*face.TintIndex)
	} else {
		out.TintIndex = -1
	}
	for i := 0; i < 4; i++ {
		out.Vertices[i] = Vertex{Position: corners[i], UV: uvs[i], Normal: normal}
	}
	return out
}
