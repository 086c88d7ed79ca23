package blockmodel

import "encoding/json"

type Model struct {
	Parent           string             `json:"parent"`
	AmbientOcclusion *bool              `json:"ambientocclusion"`
	Textures         map[string]string  `json:"textures"`
	Elements         []Element          `json:"elements"`
	Display          map[string]Display `json:"display"`
}

type Element struct {
	From     [3]float32      `json:"from"`
	To       [3]float32      `json:"to"`
	Rotation *Rotation       `json:"rotation"`
	Shade    *bool           `json:"shade"`
	Faces    map[string]Face `json:"faces"`
}

type Rotation struct {
	Origin  [3]float32 `json:"origin"`
	Angle   float32    `json:"angle"`
	Axis    string     `json:"axis"`
	Rescale bool       `json:"rescale"`
}

type Face struct {
	UV        [4]float32 `json:"uv"`
	Texture   string     `json:"texture"`
	CullFace  string     `json:"cullface"`
	Rotation  int        `json:"rotation"`
	TintIndex *int       `json:"tintindex"`
}

type Display struct {
	Rotation    [3]float32 `json:"rotation"`
	Translation [3]float32 `json:"translation"`
	Scale       [3]float32 `json:"scale"`
}

// BlockState is the parsed blockstate definition for one block. Exactly
// one of Variants or Multipart is populated.
type BlockState struct {
	// Variants maps a state-key string (e.g. "facing=north") to its
	// candidate models.
	Variants map[string]VariantList `json:"variants"`

	// Multipart lists conditionally applied sub-models.
	Multipart []MultipartCase `json:"multipart"`
}

// VariantList handles the fact that the "variants" values can contain
// either a single object or an array of weighted objects.
type VariantList []Variant

func (v *VariantList) UnmarshalJSON(data []byte) error {
	// First, try to unmarshal as an array
	var variants []Variant
	if err := json.Unmarshal(data, &variants); err == nil {
		*v = variants
		return nil
	}

	// If that fails, try to unmarshal as a single object
	var single Variant
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}

	*v = []Variant{single}
	return nil
}

type Variant struct {
	Model  string `json:"model"`
	Weight int    `json:"weight"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	UVLock bool   `json:"uvlock"`
}

// MultipartCase applies its models when every property in When matches
// the queried state exactly. An empty When always applies.
type MultipartCase struct {
	When  map[string]string `json:"when"`
	Apply VariantList       `json:"apply"`
}

// Applies reports whether the case matches the given state properties.
// Predicates are exact literal matches only.
func (c *MultipartCase) Applies(props map[string]string) bool {
	for key, want := range c.When {
		if props[key] != want {
			return false
		}
	}
	return true
}
