// Package config holds host-side renderer settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings drive the host: target size, sky color, and how far terrain
// is drawn. Loaded once at startup and passed down explicitly.
type Settings struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
	// RenderDistance is in chunks.
	RenderDistance int      `yaml:"render_distance"`
	ClearColor     [3]uint8 `yaml:"clear_color"`
	FOVDegrees     float32  `yaml:"fov_degrees"`
}

// Default returns the settings used when no file is given.
func Default() Settings {
	return Settings{
		Width:          1280,
		Height:         720,
		RenderDistance: 25,
		ClearColor:     [3]uint8{120, 167, 255},
		FOVDegrees:     70,
	}
}

// Load reads settings from a YAML file, filling omitted fields from the
// defaults and clamping out-of-range values.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("could not read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("could not parse settings: %w", err)
	}
	s.Clamp()
	return s, nil
}

// Clamp forces every field into its usable range.
func (s *Settings) Clamp() {
	if s.RenderDistance < 5 {
		s.RenderDistance = 5
	}
	if s.RenderDistance > 50 {
		s.RenderDistance = 50
	}
	if s.Width == 0 {
		s.Width = 1280
	}
	if s.Height == 0 {
		s.Height = 720
	}
	if s.FOVDegrees < 30 {
		s.FOVDegrees = 30
	}
	if s.FOVDegrees > 120 {
		s.FOVDegrees = 120
	}
}

// FarPlane returns the camera far plane implied by the render distance.
func (s *Settings) FarPlane() float32 {
	return float32(s.RenderDistance) * 16 * 2
}
