// Package resource abstracts access to pack assets: model and
// blockstate definitions, textures, and shader source.
package resource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a provider has no resource at the
// requested path. Callers treat it as fatal for that resource; there is
// no retry or fallback at this layer.
var ErrNotFound = errors.New("resource not found")

// Provider supplies raw asset bytes by pack-relative path.
type Provider interface {
	// GetBytes returns the raw contents of the resource.
	GetBytes(path string) ([]byte, error)

	// GetString returns the resource decoded as UTF-8 text.
	GetString(path string) (string, error)
}

// DirProvider serves resources from a directory tree on disk.
type DirProvider struct {
	Root string
}

func NewDirProvider(root string) *DirProvider {
	return &DirProvider{Root: root}
}

func (p *DirProvider) GetBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(p.Root, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read resource %s: %w", path, err)
	}
	return data, nil
}

func (p *DirProvider) GetString(path string) (string, error) {
	data, err := p.GetBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MapProvider serves resources from memory. Used in tests and by hosts
// that stream assets from their own pack format.
type MapProvider map[string][]byte

func (p MapProvider) GetBytes(path string) ([]byte, error) {
	data, ok := p[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return data, nil
}

func (p MapProvider) GetString(path string) (string, error) {
	data, err := p.GetBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
