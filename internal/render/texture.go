package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	xdraw "golang.org/x/image/draw"
)

// TextureAndView pairs a GPU texture with its default view.
type TextureAndView struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Width   uint32
	Height  uint32
	Format  wgpu.TextureFormat
}

func (t *TextureAndView) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// LoadTexture fetches image bytes from the resource provider, decodes
// them, and uploads an RGBA texture.
func (r *Renderer) LoadTexture(path string) (*TextureAndView, error) {
	data, err := r.Provider.GetBytes(path)
	if err != nil {
		return nil, fmt.Errorf("could not load texture '%s': %w", path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode texture '%s': %w", path, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	xdraw.Copy(rgba, image.Point{}, img, bounds, xdraw.Src, nil)

	return r.CreateTextureFromRGBA(path, rgba)
}

// CreateTextureFromRGBA uploads pre-decoded pixels as a sampled
// texture.
func (r *Renderer) CreateTextureFromRGBA(label string, rgba *image.RGBA) (*TextureAndView, error) {
	width := uint32(rgba.Bounds().Dx())
	height := uint32(rgba.Bounds().Dy())

	size := wgpu.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}
	texture, err := r.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create texture '%s': %w", label, err)
	}

	err = r.Queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Aspect:   wgpu.TextureAspectAll,
			Texture:  texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		},
		rgba.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  4 * width,
			RowsPerImage: height,
		},
		&size,
	)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("could not upload texture '%s': %w", label, err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("could not create texture view '%s': %w", label, err)
	}

	return &TextureAndView{
		Texture: texture,
		View:    view,
		Width:   width,
		Height:  height,
		Format:  wgpu.TextureFormatRGBA8Unorm,
	}, nil
}

// CreateDepthTexture allocates a depth attachment matching the render
// target size.
func (r *Renderer) CreateDepthTexture(width, height uint32) (*TextureAndView, error) {
	size := wgpu.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}
	texture, err := r.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create depth texture: %w", err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("could not create depth view: %w", err)
	}

	return &TextureAndView{
		Texture: texture,
		View:    view,
		Width:   width,
		Height:  height,
		Format:  DepthFormat,
	}, nil
}

// CreateDefaultSampler creates the sampler injected as "@sampler".
func (r *Renderer) CreateDefaultSampler() (*wgpu.Sampler, error) {
	sampler, err := r.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "default sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create sampler: %w", err)
	}
	return sampler, nil
}
