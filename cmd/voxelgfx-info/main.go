// voxelgfx-info inspects a shader pack and block set: it parses the
// pack configuration, bakes the requested blocks, meshes a demo chunk,
// and optionally compiles the full render graph on a real GPU device
// and draws one offscreen frame.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"voxelgfx/internal/block"
	"voxelgfx/internal/config"
	"voxelgfx/internal/mesh"
	"voxelgfx/internal/profiling"
	"voxelgfx/internal/render"
	"voxelgfx/internal/resource"
	"voxelgfx/internal/shaderpack"
	"voxelgfx/internal/world"
	"voxelgfx/pkg/blockmodel"
)

func main() {
	assets := flag.String("assets", "assets", "asset root directory")
	pack := flag.String("pack", "pack.yml", "shader pack config, relative to the asset root")
	blocks := flag.String("blocks", "", "comma-separated block names to bake")
	atlas := flag.String("atlas", "textures/atlas.png", "block atlas texture, relative to the asset root")
	settingsPath := flag.String("settings", "", "optional settings YAML")
	useGPU := flag.Bool("gpu", false, "compile the render graph on a GPU device and draw one frame")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	provider := &resource.DirProvider{Root: *assets}

	settings := config.Default()
	if *settingsPath != "" {
		var err error
		settings, err = config.Load(*settingsPath)
		if err != nil {
			fatal(logger, "could not load settings", err)
		}
	}

	cfg := loadPack(logger, provider, *pack)

	var terrain []render.TerrainVertex
	if *blocks != "" {
		terrain = bakeDemoChunk(logger, provider, strings.Split(*blocks, ","))
	}

	if *useGPU {
		runGPU(logger, provider, cfg, settings, *atlas, terrain)
	}
	closer.Close()
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	closer.Fatalln(msg, err)
}

func loadPack(logger *slog.Logger, provider resource.Provider, path string) *shaderpack.Config {
	data, err := provider.GetBytes(path)
	if err != nil {
		fatal(logger, "could not read shader pack", err)
	}
	cfg, err := shaderpack.Parse(data)
	if err != nil {
		fatal(logger, "could not parse shader pack", err)
	}

	fmt.Printf("shader pack: %d pipelines, %d resources\n", len(cfg.Pipelines), len(cfg.Resources))
	for i, entry := range cfg.Pipelines {
		p := entry.Pipeline
		fmt.Printf("  [%d] %-16s geometry=%-18s outputs=%d depth=%v blend=%s\n",
			i, entry.Name, p.Geometry, len(p.Output), p.Depth != "", p.Blending)
	}
	return cfg
}

// flatWorld is a one-layer floor of a single block state, enough to
// exercise baking and culling.
type flatWorld struct {
	key world.BlockstateKey
}

func (f flatWorld) GetState(x, y, z int32) world.ChunkBlockState {
	if y == 0 && x >= 0 && x < world.ChunkWidth && z >= 0 && z < world.ChunkWidth {
		return world.State(f.key)
	}
	return world.Air
}

func (f flatWorld) IsSectionEmpty(index int) bool {
	return index != 0
}

func bakeDemoChunk(logger *slog.Logger, provider resource.Provider, names []string) []render.TerrainVertex {
	mgr := block.NewManager(blockmodel.NewLoader(provider))
	if err := mgr.BakeBlocks(names); err != nil {
		fatal(logger, "could not bake blocks", err)
	}
	fmt.Printf("baked %d blocks\n", len(names))

	key, _, err := mgr.Resolve(names[0], nil, 0)
	if err != nil {
		fatal(logger, "could not resolve block state", err)
	}

	mapper := func(v block.Vertex, x, y, z float32, k world.BlockstateKey) render.TerrainVertex {
		return render.TerrainVertex{
			Position: [3]float32{v.Position[0] + x, v.Position[1] + y, v.Position[2] + z},
			UV:       v.UV,
			Normal:   v.Normal,
			BlockKey: render.PackBlockKey(k),
		}
	}
	vertices := mesh.Bake(mgr, world.NewChunk(0, 0), mapper, nil, flatWorld{key: key})
	fmt.Printf("demo chunk: %d vertices (%d quads)\n", len(vertices), len(vertices)/4)
	return vertices
}

func runGPU(logger *slog.Logger, provider resource.Provider, cfg *shaderpack.Config, settings config.Settings, atlasPath string, terrain []render.TerrainVertex) {
	instance := wgpu.CreateInstance(nil)
	closer.Bind(instance.Release)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{})
	if err != nil {
		fatal(logger, "could not request adapter", err)
	}
	closer.Bind(adapter.Release)

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "voxelgfx"})
	if err != nil {
		fatal(logger, "could not request device", err)
	}
	closer.Bind(device.Release)
	queue := device.GetQueue()

	renderer := render.NewRenderer(device, queue, provider, logger)
	renderer.Profiler = profiling.NewFrameProfiler()

	width, height := settings.Width, settings.Height
	scene, err := render.NewScene(renderer, width, height)
	if err != nil {
		fatal(logger, "could not create scene", err)
	}
	closer.Bind(scene.Release)

	atlasTex, err := renderer.LoadTexture(atlasPath)
	if err != nil {
		fatal(logger, "could not load block atlas", err)
	}
	closer.Bind(atlasTex.Release)

	graph := render.NewRenderGraph(renderer)
	closer.Bind(graph.Release)
	err = graph.Compile(cfg, render.CompileOptions{
		Atlas:        atlasTex,
		SceneLayouts: scene.Layouts(),
	})
	if err != nil {
		fatal(logger, "could not compile render graph", err)
	}
	fmt.Printf("compiled pipelines: %v\n", graph.Snapshot().PipelineNames())

	if len(terrain) > 0 {
		data := render.PackTerrainVertices(terrain)
		indices := render.QuadIndices(len(terrain) / 4)
		if err := scene.UploadTerrain(data, indices); err != nil {
			fatal(logger, "could not upload terrain", err)
		}
		scene.SetSection(&render.ChunkSection{
			Pos: world.SectionPos{X: 0, Y: 0, Z: 0},
			Layers: [world.RenderLayerCount]*world.LayerRange{
				world.LayerSolid: {
					IndexStart:  0,
					IndexEnd:    uint32(len(indices)),
					VertexStart: 0,
					VertexEnd:   uint32(len(terrain)),
				},
			},
		})
	}

	target, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "offscreen target",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        render.ColorFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		fatal(logger, "could not create render target", err)
	}
	closer.Bind(target.Release)
	targetView, err := target.CreateView(nil)
	if err != nil {
		fatal(logger, "could not create target view", err)
	}
	closer.Bind(targetView.Release)

	proj := mgl32.Perspective(
		mgl32.DegToRad(settings.FOVDegrees),
		float32(width)/float32(height),
		0.1, settings.FarPlane(),
	)
	view := mgl32.LookAtV(mgl32.Vec3{8, 24, 40}, mgl32.Vec3{8, 0, 8}, mgl32.Vec3{0, 1, 0})
	frustum := render.NewFrustum(proj.Mul4(view))

	err = renderer.Render(graph, scene, targetView, settings.ClearColor, nil, &frustum)
	if err != nil {
		fatal(logger, "could not render frame", err)
	}
	fmt.Printf("rendered one offscreen frame (%s)\n", renderer.Profiler.TopN(4))
}
