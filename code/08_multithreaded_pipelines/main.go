package main

import (
	"flag"
	"fmt"
	"log"
	"time"
	"unsafe"

	gu "github.com/docker/go-units"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/samplebase"
	"github.com/ironsmile/vulkan-cookbook-go/shaders"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

var cfg = samplebase.DefaultConfig("Vulkan Cookbook: Multithreaded pipeline creation")

var cacheFile string

func init() {
	cfg.RegisterFlags(flag.CommandLine)
	flag.StringVar(&cacheFile, "cache", "pipeline.cache",
		"File the merged pipeline cache is saved to and loaded from")
}

func main() {
	flag.Parse()
	defer closer.Close()

	if err := samplebase.New(cfg).Run(&pipelinesSample{}); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// triangleParams is pushed to the vertex shader.
type triangleParams struct {
	Angle float32
	Scale float32
}

type variant struct {
	name  string
	apply func(*recipes.GraphicsPipelineConfig)
}

// The triangle in the shader is wound clockwise on screen.
var variants = []variant{
	{"no culling", func(c *recipes.GraphicsPipelineConfig) {
		c.CullMode = vk.CullModeFlags(vk.CullModeNone)
	}},
	{"back face culling", func(c *recipes.GraphicsPipelineConfig) {
		c.FrontFace = vk.FrontFaceClockwise
	}},
	{"alpha blending", func(c *recipes.GraphicsPipelineConfig) {
		c.CullMode = vk.CullModeFlags(vk.CullModeNone)
		c.Blend = true
	}},
	{"triangle strip", func(c *recipes.GraphicsPipelineConfig) {
		c.CullMode = vk.CullModeFlags(vk.CullModeNone)
		c.Topology = vk.PrimitiveTopologyTriangleStrip
	}},
}

// pipelinesSample builds a few pipeline variants on separate goroutines and
// draws one in each quarter of the window.
type pipelinesSample struct {
	samplebase.BaseSample

	layout    vk.PipelineLayout
	pipelines []vk.Pipeline
	params    triangleParams
}

func (s *pipelinesSample) Init(ctx *samplebase.Context) error {
	device := ctx.Device.Handle

	layout, err := recipes.CreatePipelineLayout(device, nil, []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     0,
		Size:       uint32(unsafe.Sizeof(triangleParams{})),
	}})
	if err != nil {
		return err
	}
	s.layout = samplebase.Own(ctx, vkhandle.PipelineLayout(device, layout))

	vert, err := ctx.LoadShader(shaders.SPIRV(shaders.TriangleVert))
	if err != nil {
		return err
	}
	frag, err := ctx.LoadShader(shaders.SPIRV(shaders.TriangleFrag))
	if err != nil {
		return err
	}

	configs := make([]recipes.GraphicsPipelineConfig, len(variants))
	for i, v := range variants {
		configs[i] = recipes.NewGraphicsPipelineConfig(
			s.layout,
			ctx.RenderPass,
			recipes.ShaderStage(vk.ShaderStageVertexBit, vert),
			recipes.ShaderStage(vk.ShaderStageFragmentBit, frag),
		)
		v.apply(&configs[i])
	}

	initialData, err := loadCache(ctx)
	if err != nil {
		return err
	}

	rawCache, err := recipes.CreatePipelineCache(device, initialData)
	if err != nil {
		return err
	}
	cache := vkhandle.PipelineCache(device, rawCache)
	defer cache.Destroy()

	start := time.Now()
	pipelines, err := recipes.CreatePipelinesConcurrently(device, cache.Get(), configs)
	if err != nil {
		return err
	}
	for _, pipeline := range pipelines {
		samplebase.Own(ctx, vkhandle.Pipeline(device, pipeline))
	}
	s.pipelines = pipelines
	log.Printf("Created %d pipelines concurrently in %s", len(pipelines), time.Since(start))

	if err := recipes.SavePipelineCache(device, cache.Get(), cacheFile); err != nil {
		return err
	}

	return recreateFromFile(ctx, configs)
}

func loadCache(ctx *samplebase.Context) ([]byte, error) {
	data, err := recipes.LoadPipelineCacheFile(cacheFile)
	if err != nil || data == nil {
		return nil, err
	}

	header, err := recipes.ParsePipelineCacheHeader(data)
	if err != nil {
		log.Printf("Ignoring %s: %s", cacheFile, err)
		return nil, nil
	}
	if !header.Matches(recipes.DeviceProperties(ctx.Physical)) {
		log.Printf("Ignoring %s: it was made by another device or driver", cacheFile)
		return nil, nil
	}

	log.Printf("Loaded %s of pipeline cache from %s", gu.BytesSize(float64(len(data))), cacheFile)
	return data, nil
}

// recreateFromFile reloads the cache which was just saved and creates the
// same pipelines again from it, this time on a single goroutine.
func recreateFromFile(ctx *samplebase.Context, configs []recipes.GraphicsPipelineConfig) error {
	device := ctx.Device.Handle

	data, err := loadCache(ctx)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("pipeline cache %s was not saved", cacheFile)
	}

	rawCache, err := recipes.CreatePipelineCache(device, data)
	if err != nil {
		return err
	}
	cache := vkhandle.PipelineCache(device, rawCache)
	defer cache.Destroy()

	start := time.Now()
	pipelines, err := recipes.CreateGraphicsPipelines(device, cache.Get(), configs...)
	if err != nil {
		return err
	}
	log.Printf("Created %d pipelines from the saved cache in %s", len(pipelines), time.Since(start))

	var cleanup vkhandle.Stack
	for _, pipeline := range pipelines {
		vkhandle.Own(&cleanup, vkhandle.Pipeline(device, pipeline))
	}
	cleanup.Release()

	return nil
}

func (s *pipelinesSample) Update(ctx *samplebase.Context) {
	s.params.Angle = ctx.Timer.Seconds()
	s.params.Scale = 1.5
}

func (s *pipelinesSample) Record(ctx *samplebase.Context, frame frames.Frame) error {
	cb := frame.CommandBuffer

	recipes.BeginRenderPass(
		cb,
		frame.RenderPass,
		frame.Framebuffer,
		frame.Extent,
		recipes.ClearValues([4]float32{0.05, 0.05, 0.05, 1}, false),
	)

	halfWidth := frame.Extent.Width / 2
	halfHeight := frame.Extent.Height / 2

	for i, pipeline := range s.pipelines {
		x := int32(uint32(i%2) * halfWidth)
		y := int32(uint32(i/2) * halfHeight)

		vk.CmdSetViewport(cb, 0, 1, []vk.Viewport{{
			X:        float32(x),
			Y:        float32(y),
			Width:    float32(halfWidth),
			Height:   float32(halfHeight),
			MinDepth: 0,
			MaxDepth: 1,
		}})
		vk.CmdSetScissor(cb, 0, 1, []vk.Rect2D{{
			Offset: vk.Offset2D{X: x, Y: y},
			Extent: vk.Extent2D{Width: halfWidth, Height: halfHeight},
		}})

		vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, pipeline)
		vk.CmdPushConstants(
			cb,
			s.layout,
			vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			0,
			uint32(unsafe.Sizeof(s.params)),
			unsafe.Pointer(&s.params),
		)
		vk.CmdDraw(cb, 3, 1, 0, 0)
	}

	vk.CmdEndRenderPass(cb)
	return nil
}
