package main

import (
	"flag"
	"fmt"
	"log"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"
	"github.com/xlab/tablewriter"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/samplebase"
	"github.com/ironsmile/vulkan-cookbook-go/shaders"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

var cfg = samplebase.DefaultConfig("Vulkan Cookbook: Frames in flight")

func init() {
	cfg.RegisterFlags(flag.CommandLine)
}

func main() {
	flag.Parse()
	defer closer.Close()

	if err := samplebase.New(cfg).Run(&triangleSample{}); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// pushConstants must match the push constant block of triangle.vert.
type pushConstants struct {
	Angle float32
	Scale float32
}

// triangleSample draws a spinning triangle. Every frame goes through one of
// the rotator's slots, which are reported when the window is closed.
type triangleSample struct {
	samplebase.BaseSample

	layout   vk.PipelineLayout
	pipeline vk.Pipeline
	push     pushConstants
}

func (s *triangleSample) Init(ctx *samplebase.Context) error {
	device := ctx.Device.Handle

	vert, err := ctx.LoadShader(shaders.SPIRV(shaders.TriangleVert))
	if err != nil {
		return err
	}
	frag, err := ctx.LoadShader(shaders.SPIRV(shaders.TriangleFrag))
	if err != nil {
		return err
	}

	layout, err := recipes.CreatePipelineLayout(device, nil, []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Size:       uint32(unsafe.Sizeof(pushConstants{})),
	}})
	if err != nil {
		return err
	}
	s.layout = samplebase.Own(ctx, vkhandle.PipelineLayout(device, layout))

	pipelineConfig := recipes.NewGraphicsPipelineConfig(
		s.layout,
		ctx.RenderPass,
		recipes.ShaderStage(vk.ShaderStageVertexBit, vert),
		recipes.ShaderStage(vk.ShaderStageFragmentBit, frag),
	)
	pipelineConfig.CullMode = vk.CullModeFlags(vk.CullModeNone)

	pipelines, err := recipes.CreateGraphicsPipelines(
		device,
		vk.PipelineCache(vk.NullHandle),
		pipelineConfig,
	)
	if err != nil {
		return err
	}
	s.pipeline = samplebase.Own(ctx, vkhandle.Pipeline(device, pipelines[0]))

	log.Printf("Rendering with %d frames in flight", ctx.Rotator.Len())
	return nil
}

func (s *triangleSample) Update(ctx *samplebase.Context) {
	s.push.Angle = ctx.Timer.Seconds()
	s.push.Scale = 1
}

func (s *triangleSample) Record(ctx *samplebase.Context, frame frames.Frame) error {
	cb := frame.CommandBuffer

	recipes.BeginRenderPass(
		cb,
		frame.RenderPass,
		frame.Framebuffer,
		frame.Extent,
		recipes.ClearValues([4]float32{0, 0, 0, 1}, false),
	)

	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, s.pipeline)
	recipes.SetViewportAndScissor(cb, frame.Extent)
	vk.CmdPushConstants(
		cb,
		s.layout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		0,
		uint32(unsafe.Sizeof(s.push)),
		unsafe.Pointer(&s.push),
	)
	vk.CmdDraw(cb, 3, 1, 0, 0)

	vk.CmdEndRenderPass(cb)
	return nil
}

func (s *triangleSample) Destroy(ctx *samplebase.Context) {
	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle(fmt.Sprintf("FRAME SLOTS (%d frames)", ctx.Rotator.Frame()))
	table.AddRow("Slot", "Frames", "Waited for fence")

	for i, slot := range ctx.Rotator.Slots() {
		table.AddRow(i, slot.Submissions, slot.Waited.String())
	}

	fmt.Println(table.Render())
}
