package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/samplebase"
	"github.com/ironsmile/vulkan-cookbook-go/shaders"
	"github.com/ironsmile/vulkan-cookbook-go/unsafer"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

// workgroupSize must match local_size_x in particles.comp.
const workgroupSize = 256

var cfg = samplebase.DefaultConfig("Vulkan Cookbook: Compute particles")

var particleCount int

func init() {
	cfg.Compute = true
	cfg.RegisterFlags(flag.CommandLine)

	flag.IntVar(&particleCount, "particles", 16384, "Number of particles")
}

func main() {
	flag.Parse()
	defer closer.Close()

	if err := samplebase.New(cfg).Run(&particlesSample{}); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// particle matches the Particle struct of particles.comp, std430 layout.
type particle struct {
	Position [4]float32
	Velocity [4]float32
}

// step is pushed to the compute shader.
type step struct {
	DeltaTime float32
	Count     uint32
}

// particlesSample moves particles with a compute shader and draws the same
// storage buffer as a point list.
type particlesSample struct {
	samplebase.BaseSample

	particles *recipes.Buffer

	computeLayout   vk.PipelineLayout
	computePipeline vk.Pipeline
	descriptorSet   vk.DescriptorSet

	graphicsLayout   vk.PipelineLayout
	graphicsPipeline vk.Pipeline

	step step
}

func (s *particlesSample) Init(ctx *samplebase.Context) error {
	if particleCount < 1 {
		return fmt.Errorf("need at least one particle, got %d", particleCount)
	}

	graphicsFamily := ctx.Device.Families.Graphics.Get()
	flags := recipes.QueueFamilies(ctx.Physical)[graphicsFamily].QueueFlags
	if flags&vk.QueueFlags(vk.QueueComputeBit) == 0 {
		return fmt.Errorf("graphics queue family %d cannot run compute shaders", graphicsFamily)
	}

	if err := s.createParticles(ctx); err != nil {
		return err
	}
	if err := s.createComputePipeline(ctx); err != nil {
		return err
	}
	return s.createGraphicsPipeline(ctx)
}

func newParticles(count int, rng *rand.Rand) []particle {
	particles := make([]particle, count)
	for i := range particles {
		angle := rng.Float64() * 2 * math.Pi
		radius := 0.25 * math.Sqrt(rng.Float64())
		x, y := radius*math.Cos(angle), radius*math.Sin(angle)

		particles[i] = particle{
			Position: [4]float32{float32(x), float32(y), 0, 1},
			// Perpendicular to the radius so they start orbiting.
			Velocity: [4]float32{float32(-y) * 2, float32(x) * 2, 0, 0},
		}
	}
	return particles
}

func (s *particlesSample) createParticles(ctx *samplebase.Context) error {
	particles := newParticles(particleCount, rand.New(rand.NewSource(1)))

	buffer, err := recipes.CreateDeviceLocalBuffer(
		ctx.Device,
		ctx.CommandPool,
		unsafer.SliceToBytes(particles),
		vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit|vk.BufferUsageVertexBufferBit),
	)
	if err != nil {
		return err
	}
	s.particles = buffer
	ctx.Defer(buffer.Destroy)

	return nil
}

func (s *particlesSample) createComputePipeline(ctx *samplebase.Context) error {
	device := ctx.Device.Handle

	bindings := []vk.DescriptorSetLayoutBinding{
		recipes.LayoutBinding(0, vk.DescriptorTypeStorageBuffer, vk.ShaderStageComputeBit),
	}
	setLayout, err := recipes.CreateDescriptorSetLayout(device, bindings...)
	if err != nil {
		return err
	}
	setLayout = samplebase.Own(ctx, vkhandle.DescriptorSetLayout(device, setLayout))

	pool, err := recipes.CreateDescriptorPool(device, 1, recipes.PoolSizes(bindings, 1))
	if err != nil {
		return err
	}
	pool = samplebase.Own(ctx, vkhandle.DescriptorPool(device, pool))

	sets, err := recipes.AllocateDescriptorSets(device, pool, setLayout, 1)
	if err != nil {
		return err
	}
	s.descriptorSet = sets[0]
	recipes.UpdateBufferDescriptor(
		device,
		s.descriptorSet,
		0,
		vk.DescriptorTypeStorageBuffer,
		s.particles.Handle,
	)

	layout, err := recipes.CreatePipelineLayout(
		device,
		[]vk.DescriptorSetLayout{setLayout},
		[]vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
			Size:       uint32(unsafe.Sizeof(step{})),
		}},
	)
	if err != nil {
		return err
	}
	s.computeLayout = samplebase.Own(ctx, vkhandle.PipelineLayout(device, layout))

	comp, err := ctx.LoadShader(shaders.SPIRV(shaders.ParticlesComp))
	if err != nil {
		return err
	}

	pipeline, err := recipes.CreateComputePipeline(
		device,
		vk.PipelineCache(vk.NullHandle),
		s.computeLayout,
		comp,
	)
	if err != nil {
		return err
	}
	s.computePipeline = samplebase.Own(ctx, vkhandle.Pipeline(device, pipeline))

	return nil
}

func (s *particlesSample) createGraphicsPipeline(ctx *samplebase.Context) error {
	device := ctx.Device.Handle

	vert, err := ctx.LoadShader(shaders.SPIRV(shaders.ParticlesVert))
	if err != nil {
		return err
	}
	frag, err := ctx.LoadShader(shaders.SPIRV(shaders.ParticlesFrag))
	if err != nil {
		return err
	}

	layout, err := recipes.CreatePipelineLayout(device, nil, nil)
	if err != nil {
		return err
	}
	s.graphicsLayout = samplebase.Own(ctx, vkhandle.PipelineLayout(device, layout))

	pipelineConfig := recipes.NewGraphicsPipelineConfig(
		s.graphicsLayout,
		ctx.RenderPass,
		recipes.ShaderStage(vk.ShaderStageVertexBit, vert),
		recipes.ShaderStage(vk.ShaderStageFragmentBit, frag),
	)
	pipelineConfig.Topology = vk.PrimitiveTopologyPointList
	pipelineConfig.CullMode = vk.CullModeFlags(vk.CullModeNone)
	pipelineConfig.Blend = true
	pipelineConfig.Bindings = []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(particle{})),
		InputRate: vk.VertexInputRateVertex,
	}}
	pipelineConfig.Attributes = []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32a32Sfloat,
			Offset:   uint32(unsafe.Offsetof(particle{}.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32a32Sfloat,
			Offset:   uint32(unsafe.Offsetof(particle{}.Velocity)),
		},
	}

	pipelines, err := recipes.CreateGraphicsPipelines(
		device,
		vk.PipelineCache(vk.NullHandle),
		pipelineConfig,
	)
	if err != nil {
		return err
	}
	s.graphicsPipeline = samplebase.Own(ctx, vkhandle.Pipeline(device, pipelines[0]))

	return nil
}

func (s *particlesSample) Update(ctx *samplebase.Context) {
	// Long frames, like the first one or after a resize, would throw the
	// particles off screen.
	s.step.DeltaTime = float32(math.Min(ctx.Timer.Delta.Seconds(), 1.0/30))
	s.step.Count = uint32(particleCount)
}

func (s *particlesSample) bufferBarrier(
	cb vk.CommandBuffer,
	srcAccess, dstAccess vk.AccessFlagBits,
	srcStage, dstStage vk.PipelineStageFlagBits,
) {
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(srcAccess),
		DstAccessMask:       vk.AccessFlags(dstAccess),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              s.particles.Handle,
		Offset:              0,
		Size:                vk.DeviceSize(vk.WholeSize),
	}

	vk.CmdPipelineBarrier(
		cb,
		vk.PipelineStageFlags(srcStage),
		vk.PipelineStageFlags(dstStage),
		0,
		0, nil,
		1, []vk.BufferMemoryBarrier{barrier},
		0, nil,
	)
}

func (s *particlesSample) Record(ctx *samplebase.Context, frame frames.Frame) error {
	cb := frame.CommandBuffer

	// The previous frame may still be drawing from the buffer.
	s.bufferBarrier(
		cb,
		vk.AccessVertexAttributeReadBit, vk.AccessShaderWriteBit,
		vk.PipelineStageVertexInputBit, vk.PipelineStageComputeShaderBit,
	)

	vk.CmdBindPipeline(cb, vk.PipelineBindPointCompute, s.computePipeline)
	vk.CmdBindDescriptorSets(
		cb,
		vk.PipelineBindPointCompute,
		s.computeLayout,
		0,
		1,
		[]vk.DescriptorSet{s.descriptorSet},
		0,
		nil,
	)
	vk.CmdPushConstants(
		cb,
		s.computeLayout,
		vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		0,
		uint32(unsafe.Sizeof(s.step)),
		unsafe.Pointer(&s.step),
	)
	groups := (uint32(particleCount) + workgroupSize - 1) / workgroupSize
	vk.CmdDispatch(cb, groups, 1, 1)

	s.bufferBarrier(
		cb,
		vk.AccessShaderWriteBit, vk.AccessVertexAttributeReadBit,
		vk.PipelineStageComputeShaderBit, vk.PipelineStageVertexInputBit,
	)

	recipes.BeginRenderPass(
		cb,
		frame.RenderPass,
		frame.Framebuffer,
		frame.Extent,
		recipes.ClearValues([4]float32{0, 0, 0.02, 1}, false),
	)

	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, s.graphicsPipeline)
	recipes.SetViewportAndScissor(cb, frame.Extent)
	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{s.particles.Handle}, []vk.DeviceSize{0})
	vk.CmdDraw(cb, uint32(particleCount), 1, 0, 0)

	vk.CmdEndRenderPass(cb)
	return nil
}
