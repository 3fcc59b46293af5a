package main

import (
	"flag"
	"log"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
	"github.com/ironsmile/vulkan-cookbook-go/mesh"
	"github.com/ironsmile/vulkan-cookbook-go/models"
	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/samplebase"
	"github.com/ironsmile/vulkan-cookbook-go/shaders"
	"github.com/ironsmile/vulkan-cookbook-go/textures"
	"github.com/ironsmile/vulkan-cookbook-go/unsafer"
	"github.com/ironsmile/vulkan-cookbook-go/vecmath"
	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

var cfg = samplebase.DefaultConfig("Vulkan Cookbook: Lit model")

var modelPath string

func init() {
	cfg.Depth = true
	cfg.SamplerAnisotropy = true
	cfg.RegisterFlags(flag.CommandLine)

	flag.StringVar(&modelPath, "model", "",
		"OBJ file with normals and texture coordinates, the embedded cube when empty")
}

func main() {
	flag.Parse()
	defer closer.Close()

	if err := samplebase.New(cfg).Run(&litModelSample{}); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// light must match the push constant block of model.frag.
type light struct {
	Direction [4]float32
	Ambient   [4]float32
}

// litModelSample draws a textured model lit by a directional light. Dragging
// with the left mouse button orbits the camera, the wheel zooms.
type litModelSample struct {
	samplebase.BaseSample

	mesh         *mesh.Mesh
	vertexBuffer *recipes.Buffer
	texture      *recipes.Image
	sampler      vk.Sampler

	setLayout      vk.DescriptorSetLayout
	descriptorSets []vk.DescriptorSet
	uniformBuffers []*recipes.Buffer

	layout   vk.PipelineLayout
	pipeline vk.Pipeline

	camera     *vecmath.OrbitCamera
	transforms vecmath.Transforms
	light      light
	spin       float32
}

func (s *litModelSample) Init(ctx *samplebase.Context) error {
	if err := s.loadModel(ctx); err != nil {
		return err
	}
	if err := s.createTexture(ctx); err != nil {
		return err
	}
	if err := s.createDescriptors(ctx); err != nil {
		return err
	}
	if err := s.createPipeline(ctx); err != nil {
		return err
	}

	s.camera = vecmath.NewOrbitCamera(3.5)
	s.camera.Pitch = mgl32.DegToRad(20)
	s.light = light{
		Direction: [4]float32{-0.5, -1, -0.7, 0},
		Ambient:   [4]float32{0.15, 0.15, 0.2, 1},
	}

	return nil
}

func (s *litModelSample) loadModel(ctx *samplebase.Context) error {
	opts := mesh.LoadOptions{
		Normals:   true,
		TexCoords: true,
		Tangents:  true,
		Unify:     true,
	}

	var err error
	if modelPath == "" {
		s.mesh, err = models.Load(models.Cube, opts)
	} else {
		s.mesh, err = mesh.LoadFile(modelPath, opts)
	}
	if err != nil {
		return err
	}

	log.Printf("Model has %d vertices in %d parts", s.mesh.VertexCount(), len(s.mesh.Parts))

	s.vertexBuffer, err = recipes.CreateDeviceLocalBuffer(
		ctx.Device,
		ctx.CommandPool,
		s.mesh.Bytes(),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
	)
	if err != nil {
		return err
	}
	ctx.Defer(s.vertexBuffer.Destroy)

	return nil
}

func (s *litModelSample) createTexture(ctx *samplebase.Context) error {
	texture, err := recipes.CreateSampledImage(ctx.Device, ctx.CommandPool, textures.Tiles(512, 8))
	if err != nil {
		return err
	}
	s.texture = texture
	ctx.Defer(texture.Destroy)

	sampler, err := recipes.CreateSampler(ctx.Device, ctx.Config.SamplerAnisotropy)
	if err != nil {
		return err
	}
	s.sampler = samplebase.Own(ctx, vkhandle.Sampler(ctx.Device.Handle, sampler))

	return nil
}

// createDescriptors makes one uniform buffer and descriptor set per frame
// slot. A slot's buffer is only written once its previous frame finished.
func (s *litModelSample) createDescriptors(ctx *samplebase.Context) error {
	device := ctx.Device.Handle
	slots := ctx.Rotator.Len()

	bindings := []vk.DescriptorSetLayoutBinding{
		recipes.LayoutBinding(0, vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit),
		recipes.LayoutBinding(1, vk.DescriptorTypeCombinedImageSampler, vk.ShaderStageFragmentBit),
	}

	setLayout, err := recipes.CreateDescriptorSetLayout(device, bindings...)
	if err != nil {
		return err
	}
	s.setLayout = samplebase.Own(ctx, vkhandle.DescriptorSetLayout(device, setLayout))

	pool, err := recipes.CreateDescriptorPool(
		device,
		uint32(slots),
		recipes.PoolSizes(bindings, uint32(slots)),
	)
	if err != nil {
		return err
	}
	pool = samplebase.Own(ctx, vkhandle.DescriptorPool(device, pool))

	s.descriptorSets, err = recipes.AllocateDescriptorSets(device, pool, s.setLayout, slots)
	if err != nil {
		return err
	}

	for i := 0; i < slots; i++ {
		buffer, err := recipes.CreateBuffer(
			device,
			ctx.Physical,
			vk.DeviceSize(unsafe.Sizeof(vecmath.Transforms{})),
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			recipes.HostVisible,
		)
		if err != nil {
			return err
		}
		ctx.Defer(buffer.Destroy)
		s.uniformBuffers = append(s.uniformBuffers, buffer)

		recipes.UpdateBufferDescriptor(
			device,
			s.descriptorSets[i],
			0,
			vk.DescriptorTypeUniformBuffer,
			buffer.Handle,
		)
		recipes.UpdateImageDescriptor(device, s.descriptorSets[i], 1, s.texture.View, s.sampler)
	}

	return nil
}

func (s *litModelSample) createPipeline(ctx *samplebase.Context) error {
	device := ctx.Device.Handle

	vert, err := ctx.LoadShader(shaders.SPIRV(shaders.ModelVert))
	if err != nil {
		return err
	}
	frag, err := ctx.LoadShader(shaders.SPIRV(shaders.ModelFrag))
	if err != nil {
		return err
	}

	layout, err := recipes.CreatePipelineLayout(
		device,
		[]vk.DescriptorSetLayout{s.setLayout},
		[]vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			Size:       uint32(unsafe.Sizeof(light{})),
		}},
	)
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
	pipelineConfig.Bindings = []vk.VertexInputBindingDescription{
		s.mesh.Layout.BindingDescription(0),
	}
	pipelineConfig.Attributes = s.mesh.Layout.AttributeDescriptions(0)
	pipelineConfig.CullMode = vk.CullModeFlags(vk.CullModeNone)
	pipelineConfig.DepthTest = true

	pipelines, err := recipes.CreateGraphicsPipelines(
		device,
		vk.PipelineCache(vk.NullHandle),
		pipelineConfig,
	)
	if err != nil {
		return err
	}
	s.pipeline = samplebase.Own(ctx, vkhandle.Pipeline(device, pipelines[0]))

	return nil
}

func (s *litModelSample) Update(ctx *samplebase.Context) {
	in := ctx.Input

	if in.Pressed(glfw.MouseButtonLeft) {
		s.camera.Rotate(float32(in.DeltaX), float32(in.DeltaY))
	} else {
		s.spin += float32(ctx.Timer.Delta.Seconds()) * 0.5
	}
	if in.Wheel != 0 {
		s.camera.Zoom(float32(in.Wheel))
	}

	s.transforms = vecmath.Transforms{
		Model: vecmath.Rotation(mgl32.Vec3{0, 1, 0}, s.spin),
		View:  s.camera.View(),
		Proj:  vecmath.Perspective(45, ctx.AspectRatio(), 0.1, 100),
	}
}

func (s *litModelSample) Record(ctx *samplebase.Context, frame frames.Frame) error {
	if err := s.uniformBuffers[frame.Slot].Upload(unsafer.StructToBytes(&s.transforms)); err != nil {
		return err
	}

	cb := frame.CommandBuffer

	recipes.BeginRenderPass(
		cb,
		frame.RenderPass,
		frame.Framebuffer,
		frame.Extent,
		recipes.ClearValues([4]float32{0.1, 0.1, 0.12, 1}, true),
	)

	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, s.pipeline)
	recipes.SetViewportAndScissor(cb, frame.Extent)

	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{s.vertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindDescriptorSets(
		cb,
		vk.PipelineBindPointGraphics,
		s.layout,
		0,
		1,
		[]vk.DescriptorSet{s.descriptorSets[frame.Slot]},
		0,
		nil,
	)
	vk.CmdPushConstants(
		cb,
		s.layout,
		vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		0,
		uint32(unsafe.Sizeof(s.light)),
		unsafe.Pointer(&s.light),
	)

	for _, part := range s.mesh.Parts {
		vk.CmdDraw(cb, part.Count, 1, part.Offset, 0)
	}

	vk.CmdEndRenderPass(cb)
	return nil
}
