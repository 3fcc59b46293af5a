package recipes

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// CreatePipelineLayout creates a layout with the given descriptor set layouts
// and push constant ranges. Both may be empty.
func CreatePipelineLayout(
	device vk.Device,
	setLayouts []vk.DescriptorSetLayout,
	pushConstants []vk.PushConstantRange,
) (vk.PipelineLayout, error) {
	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(setLayouts)),
		PSetLayouts:            setLayouts,
		PushConstantRangeCount: uint32(len(pushConstants)),
		PPushConstantRanges:    pushConstants,
	}

	var pipelineLayout vk.PipelineLayout
	res := vk.CreatePipelineLayout(device, &pipelineLayoutInfo, nil, &pipelineLayout)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	return pipelineLayout, nil
}

// GraphicsPipelineConfig is the variable part of a graphics pipeline. The
// viewport and scissor are always dynamic and one colour attachment is
// assumed. Use NewGraphicsPipelineConfig to get sensible defaults.
type GraphicsPipelineConfig struct {
	Stages     []vk.PipelineShaderStageCreateInfo
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription

	Topology    vk.PrimitiveTopology
	PolygonMode vk.PolygonMode
	CullMode    vk.CullModeFlags
	FrontFace   vk.FrontFace

	DepthTest bool

	// Blend enables alpha blending of the colour attachment.
	Blend bool

	Layout     vk.PipelineLayout
	RenderPass vk.RenderPass
	Subpass    uint32
}

// NewGraphicsPipelineConfig returns a config drawing filled, back face culled
// triangle lists with counter clockwise front faces.
func NewGraphicsPipelineConfig(
	layout vk.PipelineLayout,
	renderPass vk.RenderPass,
	stages ...vk.PipelineShaderStageCreateInfo,
) GraphicsPipelineConfig {
	return GraphicsPipelineConfig{
		Stages:      stages,
		Topology:    vk.PrimitiveTopologyTriangleList,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:   vk.FrontFaceCounterClockwise,
		Layout:      layout,
		RenderPass:  renderPass,
	}
}

var dynamicStates = []vk.DynamicState{
	vk.DynamicStateViewport,
	vk.DynamicStateScissor,
}

func colorBlendAttachment(blend bool) vk.PipelineColorBlendAttachmentState {
	state := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit |
				vk.ColorComponentGBit |
				vk.ColorComponentBBit |
				vk.ColorComponentABit,
		),
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorOne,
		DstColorBlendFactor: vk.BlendFactorZero,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
	}

	if blend {
		state.BlendEnable = vk.True
		state.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		state.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
	}

	return state
}

func boolToVk(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// CreateInfo assembles the native create info. All nested state lives on the
// heap and stays reachable through the returned value.
func (c GraphicsPipelineConfig) CreateInfo() vk.GraphicsPipelineCreateInfo {
	vertexInputInfo := &vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,

		VertexBindingDescriptionCount: uint32(len(c.Bindings)),
		PVertexBindingDescriptions:    c.Bindings,

		VertexAttributeDescriptionCount: uint32(len(c.Attributes)),
		PVertexAttributeDescriptions:    c.Attributes,
	}

	inputAssembly := &vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               c.Topology,
		PrimitiveRestartEnable: vk.False,
	}

	dynamicState := &vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	viewportState := &vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizer := &vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             c.PolygonMode,
		LineWidth:               1,
		CullMode:                c.CullMode,
		FrontFace:               c.FrontFace,
		DepthBiasEnable:         vk.False,
	}

	multisampling := &vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	colorBlending := &vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{
			colorBlendAttachment(c.Blend),
		},
	}

	depthStencil := &vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       boolToVk(c.DepthTest),
		DepthWriteEnable:      boolToVk(c.DepthTest),
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		MinDepthBounds:        0,
		MaxDepthBounds:        1,
		StencilTestEnable:     vk.False,
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(c.Stages)),
		PStages:             c.Stages,
		PVertexInputState:   vertexInputInfo,
		PInputAssemblyState: inputAssembly,
		PViewportState:      viewportState,
		PRasterizationState: rasterizer,
		PMultisampleState:   multisampling,
		PDepthStencilState:  depthStencil,
		PColorBlendState:    colorBlending,
		PDynamicState:       dynamicState,
		Layout:              c.Layout,
		RenderPass:          c.RenderPass,
		Subpass:             c.Subpass,
		BasePipelineHandle:  vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:   -1,
	}
}

// CreateGraphicsPipelines creates one pipeline per config in a single call.
// cache may be null.
func CreateGraphicsPipelines(
	device vk.Device,
	cache vk.PipelineCache,
	configs ...GraphicsPipelineConfig,
) ([]vk.Pipeline, error) {
	if len(configs) == 0 {
		return nil, nil
	}

	createInfos := make([]vk.GraphicsPipelineCreateInfo, len(configs))
	for i, cfg := range configs {
		createInfos[i] = cfg.CreateInfo()
	}

	pipelines := make([]vk.Pipeline, len(configs))
	res := vk.CreateGraphicsPipelines(
		device,
		cache,
		uint32(len(createInfos)),
		createInfos,
		nil,
		pipelines,
	)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create graphics pipeline: %w", err)
	}

	return pipelines, nil
}

// CreateComputePipeline creates a compute pipeline running the "main" entry
// point of module.
func CreateComputePipeline(
	device vk.Device,
	cache vk.PipelineCache,
	layout vk.PipelineLayout,
	module vk.ShaderModule,
) (vk.Pipeline, error) {
	pipelineInfo := vk.ComputePipelineCreateInfo{
		SType:              vk.StructureTypeComputePipelineCreateInfo,
		Stage:              ShaderStage(vk.ShaderStageComputeBit, module),
		Layout:             layout,
		BasePipelineHandle: vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:  -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateComputePipelines(
		device,
		cache,
		1,
		[]vk.ComputePipelineCreateInfo{pipelineInfo},
		nil,
		pipelines,
	)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create compute pipeline: %w", err)
	}

	return pipelines[0], nil
}
