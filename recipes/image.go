package recipes

import (
	"fmt"
	"image"
	"image/draw"

	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

// ImageViewConfig describes a 2D view over a single mip level and layer.
type ImageViewConfig struct {
	Image  vk.Image
	Format vk.Format
	Aspect vk.ImageAspectFlags
}

// CreateImageView creates a view for cfg.Image. Components are not swizzled.
func CreateImageView(device vk.Device, cfg ImageViewConfig) (vk.ImageView, error) {
	aspect := cfg.Aspect
	if aspect == 0 {
		aspect = vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}

	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    cfg.Image,
		ViewType: vk.ImageViewType2d,
		Format:   cfg.Format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var imageView vk.ImageView
	res := vk.CreateImageView(device, &createInfo, nil, &imageView)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create image view: %w", err)
	}

	return imageView, nil
}

// ImageConfig describes a 2D image with a single mip level and layer.
type ImageConfig struct {
	Width      uint32
	Height     uint32
	Format     vk.Format
	Tiling     vk.ImageTiling
	Usage      vk.ImageUsageFlags
	Properties vk.MemoryPropertyFlags
	Aspect     vk.ImageAspectFlags
}

// Image is an image, its bound memory and a view covering all of it.
type Image struct {
	Device vk.Device
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Format vk.Format
	Extent vk.Extent2D
}

// CreateImage creates an image, binds memory to it and creates a view.
func CreateImage(
	device vk.Device,
	physical vk.PhysicalDevice,
	cfg ImageConfig,
) (*Image, error) {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  cfg.Width,
			Height: cfg.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        cfg.Format,
		Tiling:        cfg.Tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         cfg.Usage,
		SharingMode:   vk.SharingModeExclusive,
		Samples:       vk.SampleCount1Bit,
	}

	img := &Image{
		Device: device,
		Format: cfg.Format,
		Extent: vk.Extent2D{Width: cfg.Width, Height: cfg.Height},
	}

	res := vk.CreateImage(device, &imageInfo, nil, &img.Handle)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create an image: %w", err)
	}

	memory, err := AllocateAndBindImageMemory(device, physical, img.Handle, cfg.Properties)
	if err != nil {
		img.Destroy()
		return nil, err
	}
	img.Memory = memory

	img.View, err = CreateImageView(device, ImageViewConfig{
		Image:  img.Handle,
		Format: cfg.Format,
		Aspect: cfg.Aspect,
	})
	if err != nil {
		img.Destroy()
		return nil, err
	}

	return img, nil
}

// AllocateAndBindImageMemory allocates memory fitting image and binds it at
// offset zero.
func AllocateAndBindImageMemory(
	device vk.Device,
	physical vk.PhysicalDevice,
	image vk.Image,
	properties vk.MemoryPropertyFlags,
) (vk.DeviceMemory, error) {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image, &memRequirements)
	memRequirements.Deref()

	memory, err := AllocateMemory(device, physical, memRequirements, properties)
	if err != nil {
		return nil, fmt.Errorf("allocating image memory: %w", err)
	}

	owned := vkhandle.Memory(device, memory)

	res := vk.BindImageMemory(device, image, memory, 0)
	if err := vk.Error(res); err != nil {
		owned.Destroy()
		return nil, fmt.Errorf("failed to bind image memory: %w", err)
	}

	return memory, nil
}

// Destroy releases the view, the image and its memory.
func (i *Image) Destroy() {
	view := vkhandle.ImageView(i.Device, i.View)
	view.Destroy()
	i.View = vk.NullImageView

	handle := vkhandle.Image(i.Device, i.Handle)
	handle.Destroy()
	i.Handle = vk.NullImage

	memory := vkhandle.Memory(i.Device, i.Memory)
	memory.Destroy()
	i.Memory = vk.NullDeviceMemory
}

// FindSupportedFormat returns the first of candidates which supports
// features with the given tiling.
func FindSupportedFormat(
	physical vk.PhysicalDevice,
	candidates []vk.Format,
	tiling vk.ImageTiling,
	features vk.FormatFeatureFlags,
) (vk.Format, error) {
	for _, format := range candidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(physical, format, &props)
		props.Deref()

		if formatSupports(props, tiling, features) {
			return format, nil
		}
	}

	return vk.FormatUndefined, fmt.Errorf("could not find suitable format")
}

func formatSupports(
	props vk.FormatProperties,
	tiling vk.ImageTiling,
	features vk.FormatFeatureFlags,
) bool {
	switch tiling {
	case vk.ImageTilingLinear:
		return props.LinearTilingFeatures&features == features
	case vk.ImageTilingOptimal:
		return props.OptimalTilingFeatures&features == features
	}
	return false
}

// DepthFormats lists depth formats in order of preference.
var DepthFormats = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

// FindDepthFormat returns a depth format usable as an optimally tiled
// attachment.
func FindDepthFormat(physical vk.PhysicalDevice) (vk.Format, error) {
	return FindSupportedFormat(
		physical,
		DepthFormats,
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
	)
}

// HasStencilComponent tells whether a depth format carries stencil bits too.
func HasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

// DepthAspect returns the aspect mask for a depth attachment of format.
func DepthAspect(format vk.Format) vk.ImageAspectFlags {
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if HasStencilComponent(format) {
		aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return aspect
}

// CreateDepthAttachment creates a device local depth image of extent.
func CreateDepthAttachment(
	device vk.Device,
	physical vk.PhysicalDevice,
	extent vk.Extent2D,
) (*Image, error) {
	depthFormat, err := FindDepthFormat(physical)
	if err != nil {
		return nil, fmt.Errorf("could not find suitable depth image format: %w", err)
	}

	depth, err := CreateImage(device, physical, ImageConfig{
		Width:      extent.Width,
		Height:     extent.Height,
		Format:     depthFormat,
		Tiling:     vk.ImageTilingOptimal,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		Properties: DeviceLocal,
		Aspect:     vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create depth image: %w", err)
	}

	return depth, nil
}

type layoutBarrier struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

func layoutTransition(oldLayout, newLayout vk.ImageLayout) (layoutBarrier, error) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined &&
		newLayout == vk.ImageLayoutTransferDstOptimal:
		return layoutBarrier{
			dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil

	case oldLayout == vk.ImageLayoutTransferDstOptimal &&
		newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return layoutBarrier{
			srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil

	case oldLayout == vk.ImageLayoutUndefined &&
		newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return layoutBarrier{
			dstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit) |
				vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
			srcStage: vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage: vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		}, nil
	}

	return layoutBarrier{}, fmt.Errorf(
		"unsupported layout transition from %d to %d", oldLayout, newLayout,
	)
}

// TransitionImageLayout moves image from oldLayout to newLayout and waits for
// the transition to complete.
func TransitionImageLayout(
	device *Device,
	pool vk.CommandPool,
	image vk.Image,
	format vk.Format,
	oldLayout vk.ImageLayout,
	newLayout vk.ImageLayout,
) error {
	transition, err := layoutTransition(oldLayout, newLayout)
	if err != nil {
		return err
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal {
		aspect = DepthAspect(format)
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		SrcAccessMask: transition.srcAccess,
		DstAccessMask: transition.dstAccess,
	}

	return OneTimeCommands(device.Handle, pool, device.Graphics, func(cmd vk.CommandBuffer) {
		vk.CmdPipelineBarrier(
			cmd,
			transition.srcStage, transition.dstStage,
			0,
			0, nil,
			0, nil,
			1, []vk.ImageMemoryBarrier{barrier},
		)
	})
}

// CopyBufferToImage copies tightly packed pixels from buffer into image. The
// image must be in the transfer destination layout.
func CopyBufferToImage(
	device *Device,
	pool vk.CommandPool,
	buffer vk.Buffer,
	image vk.Image,
	width, height uint32,
) error {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,

		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},

		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
	}

	return OneTimeCommands(device.Handle, pool, device.Graphics, func(cmd vk.CommandBuffer) {
		vk.CmdCopyBufferToImage(
			cmd,
			buffer,
			image,
			vk.ImageLayoutTransferDstOptimal,
			1,
			[]vk.BufferImageCopy{region},
		)
	})
}

// ToRGBA converts img to tightly packed RGBA pixels with origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) &&
		rgba.Stride == 4*b.Dx() {
		return rgba
	}

	rgbaImg := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgbaImg, rgbaImg.Bounds(), img, b.Min, draw.Src)
	return rgbaImg
}

// CreateSampledImage uploads img into a device local image ready to be
// sampled from fragment shaders.
func CreateSampledImage(
	device *Device,
	pool vk.CommandPool,
	img image.Image,
) (*Image, error) {
	rgbaImg := ToRGBA(img)
	texWidth := uint32(rgbaImg.Rect.Dx())
	texHeight := uint32(rgbaImg.Rect.Dy())

	staging, err := CreateBuffer(
		device.Handle,
		device.Physical,
		vk.DeviceSize(len(rgbaImg.Pix)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		HostVisible,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture staging buffer: %w", err)
	}
	defer staging.Destroy()

	if err := staging.Upload(rgbaImg.Pix); err != nil {
		return nil, fmt.Errorf("filling texture staging buffer: %w", err)
	}

	texture, err := CreateImage(device.Handle, device.Physical, ImageConfig{
		Width:  texWidth,
		Height: texHeight,
		Format: vk.FormatR8g8b8a8Srgb,
		Tiling: vk.ImageTilingOptimal,
		Usage: vk.ImageUsageFlags(vk.ImageUsageTransferDstBit) |
			vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		Properties: DeviceLocal,
		Aspect:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
	})
	if err != nil {
		return nil, fmt.Errorf("filed to create Vulkan image: %w", err)
	}

	err = TransitionImageLayout(
		device,
		pool,
		texture.Handle,
		texture.Format,
		vk.ImageLayoutUndefined,
		vk.ImageLayoutTransferDstOptimal,
	)
	if err != nil {
		texture.Destroy()
		return nil, fmt.Errorf("transition image layout: %w", err)
	}

	err = CopyBufferToImage(device, pool, staging.Handle, texture.Handle, texWidth, texHeight)
	if err != nil {
		texture.Destroy()
		return nil, fmt.Errorf("copying buffer to image: %w", err)
	}

	err = TransitionImageLayout(
		device,
		pool,
		texture.Handle,
		texture.Format,
		vk.ImageLayoutTransferDstOptimal,
		vk.ImageLayoutShaderReadOnlyOptimal,
	)
	if err != nil {
		texture.Destroy()
		return nil, fmt.Errorf("transitioning to read only optimal layout: %w", err)
	}

	return texture, nil
}

// CreateSampler creates a linear, repeating sampler. Anisotropic filtering is
// enabled with the device maximum when anisotropy is true.
func CreateSampler(device *Device, anisotropy bool) (vk.Sampler, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}

	if anisotropy {
		properties := DeviceProperties(device.Physical)
		samplerInfo.AnisotropyEnable = vk.True
		samplerInfo.MaxAnisotropy = properties.Limits.MaxSamplerAnisotropy
	}

	var sampler vk.Sampler
	res := vk.CreateSampler(device.Handle, &samplerInfo, nil, &sampler)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	return sampler, nil
}
