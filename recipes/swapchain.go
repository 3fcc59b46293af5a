package recipes

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-cookbook-go/vkhandle"
)

// SwapchainConfig describes the swapchain to create for a surface.
type SwapchainConfig struct {
	Surface vk.Surface

	// FramebufferWidth and FramebufferHeight are used when the surface lets
	// the application decide the image size.
	FramebufferWidth  int
	FramebufferHeight int

	// PresentMode is used if supported, see ChoosePresentMode.
	PresentMode vk.PresentMode

	// Usage adds to the colour attachment usage every swapchain image has.
	Usage vk.ImageUsageFlags

	// Old is the swapchain being replaced, or vk.NullSwapchain.
	Old vk.Swapchain
}

// Swapchain is a swapchain with its images and one view per image. The
// images belong to the swapchain, the views belong to the application.
type Swapchain struct {
	Device vk.Device
	Handle vk.Swapchain
	Format vk.Format
	Extent vk.Extent2D
	Images []vk.Image
	Views  []vk.ImageView
}

// CreateSwapchain creates a swapchain for device and a view for each of its
// images. The old swapchain in cfg is not destroyed.
func CreateSwapchain(device *Device, cfg SwapchainConfig) (*Swapchain, error) {
	support, err := QuerySwapchainSupport(device.Physical, cfg.Surface)
	if err != nil {
		return nil, err
	}
	if !support.Adequate() {
		return nil, fmt.Errorf("surface has no formats or present modes")
	}

	surfaceFormat := ChooseSurfaceFormat(support.Formats)
	presentMode := ChoosePresentMode(support.PresentModes, cfg.PresentMode)
	extent := ChooseExtent(
		support.Capabilities,
		cfg.FramebufferWidth,
		cfg.FramebufferHeight,
	)

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          cfg.Surface,
		MinImageCount:    ChooseImageCount(support.Capabilities),
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageFormat:      surfaceFormat.Format,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit) | cfg.Usage,
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     cfg.Old,
	}

	families := device.Families
	if !families.Shared() {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			families.Graphics.Get(),
			families.Present.Get(),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	res := vk.CreateSwapchain(device.Handle, &createInfo, nil, &swapchain)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create swap chain: %w", err)
	}

	sc := &Swapchain{
		Device: device.Handle,
		Handle: swapchain,
		Format: surfaceFormat.Format,
		Extent: extent,
	}

	images, err := SwapchainImages(device.Handle, swapchain)
	if err != nil {
		sc.Destroy()
		return nil, err
	}
	sc.Images = images

	for i, image := range images {
		view, err := CreateImageView(device.Handle, ImageViewConfig{
			Image:  image,
			Format: sc.Format,
			Aspect: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		})
		if err != nil {
			sc.Destroy()
			return nil, fmt.Errorf("swapchain image %d: %w", i, err)
		}
		sc.Views = append(sc.Views, view)
	}

	return sc, nil
}

// SwapchainImages returns the images owned by swapchain.
func SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var imagesCount uint32
	res := vk.GetSwapchainImages(device, swapchain, &imagesCount, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("getting swapchain images count: %w", err)
	}

	images := make([]vk.Image, imagesCount)
	res = vk.GetSwapchainImages(device, swapchain, &imagesCount, images)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("getting swapchain images: %w", err)
	}

	return images, nil
}

// Destroy destroys the image views and then the swapchain. The images go
// away with the swapchain.
func (s *Swapchain) Destroy() {
	for _, v := range s.Views {
		view := vkhandle.ImageView(s.Device, v)
		view.Destroy()
	}
	s.Views = nil
	s.Images = nil

	swapchain := vkhandle.Swapchain(s.Device, s.Handle)
	swapchain.Destroy()
	s.Handle = vk.NullSwapchain
}

// AspectRatio returns width / height of the swapchain images.
func (s *Swapchain) AspectRatio() float32 {
	if s.Extent.Height == 0 {
		return 1
	}
	return float32(s.Extent.Width) / float32(s.Extent.Height)
}
