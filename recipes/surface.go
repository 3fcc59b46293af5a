package recipes

import (
	"cmp"
	"fmt"
	"math"

	vk "github.com/vulkan-go/vulkan"
)

// SwapchainSupport describes a present surface as seen by a physical device.
// The type is suitable for passing around many details of the surface between
// functions.
type SwapchainSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate returns true when at least one format and one present mode are
// available.
func (s SwapchainSupport) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// QuerySwapchainSupport returns the capabilities, formats and present modes
// supported by device for surface.
func QuerySwapchainSupport(
	device vk.PhysicalDevice,
	surface vk.Surface,
) (SwapchainSupport, error) {
	details := SwapchainSupport{}

	var capabilities vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &capabilities)
	if err := vk.Error(res); err != nil {
		return details, fmt.Errorf("failed to query device surface capabilities: %w", err)
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()

	details.Capabilities = capabilities

	var formatCount uint32
	res = vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil)
	if err := vk.Error(res); err != nil {
		return details, fmt.Errorf("failed to query device surface formats: %w", err)
	}

	if formatCount != 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, formats)
		for _, format := range formats {
			format.Deref()
			details.Formats = append(details.Formats, format)
		}
	}

	var presentModeCount uint32
	res = vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &presentModeCount, nil)
	if err := vk.Error(res); err != nil {
		return details, fmt.Errorf("failed to query device surface present modes: %w", err)
	}

	if presentModeCount != 0 {
		presentModes := make([]vk.PresentMode, presentModeCount)
		vk.GetPhysicalDeviceSurfacePresentModes(
			device, surface, &presentModeCount, presentModes,
		)
		details.PresentModes = presentModes
	}

	return details, nil
}

// ChooseSurfaceFormat prefers 8 bit BGRA sRGB. A single undefined format
// means the surface has no preference at all.
func ChooseSurfaceFormat(available []vk.SurfaceFormat) vk.SurfaceFormat {
	if len(available) == 0 {
		return vk.SurfaceFormat{
			Format:     vk.FormatB8g8r8a8Unorm,
			ColorSpace: vk.ColorSpaceSrgbNonlinear,
		}
	}

	if len(available) == 1 && available[0].Format == vk.FormatUndefined {
		return vk.SurfaceFormat{
			Format:     vk.FormatB8g8r8a8Srgb,
			ColorSpace: vk.ColorSpaceSrgbNonlinear,
		}
	}

	for _, format := range available {
		if format.Format == vk.FormatB8g8r8a8Srgb &&
			format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}

	return available[0]
}

// ChoosePresentMode returns desired if the surface supports it. Otherwise
// mailbox is preferred over FIFO, which is always available.
func ChoosePresentMode(available []vk.PresentMode, desired vk.PresentMode) vk.PresentMode {
	for _, mode := range available {
		if mode == desired {
			return mode
		}
	}

	for _, mode := range available {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}

	return vk.PresentModeFifo
}

// ChooseExtent returns the size of the swapchain images. Surfaces which let
// the application choose report a current width of MaxUint32, then the
// framebuffer size is clamped to the supported range.
func ChooseExtent(
	capabilities vk.SurfaceCapabilities,
	framebufferWidth, framebufferHeight int,
) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}

	return vk.Extent2D{
		Width: clamp(
			uint32(framebufferWidth),
			capabilities.MinImageExtent.Width,
			capabilities.MaxImageExtent.Width,
		),
		Height: clamp(
			uint32(framebufferHeight),
			capabilities.MinImageExtent.Height,
			capabilities.MaxImageExtent.Height,
		),
	}
}

// ChooseImageCount asks for one image more than the minimum so the driver
// never makes us wait, but stays within the maximum. A maximum of zero means
// there is no limit.
func ChooseImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func clamp[T cmp.Ordered](val, min, max T) T {
	if val < min {
		val = min
	}
	if val > max {
		val = max
	}
	return val
}
