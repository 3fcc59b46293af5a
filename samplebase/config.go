package samplebase

import (
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
)

// Config holds the settings shared by all samples. The flag backed fields
// are filled by RegisterFlags, the rest is set by each sample in code.
type Config struct {
	Title  string
	Width  int
	Height int

	// Debug enables the validation layer and the debug report callback.
	Debug bool

	// Frames is the number of frame slots of the rotator.
	Frames int

	// Assets is the directory compiled shaders and models are read from.
	Assets string

	FenceTimeout time.Duration

	// Depth adds a depth attachment to the render pass and creates one
	// depth image per frame slot.
	Depth bool

	// Compute requires a queue family with compute support.
	Compute bool

	// SamplerAnisotropy enables anisotropic filtering on the device.
	SamplerAnisotropy bool

	// DeviceExtensions are required on top of the swapchain extension.
	DeviceExtensions []string
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig(title string) Config {
	return Config{
		Title:        title,
		Width:        1024,
		Height:       768,
		Frames:       frames.DefaultSlots,
		Assets:       ".",
		FenceTimeout: frames.DefaultFenceTimeout,
	}
}

// RegisterFlags binds the command line flags to c. The current values of c
// are used as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable Vulkan validation layers")
	fs.IntVar(&c.Frames, "frames", c.Frames, "Number of frames in flight")
	fs.IntVar(&c.Width, "width", c.Width, "Initial window width")
	fs.IntVar(&c.Height, "height", c.Height, "Initial window height")
	fs.StringVar(&c.Assets, "assets", c.Assets,
		"Directory with the compiled shaders and other sample assets")
	fs.DurationVar(&c.FenceTimeout, "fence-timeout", c.FenceTimeout,
		"How long to wait for a frame slot before giving up")
}

// Validate checks for values the application cannot start with.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.Frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", c.Frames)
	}
	if c.FenceTimeout == 0 {
		return fmt.Errorf("fence timeout must not be zero")
	}
	return nil
}

// Asset returns the path of an asset file under the assets directory.
func (c Config) Asset(elem ...string) string {
	return filepath.Join(append([]string{c.Assets}, elem...)...)
}
