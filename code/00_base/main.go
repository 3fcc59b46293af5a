package main

import (
	"flag"
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/samplebase"
)

var cfg = samplebase.DefaultConfig("Vulkan Cookbook: Window and input")

func init() {
	cfg.RegisterFlags(flag.CommandLine)
}

func main() {
	flag.Parse()
	defer closer.Close()

	if err := samplebase.New(cfg).Run(&inputSample{}); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// inputSample clears the window with a colour picked by the mouse. The
// wheel changes brightness and holding the left button freezes the colour.
type inputSample struct {
	samplebase.BaseSample

	color      [4]float32
	brightness float32
}

func (s *inputSample) Init(ctx *samplebase.Context) error {
	s.brightness = 1
	log.Printf("Move the mouse to change the colour, scroll for brightness, " +
		"hold the left button to freeze it and press escape to quit.")
	return nil
}

func (s *inputSample) Update(ctx *samplebase.Context) {
	in := ctx.Input

	if in.Wheel != 0 {
		s.brightness = clamp(s.brightness+float32(in.Wheel)*0.1, 0.1, 1)
		log.Printf("Brightness: %.1f", s.brightness)
	}

	if in.Pressed(glfw.MouseButtonLeft) {
		return
	}

	width, height := ctx.Window.GetSize()
	if width == 0 || height == 0 {
		return
	}

	s.color = [4]float32{
		clamp(float32(in.X)/float32(width), 0, 1) * s.brightness,
		clamp(float32(in.Y)/float32(height), 0, 1) * s.brightness,
		(0.5 + 0.5*sin(ctx.Timer.Seconds())) * s.brightness,
		1,
	}
}

func (s *inputSample) Record(ctx *samplebase.Context, frame frames.Frame) error {
	recipes.BeginRenderPass(
		frame.CommandBuffer,
		frame.RenderPass,
		frame.Framebuffer,
		frame.Extent,
		recipes.ClearValues(s.color, false),
	)
	vk.CmdEndRenderPass(frame.CommandBuffer)
	return nil
}
