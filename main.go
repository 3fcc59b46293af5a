package main

import (
	"flag"
	"log"
	"math"

	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"

	"github.com/ironsmile/vulkan-cookbook-go/frames"
	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	"github.com/ironsmile/vulkan-cookbook-go/samplebase"
)

var cfg = samplebase.DefaultConfig("Vulkan Cookbook")

func init() {
	cfg.RegisterFlags(flag.CommandLine)
}

func main() {
	flag.Parse()
	defer closer.Close()

	if err := samplebase.New(cfg).Run(&clearSample{}); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// clearSample renders nothing but a render pass clearing the swapchain image
// to a colour which cycles through the hues.
type clearSample struct {
	samplebase.BaseSample

	color [4]float32
}

func (s *clearSample) Init(ctx *samplebase.Context) error {
	log.Printf("Clearing %dx%d images with %d frames in flight",
		ctx.Extent().Width, ctx.Extent().Height, ctx.Rotator.Len())
	return nil
}

func (s *clearSample) Update(ctx *samplebase.Context) {
	s.color = clearColor(ctx.Timer.Seconds() / 5)
}

func (s *clearSample) Record(ctx *samplebase.Context, frame frames.Frame) error {
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

// clearColor returns a fully saturated colour for hue h in turns. It wraps
// around every whole turn.
func clearColor(h float32) [4]float32 {
	h = h - float32(math.Floor(float64(h)))
	channel := func(offset float32) float32 {
		k := math.Mod(float64(offset+h*6), 6)
		v := 1 - math.Max(0, math.Min(math.Min(k, 4-k), 1))
		return float32(v)
	}
	return [4]float32{channel(5), channel(3), channel(1), 1}
}
