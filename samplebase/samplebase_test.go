package samplebase

import (
	"errors"
	"flag"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/ironsmile/vulkan-cookbook-go/frames"
	. "github.com/onsi/gomega"
)

func TestConfigFlags(t *testing.T) {
	g := NewWithT(t)

	cfg := DefaultConfig("test")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)

	g.Expect(fs.Parse(nil)).To(Succeed())
	g.Expect(cfg.Frames).To(Equal(3))
	g.Expect(cfg.Assets).To(Equal("."))
	g.Expect(cfg.FenceTimeout).To(Equal(2 * time.Second))
	g.Expect(cfg.Debug).To(BeFalse())
	g.Expect(cfg.Validate()).To(Succeed())

	err := fs.Parse([]string{
		"-debug",
		"-frames", "2",
		"-width", "640",
		"-height", "480",
		"-assets", "build",
		"-fence-timeout", "500ms",
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Debug).To(BeTrue())
	g.Expect(cfg.Frames).To(Equal(2))
	g.Expect(cfg.Width).To(Equal(640))
	g.Expect(cfg.Height).To(Equal(480))
	g.Expect(cfg.FenceTimeout).To(Equal(500 * time.Millisecond))
	g.Expect(cfg.Asset("shaders", "vert.spv")).To(
		Equal(filepath.Join("build", "shaders", "vert.spv")),
	)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no frames", func(c *Config) { c.Frames = 0 }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"zero fence timeout", func(c *Config) { c.FenceTimeout = 0 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := NewWithT(t)
			cfg := DefaultConfig("test")
			test.modify(&cfg)
			g.Expect(cfg.Validate()).NotTo(Succeed())
		})
	}
}

func TestInputMouse(t *testing.T) {
	g := NewWithT(t)

	var in Input
	in.MoveTo(100, 50)
	g.Expect(in.DeltaX).To(BeZero())
	g.Expect(in.DeltaY).To(BeZero())

	in.MoveTo(110, 45)
	in.MoveTo(115, 40)
	g.Expect(in.DeltaX).To(Equal(15.0))
	g.Expect(in.DeltaY).To(Equal(-10.0))
	g.Expect(in.X).To(Equal(115.0))

	in.Scroll(1)
	in.Scroll(2)
	g.Expect(in.Wheel).To(Equal(3.0))

	in.EndFrame()
	g.Expect(in.DeltaX).To(BeZero())
	g.Expect(in.Wheel).To(BeZero())
	g.Expect(in.X).To(Equal(115.0))

	in.MoveTo(116, 40)
	g.Expect(in.DeltaX).To(Equal(1.0))
}

func TestInputButtons(t *testing.T) {
	g := NewWithT(t)

	var in Input
	g.Expect(in.Pressed(glfw.MouseButtonLeft)).To(BeFalse())

	in.SetButton(glfw.MouseButtonLeft, true)
	g.Expect(in.Pressed(glfw.MouseButtonLeft)).To(BeTrue())
	g.Expect(in.Pressed(glfw.MouseButtonRight)).To(BeFalse())

	in.SetButton(glfw.MouseButtonLeft, false)
	g.Expect(in.Pressed(glfw.MouseButtonLeft)).To(BeFalse())

	in.SetButton(glfw.MouseButton(42), true)
	g.Expect(in.Pressed(glfw.MouseButton(42))).To(BeFalse())
}

func TestInputEscape(t *testing.T) {
	g := NewWithT(t)

	var in Input
	in.Key(glfw.KeyA, glfw.Press)
	in.Key(glfw.KeyEscape, glfw.Release)
	g.Expect(in.Quit()).To(BeFalse())

	in.Key(glfw.KeyEscape, glfw.Press)
	g.Expect(in.Quit()).To(BeTrue())
}

func TestTimer(t *testing.T) {
	g := NewWithT(t)

	now := time.Unix(1000, 0)
	timer := newTimer(func() time.Time { return now })

	var reports int
	for i := 0; i < 30; i++ {
		now = now.Add(50 * time.Millisecond)
		if timer.Tick() {
			reports++
		}
	}

	g.Expect(timer.Delta).To(Equal(50 * time.Millisecond))
	g.Expect(timer.Elapsed).To(Equal(1500 * time.Millisecond))
	g.Expect(timer.Seconds()).To(BeNumerically("~", 1.5, 1e-6))
	g.Expect(reports).To(Equal(1))
	g.Expect(timer.FPS()).To(BeNumerically("~", 20, 1e-9))

	timer.Reset()
	g.Expect(timer.Elapsed).To(BeZero())
	now = now.Add(10 * time.Millisecond)
	g.Expect(timer.Tick()).To(BeFalse())
	g.Expect(timer.Elapsed).To(Equal(10 * time.Millisecond))
}

func TestFrameStepConsumesInput(t *testing.T) {
	var (
		in        Input
		resized   bool
		recreated int
		drawn     int
		drawErr   error
	)
	recreate := func() error {
		recreated++
		return nil
	}
	draw := func() error {
		drawn++
		return drawErr
	}
	move := func() {
		in.MoveTo(10, 10)
		in.MoveTo(20, 30)
		in.Scroll(1)
	}

	t.Run("resize", func(t *testing.T) {
		g := NewWithT(t)
		move()
		resized = true

		g.Expect(frameStep(&in, &resized, recreate, draw)).To(Succeed())
		g.Expect(resized).To(BeFalse())
		g.Expect(recreated).To(Equal(1))
		g.Expect(drawn).To(BeZero())
		g.Expect(in.DeltaX).To(BeZero())
		g.Expect(in.DeltaY).To(BeZero())
		g.Expect(in.Wheel).To(BeZero())
	})

	t.Run("out of date", func(t *testing.T) {
		g := NewWithT(t)
		move()
		drawErr = frames.ErrSwapchainOutOfDate

		g.Expect(frameStep(&in, &resized, recreate, draw)).To(Succeed())
		g.Expect(recreated).To(Equal(2))
		g.Expect(drawn).To(Equal(1))
		g.Expect(in.DeltaX).To(BeZero())
	})

	t.Run("draw error", func(t *testing.T) {
		g := NewWithT(t)
		move()
		drawErr = errors.New("device lost")

		err := frameStep(&in, &resized, recreate, draw)
		g.Expect(err).To(MatchError(drawErr))
		g.Expect(recreated).To(Equal(2))
		g.Expect(in.Wheel).To(BeZero())
	})
}
