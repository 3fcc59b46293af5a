package samplebase

import (
	"time"
)

// Timer measures frame times. Tick is called once per frame.
type Timer struct {
	// Elapsed is the time since the timer started.
	Elapsed time.Duration

	// Delta is the time between the last two ticks.
	Delta time.Duration

	start  time.Time
	last   time.Time
	window time.Time
	frames int
	fps    float64

	now func() time.Time
}

// NewTimer returns a timer started now.
func NewTimer() *Timer {
	return newTimer(time.Now)
}

func newTimer(now func() time.Time) *Timer {
	t := &Timer{now: now}
	t.Reset()
	return t
}

// Reset restarts the timer.
func (t *Timer) Reset() {
	start := t.now()
	t.start = start
	t.last = start
	t.window = start
	t.frames = 0
	t.Elapsed = 0
	t.Delta = 0
}

// Tick advances the timer by one frame. It returns true each time a full
// second has passed since the previous report, FPS is updated then.
func (t *Timer) Tick() bool {
	now := t.now()
	t.Delta = now.Sub(t.last)
	t.Elapsed = now.Sub(t.start)
	t.last = now
	t.frames++

	since := now.Sub(t.window)
	if since < time.Second {
		return false
	}

	t.fps = float64(t.frames) / since.Seconds()
	t.frames = 0
	t.window = now
	return true
}

// FPS returns the frame rate measured over the last full second.
func (t *Timer) FPS() float64 {
	return t.fps
}

// Seconds returns Elapsed as float32, handy for animations.
func (t *Timer) Seconds() float32 {
	return float32(t.Elapsed.Seconds())
}
