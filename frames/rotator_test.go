//go:build !386 && !arm

package frames

import (
	"errors"
	"fmt"
	"testing"
	"time"
	"unsafe"

	"github.com/ironsmile/vulkan-cookbook-go/recipes"
	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"
)

type fenceState int

const (
	fenceSignaled fenceState = iota
	fenceReset
	fencePending
)

// fakeDevice simulates a GPU which finishes a submission only once its fence
// is waited on. Handles are plain counters, maps are keyed by their value.
type fakeDevice struct {
	fences map[uintptr]fenceState
	// semaphores maps a semaphore to whether it has a pending signal.
	semaphores   map[uintptr]bool
	framebuffers map[uintptr][]uintptr
	cbFence      map[uintptr]uintptr

	createdFramebuffers   int
	destroyedFramebuffers int
	freedCommandBuffers   int

	inFlight    int
	maxInFlight int
	violations  []string

	imageCount uint32
	nextImage  uint32

	stuck      map[uintptr]bool
	acquireErr error
	presentErr error
}

func newFakeDevice(images uint32) *fakeDevice {
	return &fakeDevice{
		fences:       make(map[uintptr]fenceState),
		semaphores:   make(map[uintptr]bool),
		framebuffers: make(map[uintptr][]uintptr),
		cbFence:      make(map[uintptr]uintptr),
		stuck:        make(map[uintptr]bool),
		imageCount:   images,
	}
}

// Fake handles are distinct addresses well above the lowest legal pointer
// and far below the Go heap. Nothing dereferences them.
var lastHandle uintptr = 1 << 20

func handle() unsafe.Pointer {
	lastHandle += 8
	return unsafe.Pointer(lastHandle)
}

func fenceID(f vk.Fence) uintptr                  { return uintptr(unsafe.Pointer(f)) }
func semaphoreID(s vk.Semaphore) uintptr          { return uintptr(unsafe.Pointer(s)) }
func commandBufferID(cb vk.CommandBuffer) uintptr { return uintptr(unsafe.Pointer(cb)) }
func framebufferID(fb vk.Framebuffer) uintptr     { return uintptr(unsafe.Pointer(fb)) }
func viewID(v vk.ImageView) uintptr               { return uintptr(unsafe.Pointer(v)) }

func (d *fakeDevice) violation(format string, args ...any) {
	d.violations = append(d.violations, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) CreateSemaphore() (vk.Semaphore, error) {
	s := vk.Semaphore(handle())
	d.semaphores[semaphoreID(s)] = false
	return s, nil
}

func (d *fakeDevice) DestroySemaphore(s vk.Semaphore) {
	delete(d.semaphores, semaphoreID(s))
}

func (d *fakeDevice) CreateFence(signaled bool) (vk.Fence, error) {
	f := vk.Fence(handle())
	d.fences[fenceID(f)] = fenceReset
	if signaled {
		d.fences[fenceID(f)] = fenceSignaled
	}
	return f, nil
}

func (d *fakeDevice) DestroyFence(f vk.Fence) {
	if d.fences[fenceID(f)] == fencePending {
		d.violation("destroying pending fence")
	}
	delete(d.fences, fenceID(f))
}

func (d *fakeDevice) AllocateCommandBuffers(
	_ vk.CommandPool,
	count int,
) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	for i := range buffers {
		buffers[i] = vk.CommandBuffer(handle())
	}
	return buffers, nil
}

func (d *fakeDevice) FreeCommandBuffers(_ vk.CommandPool, buffers ...vk.CommandBuffer) {
	d.freedCommandBuffers += len(buffers)
}

func (d *fakeDevice) WaitForFence(f vk.Fence, _ time.Duration) error {
	id := fenceID(f)
	switch d.fences[id] {
	case fencePending:
		if d.stuck[id] {
			return recipes.ErrTimeout
		}
		d.fences[id] = fenceSignaled
		d.inFlight--
	case fenceReset:
		return recipes.ErrTimeout
	}
	return nil
}

func (d *fakeDevice) ResetFence(f vk.Fence) error {
	if d.fences[fenceID(f)] == fencePending {
		d.violation("resetting a pending fence")
	}
	d.fences[fenceID(f)] = fenceReset
	return nil
}

func (d *fakeDevice) AcquireNextImage(
	_ vk.Swapchain,
	_ time.Duration,
	signal vk.Semaphore,
) (uint32, error) {
	if d.acquireErr != nil {
		return 0, d.acquireErr
	}
	if d.semaphores[semaphoreID(signal)] {
		d.violation("acquiring into a semaphore with a pending signal")
	}
	d.semaphores[semaphoreID(signal)] = true

	idx := d.nextImage
	d.nextImage = (d.nextImage + 1) % d.imageCount
	return idx, nil
}

func (d *fakeDevice) CreateFramebuffer(
	_ vk.RenderPass,
	_ vk.Extent2D,
	attachments ...vk.ImageView,
) (vk.Framebuffer, error) {
	fb := vk.Framebuffer(handle())
	views := make([]uintptr, 0, len(attachments))
	for _, view := range attachments {
		views = append(views, viewID(view))
	}
	d.framebuffers[framebufferID(fb)] = views
	d.createdFramebuffers++
	return fb, nil
}

func (d *fakeDevice) DestroyFramebuffer(fb vk.Framebuffer) {
	if _, ok := d.framebuffers[framebufferID(fb)]; !ok {
		d.violation("destroying unknown framebuffer")
	}
	delete(d.framebuffers, framebufferID(fb))
	d.destroyedFramebuffers++
}

func (d *fakeDevice) checkIdle(cb vk.CommandBuffer, op string) {
	f, ok := d.cbFence[commandBufferID(cb)]
	if ok && d.fences[f] == fencePending {
		d.violation("%s on a command buffer still in flight", op)
	}
}

func (d *fakeDevice) BeginCommandBuffer(cb vk.CommandBuffer) error {
	d.checkIdle(cb, "begin")
	return nil
}

func (d *fakeDevice) EndCommandBuffer(vk.CommandBuffer) error { return nil }

func (d *fakeDevice) ResetCommandBuffer(cb vk.CommandBuffer) error {
	d.checkIdle(cb, "reset")
	return nil
}

func (d *fakeDevice) Submit(_ vk.Queue, cfg recipes.SubmitConfig) error {
	fence := fenceID(cfg.Fence)
	if d.fences[fence] != fenceReset {
		d.violation("submitting with a fence which was not reset")
	}
	for _, s := range cfg.WaitSemaphores {
		if !d.semaphores[semaphoreID(s)] {
			d.violation("waiting on a semaphore nothing will signal")
		}
		d.semaphores[semaphoreID(s)] = false
	}
	for _, s := range cfg.SignalSemaphores {
		if d.semaphores[semaphoreID(s)] {
			d.violation("signaling a semaphore twice")
		}
		d.semaphores[semaphoreID(s)] = true
	}
	for _, cb := range cfg.CommandBuffers {
		d.checkIdle(cb, "submit")
		d.cbFence[commandBufferID(cb)] = fence
	}
	d.fences[fence] = fencePending
	d.inFlight++
	if d.inFlight > d.maxInFlight {
		d.maxInFlight = d.inFlight
	}
	return nil
}

func (d *fakeDevice) Present(_ vk.Queue, _ vk.Swapchain, _ uint32, wait vk.Semaphore) error {
	if !d.semaphores[semaphoreID(wait)] {
		d.violation("presenting with a semaphore nothing will signal")
	}
	d.semaphores[semaphoreID(wait)] = false
	return d.presentErr
}

// pendingSignals counts semaphores which were signaled but never waited on.
func (d *fakeDevice) pendingSignals() int {
	var n int
	for _, signaled := range d.semaphores {
		if signaled {
			n++
		}
	}
	return n
}

func testTarget(images int) Target {
	views := make([]vk.ImageView, images)
	for i := range views {
		views[i] = vk.ImageView(handle())
	}
	return Target{
		Swapchain: vk.Swapchain(handle()),
		Views:     views,
		Extent:    vk.Extent2D{Width: 640, Height: 480},
	}
}

func noop(Frame) error { return nil }

func TestRotatorKeepsSlotsApart(t *testing.T) {
	g := NewWithT(t)

	const (
		slots  = 3
		frames = 20
	)

	dev := newFakeDevice(4)
	r, err := New(dev, nil, slots)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(r.Len()).To(Equal(slots))

	target := testTarget(4)

	var seen []int
	record := func(f Frame) error {
		seen = append(seen, f.Slot)
		g.Expect(f.Number).To(Equal(uint64(len(seen) - 1)))
		g.Expect(f.Framebuffer != vk.NullFramebuffer).To(BeTrue())
		g.Expect(f.Extent).To(Equal(target.Extent))
		return nil
	}

	for i := 0; i < frames; i++ {
		g.Expect(r.Render(target, record)).To(Succeed())
	}

	g.Expect(dev.violations).To(BeEmpty())
	g.Expect(dev.fences).To(HaveLen(slots))
	g.Expect(dev.maxInFlight).To(Equal(slots))
	g.Expect(dev.pendingSignals()).To(BeZero())
	g.Expect(r.Frame()).To(Equal(uint64(frames)))
	g.Expect(seen[:6]).To(Equal([]int{0, 1, 2, 0, 1, 2}))

	for _, slot := range r.Slots() {
		g.Expect(slot.Submissions).To(BeNumerically(">=", frames/slots))
	}

	g.Expect(dev.createdFramebuffers).To(Equal(frames))
	g.Expect(dev.destroyedFramebuffers).To(Equal(frames - slots))

	g.Expect(r.Destroy()).To(Succeed())
	g.Expect(dev.violations).To(BeEmpty())
	g.Expect(dev.framebuffers).To(BeEmpty())
	g.Expect(dev.semaphores).To(BeEmpty())
	g.Expect(dev.fences).To(BeEmpty())
	g.Expect(dev.freedCommandBuffers).To(Equal(slots))
}

func TestRotatorSingleSlot(t *testing.T) {
	g := NewWithT(t)

	dev := newFakeDevice(2)
	r, err := New(dev, nil, 1)
	g.Expect(err).NotTo(HaveOccurred())

	target := testTarget(2)
	for i := 0; i < 5; i++ {
		g.Expect(r.Render(target, noop)).To(Succeed())
	}

	g.Expect(dev.violations).To(BeEmpty())
	g.Expect(dev.maxInFlight).To(Equal(1))
}

func TestRotatorNeedsSlots(t *testing.T) {
	g := NewWithT(t)

	_, err := New(newFakeDevice(1), nil, 0)
	g.Expect(err).To(HaveOccurred())
}

func TestRotatorAcquireOutOfDate(t *testing.T) {
	g := NewWithT(t)

	dev := newFakeDevice(3)
	r, err := New(dev, nil, 2)
	g.Expect(err).NotTo(HaveOccurred())
	target := testTarget(3)

	dev.acquireErr = recipes.ErrOutOfDate
	err = r.Render(target, noop)
	g.Expect(err).To(MatchError(ErrSwapchainOutOfDate))
	g.Expect(dev.inFlight).To(BeZero())
	g.Expect(r.Frame()).To(BeZero())

	// The slot fence was left signaled so rendering resumes normally.
	dev.acquireErr = nil
	g.Expect(r.Render(target, noop)).To(Succeed())
	g.Expect(r.Render(target, noop)).To(Succeed())
	g.Expect(r.Render(target, noop)).To(Succeed())
	g.Expect(dev.violations).To(BeEmpty())
}

func TestRotatorPresentSuboptimal(t *testing.T) {
	g := NewWithT(t)

	dev := newFakeDevice(3)
	r, err := New(dev, nil, 2)
	g.Expect(err).NotTo(HaveOccurred())
	target := testTarget(3)

	dev.presentErr = recipes.ErrOutOfDate
	g.Expect(r.Render(target, noop)).To(MatchError(ErrSwapchainOutOfDate))

	// The work was submitted anyway.
	g.Expect(r.Frame()).To(Equal(uint64(1)))
	g.Expect(r.Slots()[0].Submissions).To(Equal(uint64(1)))

	dev.presentErr = nil
	g.Expect(r.WaitIdle()).To(Succeed())
	r.ReleaseFramebuffers()
	g.Expect(dev.framebuffers).To(BeEmpty())

	g.Expect(r.Render(testTarget(3), noop)).To(Succeed())
	g.Expect(dev.violations).To(BeEmpty())
}

func TestRotatorFenceTimeout(t *testing.T) {
	g := NewWithT(t)

	dev := newFakeDevice(3)
	r, err := New(dev, nil, 1)
	g.Expect(err).NotTo(HaveOccurred())
	target := testTarget(3)

	g.Expect(r.Render(target, noop)).To(Succeed())

	dev.stuck[fenceID(r.Slots()[0].DrawingFinished)] = true
	g.Expect(r.Render(target, noop)).To(MatchError(ErrFenceTimeout))
	g.Expect(r.Destroy()).To(MatchError(ErrFenceTimeout))
}

func TestRotatorRecordError(t *testing.T) {
	g := NewWithT(t)

	dev := newFakeDevice(3)
	r, err := New(dev, nil, 2)
	g.Expect(err).NotTo(HaveOccurred())
	target := testTarget(3)

	failure := errors.New("no pipeline")
	err = r.Render(target, func(Frame) error { return failure })
	g.Expect(err).To(MatchError(failure))
	g.Expect(r.Frame()).To(BeZero())
	g.Expect(r.Slots()[0].Submissions).To(BeZero())

	// The acquired image's semaphore was consumed by an empty batch which
	// the slot fence tracks.
	g.Expect(dev.pendingSignals()).To(BeZero())
	fence := fenceID(r.Slots()[0].DrawingFinished)
	g.Expect(dev.fences[fence]).To(Equal(fencePending))

	for i := 0; i < 4; i++ {
		g.Expect(r.Render(target, noop)).To(Succeed())
	}
	g.Expect(dev.violations).To(BeEmpty())
	g.Expect(r.Frame()).To(Equal(uint64(4)))
	g.Expect(r.Destroy()).To(Succeed())
	g.Expect(dev.violations).To(BeEmpty())
}

func TestRotatorBadImageIndex(t *testing.T) {
	g := NewWithT(t)

	dev := newFakeDevice(3)
	r, err := New(dev, nil, 1)
	g.Expect(err).NotTo(HaveOccurred())

	// The swapchain reports more images than the target knows about.
	short := testTarget(3)
	short.Views = short.Views[:1]
	g.Expect(r.Render(short, noop)).To(Succeed())
	g.Expect(r.Render(short, noop)).To(MatchError(ContainSubstring("acquired image 1")))
	g.Expect(dev.pendingSignals()).To(BeZero())

	g.Expect(r.Render(testTarget(3), noop)).To(Succeed())
	g.Expect(dev.violations).To(BeEmpty())
}

func TestRotatorDepthViews(t *testing.T) {
	g := NewWithT(t)

	dev := newFakeDevice(3)
	r, err := New(dev, nil, 2)
	g.Expect(err).NotTo(HaveOccurred())

	target := testTarget(3)
	target.DepthViews = []vk.ImageView{vk.ImageView(handle())}
	g.Expect(r.Render(target, noop)).To(MatchError(ContainSubstring("depth views")))

	target.DepthViews = append(target.DepthViews, vk.ImageView(handle()))

	var framebuffer vk.Framebuffer
	err = r.Render(target, func(f Frame) error {
		framebuffer = f.Framebuffer
		return nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(dev.framebuffers[framebufferID(framebuffer)]).To(Equal([]uintptr{
		viewID(target.Views[0]),
		viewID(target.DepthViews[0]),
	}))
	g.Expect(r.Slots()[0].DepthView == target.DepthViews[0]).To(BeTrue())
}
