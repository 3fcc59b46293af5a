package recipes

import (
	"testing"

	. "github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"
)

func TestFindMemoryTypeIndex(t *testing.T) {
	g := NewWithT(t)

	types := []vk.MemoryType{
		{PropertyFlags: DeviceLocal},
		{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)},
		{PropertyFlags: HostVisible},
		{PropertyFlags: HostVisible | DeviceLocal},
	}

	idx, err := findMemoryTypeIndex(types, 0xf, DeviceLocal)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(idx).To(Equal(uint32(0)))

	idx, err = findMemoryTypeIndex(types, 0xf, HostVisible)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(idx).To(Equal(uint32(2)))

	// The filter excludes index 2.
	idx, err = findMemoryTypeIndex(types, 0b1011, HostVisible)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(idx).To(Equal(uint32(3)))

	_, err = findMemoryTypeIndex(types, 0b0011, HostVisible)
	g.Expect(err).To(HaveOccurred())
}

func TestFormatHeap(t *testing.T) {
	g := NewWithT(t)

	g.Expect(formatHeap(0, 8<<30, vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit))).
		To(Equal("heap 0: 8GiB (device local)"))
	g.Expect(formatHeap(1, 256<<20, 0)).To(Equal("heap 1: 256MiB (host)"))
}

func TestDeviceTypeScore(t *testing.T) {
	g := NewWithT(t)

	g.Expect(deviceTypeScore(vk.PhysicalDeviceTypeDiscreteGpu)).
		To(BeNumerically(">", deviceTypeScore(vk.PhysicalDeviceTypeIntegratedGpu)))
	g.Expect(deviceTypeScore(vk.PhysicalDeviceTypeIntegratedGpu)).
		To(BeNumerically(">", deviceTypeScore(vk.PhysicalDeviceTypeVirtualGpu)))
	g.Expect(deviceTypeScore(vk.PhysicalDeviceTypeCpu)).To(Equal(uint32(1)))
	g.Expect(DeviceTypeName(vk.PhysicalDeviceTypeCpu)).To(Equal("CPU"))
}

func TestQueueFlagsString(t *testing.T) {
	g := NewWithT(t)

	flags := vk.QueueFlags(vk.QueueGraphicsBit) | vk.QueueFlags(vk.QueueTransferBit)
	g.Expect(QueueFlagsString(flags)).To(Equal("graphics|transfer"))
	g.Expect(QueueFlagsString(0)).To(Equal("none"))
}

func TestMissingIgnoresTerminators(t *testing.T) {
	g := NewWithT(t)

	available := []string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface"}
	g.Expect(Missing([]string{"VK_KHR_surface"}, available)).To(BeEmpty())
	g.Expect(Missing(
		[]string{"VK_KHR_xcb_surface\x00", ValidationLayer},
		available,
	)).To(Equal([]string{TrimString(ValidationLayer)}))
}

func TestSafeString(t *testing.T) {
	g := NewWithT(t)

	g.Expect(SafeString("main")).To(Equal("main\x00"))
	g.Expect(SafeString("main\x00")).To(Equal("main\x00"))
	g.Expect(SafeStrings([]string{"a", "b\x00"})).To(Equal([]string{"a\x00", "b\x00"}))
	g.Expect(TrimString("main\x00")).To(Equal("main"))
}

func TestTimeoutNanoseconds(t *testing.T) {
	g := NewWithT(t)

	g.Expect(timeoutNanoseconds(-1)).To(Equal(uint64(1<<64 - 1)))
	g.Expect(timeoutNanoseconds(2000)).To(Equal(uint64(2000)))
}
