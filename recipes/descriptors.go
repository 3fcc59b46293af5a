package recipes

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// LayoutBinding returns a binding of a single descriptor visible to stages.
func LayoutBinding(
	binding uint32,
	descriptorType vk.DescriptorType,
	stages vk.ShaderStageFlagBits,
) vk.DescriptorSetLayoutBinding {
	return vk.DescriptorSetLayoutBinding{
		Binding:         binding,
		DescriptorType:  descriptorType,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(stages),
	}
}

// CreateDescriptorSetLayout creates a set layout out of bindings.
func CreateDescriptorSetLayout(
	device vk.Device,
	bindings ...vk.DescriptorSetLayoutBinding,
) (vk.DescriptorSetLayout, error) {
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var descriptorSetLayout vk.DescriptorSetLayout
	res := vk.CreateDescriptorSetLayout(device, &layoutInfo, nil, &descriptorSetLayout)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("creating descriptor set layout: %w", err)
	}

	return descriptorSetLayout, nil
}

// PoolSizes returns the pool sizes needed for allocating sets descriptor sets
// with the given bindings. Bindings of the same type are merged.
func PoolSizes(bindings []vk.DescriptorSetLayoutBinding, sets uint32) []vk.DescriptorPoolSize {
	var sizes []vk.DescriptorPoolSize

	for _, binding := range bindings {
		count := binding.DescriptorCount * sets
		merged := false
		for i := range sizes {
			if sizes[i].Type == binding.DescriptorType {
				sizes[i].DescriptorCount += count
				merged = true
				break
			}
		}
		if !merged {
			sizes = append(sizes, vk.DescriptorPoolSize{
				Type:            binding.DescriptorType,
				DescriptorCount: count,
			})
		}
	}

	return sizes
}

// CreateDescriptorPool creates a pool from which maxSets sets can be
// allocated.
func CreateDescriptorPool(
	device vk.Device,
	maxSets uint32,
	poolSizes []vk.DescriptorPoolSize,
) (vk.DescriptorPool, error) {
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       maxSets,
	}

	var descriptorPool vk.DescriptorPool
	res := vk.CreateDescriptorPool(device, &poolInfo, nil, &descriptorPool)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create descriptor pool: %w", err)
	}

	return descriptorPool, nil
}

// AllocateDescriptorSets allocates count sets with the same layout.
func AllocateDescriptorSets(
	device vk.Device,
	pool vk.DescriptorPool,
	layout vk.DescriptorSetLayout,
	count int,
) ([]vk.DescriptorSet, error) {
	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = layout
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}

	descriptorSets := make([]vk.DescriptorSet, count)
	res := vk.AllocateDescriptorSets(device, &allocInfo, &descriptorSets[0])
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to allocate descriptor set: %w", err)
	}

	return descriptorSets, nil
}

// UpdateBufferDescriptor points binding of set at the whole of buffer.
func UpdateBufferDescriptor(
	device vk.Device,
	set vk.DescriptorSet,
	binding uint32,
	descriptorType vk.DescriptorType,
	buffer vk.Buffer,
) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buffer,
		Offset: 0,
		Range:  vk.DeviceSize(vk.WholeSize),
	}

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorType:  descriptorType,
		DescriptorCount: 1,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}

	vk.UpdateDescriptorSets(device, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

// UpdateImageDescriptor points binding of set at a combined image sampler.
// The image is expected in the shader read only layout.
func UpdateImageDescriptor(
	device vk.Device,
	set vk.DescriptorSet,
	binding uint32,
	view vk.ImageView,
	sampler vk.Sampler,
) {
	imageInfo := vk.DescriptorImageInfo{
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		ImageView:   view,
		Sampler:     sampler,
	}

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
	}

	vk.UpdateDescriptorSets(device, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}
