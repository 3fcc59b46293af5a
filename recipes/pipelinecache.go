package recipes

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/sync/errgroup"
)

// CreatePipelineCache creates a pipeline cache primed with initialData, which
// may be empty.
func CreatePipelineCache(device vk.Device, initialData []byte) (vk.PipelineCache, error) {
	pipelineCacheInfo := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}
	if len(initialData) > 0 {
		pipelineCacheInfo.InitialDataSize = uint(len(initialData))
		pipelineCacheInfo.PInitialData = unsafe.Pointer(&initialData[0])
	}

	var cache vk.PipelineCache
	res := vk.CreatePipelineCache(device, &pipelineCacheInfo, nil, &cache)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create pipeline cache: %w", err)
	}

	return cache, nil
}

// PipelineCacheData returns the serialized contents of cache.
func PipelineCacheData(device vk.Device, cache vk.PipelineCache) ([]byte, error) {
	var dataSize uint
	res := vk.GetPipelineCacheData(device, cache, &dataSize, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("getting pipeline cache size: %w", err)
	}

	if dataSize == 0 {
		return nil, nil
	}

	data := make([]byte, dataSize)
	res = vk.GetPipelineCacheData(device, cache, &dataSize, unsafe.Pointer(&data[0]))
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("getting pipeline cache data: %w", err)
	}

	return data[:dataSize], nil
}

// MergePipelineCaches merges the contents of sources into dst.
func MergePipelineCaches(
	device vk.Device,
	dst vk.PipelineCache,
	sources ...vk.PipelineCache,
) error {
	if len(sources) == 0 {
		return nil
	}

	res := vk.MergePipelineCaches(device, dst, uint32(len(sources)), sources)
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("failed to merge pipeline caches: %w", err)
	}

	return nil
}

// CreatePipelinesConcurrently creates one graphics pipeline per config, each
// on its own goroutine with its own pipeline cache. Once all are done the
// per-goroutine caches are merged into dst and destroyed. The returned slice
// is in the order of configs.
func CreatePipelinesConcurrently(
	device vk.Device,
	dst vk.PipelineCache,
	configs []GraphicsPipelineConfig,
) ([]vk.Pipeline, error) {
	pipelines := make([]vk.Pipeline, len(configs))
	caches := make([]vk.PipelineCache, len(configs))

	var g errgroup.Group
	for i := range configs {
		i := i
		g.Go(func() error {
			cache, err := CreatePipelineCache(device, nil)
			if err != nil {
				return fmt.Errorf("pipeline %d: %w", i, err)
			}
			caches[i] = cache

			created, err := CreateGraphicsPipelines(device, cache, configs[i])
			if err != nil {
				return fmt.Errorf("pipeline %d: %w", i, err)
			}
			pipelines[i] = created[0]

			return nil
		})
	}

	err := g.Wait()

	var created []vk.PipelineCache
	for _, cache := range caches {
		if cache != vk.PipelineCache(vk.NullHandle) {
			created = append(created, cache)
		}
	}
	defer func() {
		for _, cache := range created {
			vk.DestroyPipelineCache(device, cache, nil)
		}
	}()

	if err == nil && dst != vk.PipelineCache(vk.NullHandle) {
		err = MergePipelineCaches(device, dst, created...)
	}

	if err != nil {
		for _, pipeline := range pipelines {
			if pipeline != vk.NullPipeline {
				vk.DestroyPipeline(device, pipeline, nil)
			}
		}
		return nil, err
	}

	return pipelines, nil
}

// SavePipelineCache writes the contents of cache to path.
func SavePipelineCache(device vk.Device, cache vk.PipelineCache, path string) error {
	data, err := PipelineCacheData(device, cache)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing pipeline cache: %w", err)
	}

	return nil
}

// LoadPipelineCacheFile reads a pipeline cache previously written by
// SavePipelineCache. A missing file is not an error; nil data is returned so
// that an empty cache gets created.
func LoadPipelineCacheFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading pipeline cache: %w", err)
	}

	return data, nil
}

// PipelineCacheHeader is the version one header every pipeline cache blob
// starts with.
type PipelineCacheHeader struct {
	Length   uint32
	Version  uint32
	VendorID uint32
	DeviceID uint32
	UUID     [vk.UuidSize]byte
}

const pipelineCacheHeaderSize = 16 + vk.UuidSize

// ErrBadPipelineCache is returned for data which does not start with a valid
// pipeline cache header.
var ErrBadPipelineCache = errors.New("bad pipeline cache header")

// ParsePipelineCacheHeader decodes the header of a serialized pipeline cache.
func ParsePipelineCacheHeader(data []byte) (PipelineCacheHeader, error) {
	var header PipelineCacheHeader

	if len(data) < pipelineCacheHeaderSize {
		return header, fmt.Errorf("%w: only %d bytes", ErrBadPipelineCache, len(data))
	}

	header.Length = binary.LittleEndian.Uint32(data[0:])
	header.Version = binary.LittleEndian.Uint32(data[4:])
	header.VendorID = binary.LittleEndian.Uint32(data[8:])
	header.DeviceID = binary.LittleEndian.Uint32(data[12:])
	copy(header.UUID[:], data[16:pipelineCacheHeaderSize])

	if header.Length < pipelineCacheHeaderSize {
		return header, fmt.Errorf("%w: header length %d", ErrBadPipelineCache, header.Length)
	}
	if header.Version != uint32(vk.PipelineCacheHeaderVersionOne) {
		return header, fmt.Errorf("%w: version %d", ErrBadPipelineCache, header.Version)
	}

	return header, nil
}

// Matches tells whether a cache with this header was produced by a device
// with the given properties.
func (h PipelineCacheHeader) Matches(props vk.PhysicalDeviceProperties) bool {
	return h.VendorID == props.VendorID &&
		h.DeviceID == props.DeviceID &&
		h.UUID == props.PipelineCacheUUID
}
