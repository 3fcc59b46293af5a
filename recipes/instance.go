package recipes

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ValidationLayer is the layer enabled by the samples when run with -debug.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// InstanceConfig describes the Vulkan instance an application needs.
type InstanceConfig struct {
	ApplicationName string
	EngineName      string

	// Extensions is the list of required instance extensions. Usually the
	// ones needed for presenting to a window plus debug report.
	Extensions []string

	// Layers is the list of layers to enable. All of them must be available.
	Layers []string

	APIVersion uint32
}

// AvailableInstanceExtensions returns the names of all the instance
// extensions supported by the Vulkan loader.
func AvailableInstanceExtensions() ([]string, error) {
	var count uint32
	res := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("getting the number of instance extensions: %w", err)
	}

	properties := make([]vk.ExtensionProperties, count)
	res = vk.EnumerateInstanceExtensionProperties("", &count, properties)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("enumerating instance extensions: %w", err)
	}

	names := make([]string, 0, count)
	for _, extension := range properties {
		extension.Deref()
		names = append(names, vk.ToString(extension.ExtensionName[:]))
	}

	return names, nil
}

// AvailableLayers returns the names of all instance layers which are
// installed on the system.
func AvailableLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, fmt.Errorf("getting the number of instance layers: %w", err)
	}

	layers := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, fmt.Errorf("enumerating instance layers: %w", err)
	}

	names := make([]string, 0, count)
	for _, layer := range layers {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}

	return names, nil
}

// CheckValidationSupport returns true when all of the required layers are
// available.
func CheckValidationSupport(required []string) bool {
	available, err := AvailableLayers()
	if err != nil {
		return false
	}

	return len(Missing(required, available)) == 0
}

// Missing returns the elements of required which are not present in
// available. Comparison ignores NUL terminators.
func Missing(required []string, available []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, name := range available {
		have[TrimString(name)] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := have[TrimString(name)]; !ok {
			missing = append(missing, TrimString(name))
		}
	}

	return missing
}

// CreateInstance creates a Vulkan instance. vk.Init must have been called
// before.
func CreateInstance(cfg InstanceConfig) (vk.Instance, error) {
	if len(cfg.Layers) > 0 && !CheckValidationSupport(cfg.Layers) {
		return nil, fmt.Errorf("requested layers %v are not available", cfg.Layers)
	}

	available, err := AvailableInstanceExtensions()
	if err != nil {
		return nil, err
	}
	if missing := Missing(cfg.Extensions, available); len(missing) > 0 {
		return nil, fmt.Errorf("instance extensions not supported: %v", missing)
	}

	apiVersion := cfg.APIVersion
	if apiVersion == 0 {
		apiVersion = vk.ApiVersion10
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   SafeString(cfg.ApplicationName),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        SafeString(cfg.EngineName),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         apiVersion,
	}

	extensions := SafeStrings(cfg.Extensions)
	layers := SafeStrings(cfg.Layers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return nil, fmt.Errorf("failed to create Vulkan instance: %w", err)
	}

	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("loading instance functions: %w", err)
	}

	return instance, nil
}
