package recipes

import (
	"fmt"
	"log"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// DebugExtension is the instance extension needed by CreateDebugReportCallback.
const DebugExtension = vk.ExtDebugReportExtensionName

// CreateDebugReportCallback registers callback for validation layer errors
// and warnings. When callback is nil LogDebugReport is used.
func CreateDebugReportCallback(
	instance vk.Instance,
	callback vk.DebugReportCallbackFunc,
) (vk.DebugReportCallback, error) {
	if callback == nil {
		callback = LogDebugReport
	}

	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(
			vk.DebugReportErrorBit |
				vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit,
		),
		PfnCallback: callback,
	}

	var debugCallback vk.DebugReportCallback
	res := vk.CreateDebugReportCallback(instance, &createInfo, nil, &debugCallback)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create debug report callback: %w", err)
	}

	return debugCallback, nil
}

// LogDebugReport writes validation messages to the standard logger.
func LogDebugReport(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	pLayerPrefix string,
	pMessage string,
	pUserData unsafe.Pointer,
) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Printf("[ERROR %d] %s on layer %s", messageCode, pMessage, pLayerPrefix)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		log.Printf("[WARN %d] %s on layer %s", messageCode, pMessage, pLayerPrefix)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		log.Printf("[PERF %d] %s on layer %s", messageCode, pMessage, pLayerPrefix)
	default:
		log.Printf("[INFO %d] %s on layer %s", messageCode, pMessage, pLayerPrefix)
	}
	return vk.Bool32(vk.False)
}
