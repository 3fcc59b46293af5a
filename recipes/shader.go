package recipes

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/ironsmile/vulkan-cookbook-go/unsafer"
	vk "github.com/vulkan-go/vulkan"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// ErrInvalidSPIRV is returned for byte code which cannot be a SPIR-V module.
var ErrInvalidSPIRV = errors.New("invalid SPIR-V byte code")

// ValidateSPIRV performs the cheap structural checks on code: non-empty,
// whole 32 bit words and a leading magic number.
func ValidateSPIRV(code []byte) error {
	if len(code) < 4 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidSPIRV, len(code))
	}
	if len(code)%4 != 0 {
		return fmt.Errorf("%w: size %d is not a multiple of 4", ErrInvalidSPIRV, len(code))
	}
	if binary.LittleEndian.Uint32(code) != spirvMagic {
		return fmt.Errorf("%w: bad magic number", ErrInvalidSPIRV)
	}
	return nil
}

// CreateShaderModule creates a shader module out of SPIR-V byte code.
func CreateShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	if err := ValidateSPIRV(code); err != nil {
		return nil, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    unsafer.BytesToUint32(code),
	}

	var shaderModule vk.ShaderModule
	res := vk.CreateShaderModule(device, &createInfo, nil, &shaderModule)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to create shader module: %w", err)
	}

	return shaderModule, nil
}

// LoadShaderModule reads SPIR-V byte code from path and creates a shader
// module out of it.
func LoadShaderModule(device vk.Device, path string) (vk.ShaderModule, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader bytecode: %w", err)
	}

	module, err := CreateShaderModule(device, code)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", path, err)
	}

	return module, nil
}

// ShaderStage describes the use of the "main" entry point of module at
// stage.
func ShaderStage(
	stage vk.ShaderStageFlagBits,
	module vk.ShaderModule,
) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: module,
		PName:  SafeString("main"),
	}
}
