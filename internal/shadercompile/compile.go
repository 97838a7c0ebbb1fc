// Package shadercompile compiles WGSL compute shaders to the SPIR-V word
// stream gpucore.GPUAdapter.CreateShaderModule expects. Package filter's
// GPU dispatch is its only user in this module.
package shadercompile

import (
	"fmt"

	"github.com/gogpu/naga"
)

// ToSPIRV compiles wgslSource with naga and repacks the resulting bytes
// into little-endian 32-bit SPIR-V words.
func ToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("shadercompile: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("shadercompile: SPIR-V byte length %d not a multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
