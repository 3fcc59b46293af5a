// Package models bundles the OBJ models used by the samples so that a sample
// binary can be copied to another machine on its own.
package models

import (
	"embed"
	"fmt"

	"github.com/ironsmile/vulkan-cookbook-go/mesh"
)

// Cube is the name of a unit cube with normals and texture coordinates. Its
// sides and caps use different materials.
const Cube = "cube.obj"

// FS contains all the models used throughout the samples.
//
//go:embed *.obj
var FS embed.FS

// Load decodes the embedded model name.
func Load(name string, opts mesh.LoadOptions) (*mesh.Mesh, error) {
	fh, err := FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening model: %w", err)
	}
	defer fh.Close()

	m, err := mesh.Load(fh, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	return m, nil
}
