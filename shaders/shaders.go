// Package shaders holds the GLSL sources of all samples. The samples load
// the compiled SPIR-V at run time from the assets directory, by default the
// repository root. Run `go generate ./shaders` to compile them.
package shaders

import (
	"embed"
	"io/fs"
	"path"
	"sort"
)

//go:generate glslc triangle.vert -o triangle.vert.spv
//go:generate glslc triangle.frag -o triangle.frag.spv
//go:generate glslc model.vert -o model.vert.spv
//go:generate glslc model.frag -o model.frag.spv
//go:generate glslc particles.comp -o particles.comp.spv
//go:generate glslc particles.vert -o particles.vert.spv
//go:generate glslc particles.frag -o particles.frag.spv

// Dir is the directory of the compiled shaders relative to the assets root.
const Dir = "shaders"

// Names of the shader sources.
const (
	TriangleVert  = "triangle.vert"
	TriangleFrag  = "triangle.frag"
	ModelVert     = "model.vert"
	ModelFrag     = "model.frag"
	ParticlesComp = "particles.comp"
	ParticlesVert = "particles.vert"
	ParticlesFrag = "particles.frag"
)

// Sources embeds the GLSL sources.
//
//go:embed *.vert *.frag *.comp
var Sources embed.FS

// SPIRV returns the path of the compiled source relative to the assets
// root.
func SPIRV(source string) string {
	return path.Join(Dir, source+".spv")
}

// List returns the names of all shader sources, sorted.
func List() ([]string, error) {
	entries, err := fs.ReadDir(Sources, ".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}
