package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

var (
	// ErrNoMesh is returned when a document has no mesh primitive with positions.
	ErrNoMesh = errors.New("loader: document has no mesh")

	// ErrNoMorphTargets is returned when the mesh carries no POSITION morph targets to bake.
	ErrNoMorphTargets = errors.New("loader: mesh has no position morph targets")
)

// gltfMorphMesh is the first morph-animated primitive of a document.
type gltfMorphMesh struct {
	name      string
	positions []common.Vec3
	colors    []common.Vec3
	indices   []uint32
	poses     []presentation.PoseFrame
}

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor pulls the entity mesh and its morph target poses out of a parsed document.
type gltfMeshExtractor interface {
	// ExtractMorphMesh finds the first mesh reachable from the default scene (falling back to
	// the first mesh in the document) and reads its base positions, vertex colours, triangle
	// indices and POSITION morph targets.
	//
	// Returns:
	//   - *gltfMorphMesh: the mesh
	//   - error: ErrNoMesh or ErrNoMorphTargets when the document has nothing to bake
	ExtractMorphMesh() (*gltfMorphMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMorphMesh() (*gltfMorphMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	meshIndex, ok := e.findMesh(doc)
	if !ok {
		return nil, ErrNoMesh
	}
	mesh := &doc.Meshes[meshIndex]

	for primIdx := range mesh.Primitives {
		prim := &mesh.Primitives[primIdx]
		if _, ok := prim.Attributes["POSITION"]; !ok {
			continue
		}
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			return nil, fmt.Errorf("mesh %d primitive %d: unsupported primitive mode %d", meshIndex, primIdx, *prim.Mode)
		}
		out, err := e.extractPrimitive(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		out.name = mesh.Name
		return out, nil
	}
	return nil, ErrNoMesh
}

// findMesh walks the default scene depth-first for the first node with a mesh.
func (e *gltfMeshExtractorImpl) findMesh(doc *gltfDocument) (int, bool) {
	if len(doc.Meshes) == 0 {
		return 0, false
	}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	}

	seen := make(map[int]bool)
	var walk func(n int) (int, bool)
	walk = func(n int) (int, bool) {
		if n < 0 || n >= len(doc.Nodes) || seen[n] {
			return 0, false
		}
		seen[n] = true
		node := &doc.Nodes[n]
		if node.Mesh != nil && *node.Mesh >= 0 && *node.Mesh < len(doc.Meshes) {
			return *node.Mesh, true
		}
		for _, c := range node.Children {
			if m, ok := walk(c); ok {
				return m, true
			}
		}
		return 0, false
	}
	for _, r := range roots {
		if m, ok := walk(r); ok {
			return m, true
		}
	}
	return 0, true
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive) (*gltfMorphMesh, error) {
	positions, err := e.parser.ReadVec3Accessor(prim.Attributes["POSITION"])
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	vertexCount := len(positions)

	out := &gltfMorphMesh{
		positions: positions,
		colors:    make([]common.Vec3, vertexCount),
	}

	// Vertex colours default to white. COLOR_0 may be VEC3 or VEC4; alpha is dropped.
	for i := range out.colors {
		out.colors[i] = common.Vec3{1, 1, 1}
	}
	if colorAcc, ok := prim.Attributes["COLOR_0"]; ok {
		flat, comps, err := e.parser.ReadFloats(colorAcc)
		if err != nil {
			return nil, fmt.Errorf("failed to read colors: %w", err)
		}
		if comps < 3 || len(flat)/comps != vertexCount {
			return nil, fmt.Errorf("COLOR_0 has %d elements of %d components, want %d vertices", len(flat)/max(comps, 1), comps, vertexCount)
		}
		for i := range out.colors {
			out.colors[i] = common.Vec3{flat[i*comps], flat[i*comps+1], flat[i*comps+2]}
		}
	}

	if prim.Indices != nil {
		out.indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		out.indices = make([]uint32, vertexCount)
		for i := range out.indices {
			out.indices[i] = uint32(i)
		}
	}

	for t, target := range prim.Targets {
		acc, ok := target["POSITION"]
		if !ok {
			continue
		}
		deltas, err := e.parser.ReadVec3Accessor(acc)
		if err != nil {
			return nil, fmt.Errorf("morph target %d: %w", t, err)
		}
		if len(deltas) != vertexCount {
			return nil, fmt.Errorf("morph target %d has %d vertices, want %d", t, len(deltas), vertexCount)
		}
		out.poses = append(out.poses, presentation.PoseFrame(deltas))
	}
	if len(out.poses) == 0 {
		return nil, ErrNoMorphTargets
	}

	return out, nil
}
