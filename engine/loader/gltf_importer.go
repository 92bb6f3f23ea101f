package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter combines the parser and extractors into a PoseSource.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts its pose data.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *PoseSource: the extracted poses
	//   - error: error if parsing or extraction fails
	Import(path string) (*PoseSource, error)

	// ImportReader loads a glTF/GLB stream and extracts its pose data.
	//
	// Parameters:
	//   - r: the stream
	//   - isGLB: true for the binary container
	//
	// Returns:
	//   - *PoseSource: the extracted poses
	//   - error: error if parsing or extraction fails
	ImportReader(r io.Reader, isGLB bool) (*PoseSource, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*PoseSource, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader, isGLB bool) (*PoseSource, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(parser, "")
}

func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackPath string) (*PoseSource, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	mesh, err := newGLTFMeshExtractor(parser).ExtractMorphMesh()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	src := &PoseSource{
		Name:          gltfExtractModelName(doc, mesh.name, fallbackPath),
		BasePositions: mesh.positions,
		Colors:        mesh.colors,
		Indices:       mesh.indices,
		Poses:         mesh.poses,
	}

	anims := newGLTFAnimationExtractor(parser)
	if anims.Count() > 0 {
		duration, clip, err := anims.Duration(0)
		if err != nil {
			return nil, fmt.Errorf("animation extraction failed: %w", err)
		}
		src.Duration = duration
		src.Clip = clip
	}

	return src, nil
}

// gltfExtractModelName prefers the default scene name, then the mesh name, then the file name.
func gltfExtractModelName(doc *gltfDocument, meshName, fallbackPath string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if meshName != "" {
		return meshName
	}
	if fallbackPath != "" {
		return strings.TrimSuffix(filepath.Base(fallbackPath), filepath.Ext(fallbackPath))
	}
	return "unnamed_model"
}
