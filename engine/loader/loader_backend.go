package loader

import (
	"io"
)

// loaderBackend loads pose data from one model file format.
type loaderBackend interface {
	// Load imports the pose data of a model file.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *PoseSource: the extracted poses
	//   - error: error if loading fails
	Load(path string) (*PoseSource, error)

	// LoadReader imports the pose data of a model stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *PoseSource: the extracted poses
	//   - error: error if loading fails
	LoadReader(r io.Reader, isGLB bool) (*PoseSource, error)
}
