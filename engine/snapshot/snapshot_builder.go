package snapshot

// SnapshotterBuilderOption is a functional option for configuring a Snapshotter during construction.
type SnapshotterBuilderOption func(*snapshotter)

// WithSize sets the image size in pixels.
//
// Parameters:
//   - width: the image width
//   - height: the image height
//
// Returns:
//   - SnapshotterBuilderOption: option function to apply
func WithSize(width, height int) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.width = width
		s.height = height
	}
}

// WithBounds sets the world-space edge length mapped onto the image.
//
// Parameters:
//   - bounds: the visible world extent
//
// Returns:
//   - SnapshotterBuilderOption: option function to apply
func WithBounds(bounds float32) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.bounds = bounds
	}
}

// WithBackground sets the clear colour as a hex string such as "#FFFFCC".
//
// Parameters:
//   - hex: the background colour
//
// Returns:
//   - SnapshotterBuilderOption: option function to apply
func WithBackground(hex string) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.backgroundHex = hex
	}
}

// WithDir sets the directory Consume writes frames to.
func WithDir(dir string) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.dir = dir
	}
}

// WithEvery makes Consume write one frame out of every n. Values below 1 write every frame.
func WithEvery(n int) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.every = max(n, 1)
	}
}

// WithGlyphLength sets the arrow length in pixels of an entity at scale 1.
func WithGlyphLength(px float64) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.glyph = px
	}
}
