package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithSource pre-populates the cache with a pose source, e.g. one generated in code.
//
// Parameters:
//   - key: the cache key
//   - src: the pose source
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithSource(key string, src *PoseSource) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = src
	}
}
