package loader

import (
	"fmt"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor reads clip timing from a parsed document. Keyframe values are not
// needed: the morph targets are baked in order, so only the clip length matters.
type gltfAnimationExtractor interface {
	// Duration returns the length in seconds of an animation: the latest keyframe time across
	// all of its channels.
	//
	// Parameters:
	//   - animIndex: the animation to inspect
	//
	// Returns:
	//   - float32: the duration in seconds
	//   - string: the animation name
	//   - error: error if the index or its accessors are invalid
	Duration(animIndex int) (float32, string, error)

	// Count returns the number of animations in the document.
	Count() int
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

func (e *gltfAnimationExtractorImpl) Count() int {
	doc := e.parser.Document()
	if doc == nil {
		return 0
	}
	return len(doc.Animations)
}

func (e *gltfAnimationExtractorImpl) Duration(animIndex int) (float32, string, error) {
	doc := e.parser.Document()
	if doc == nil {
		return 0, "", fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return 0, "", fmt.Errorf("animation index %d out of range", animIndex)
	}

	anim := &doc.Animations[animIndex]
	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}

	var maxTime float32
	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return 0, name, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, i, ch.Sampler)
		}
		input := anim.Samplers[ch.Sampler].Input

		// Accessor max is required for sampler inputs, but fall back to reading the keys.
		if input >= 0 && input < len(doc.Accessors) && len(doc.Accessors[input].Max) == 1 {
			maxTime = max(maxTime, doc.Accessors[input].Max[0])
			continue
		}
		times, err := e.parser.ReadScalarAccessor(input)
		if err != nil {
			return 0, name, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}
		for _, t := range times {
			maxTime = max(maxTime, t)
		}
	}

	return maxTime, name, nil
}
