// package snapshot renders render commands to PNG images on the CPU with gg, for runs without a
// GPU or a display.
package snapshot

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/displacement"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

const (
	// DefaultSize is the default image edge length in pixels.
	DefaultSize = 800

	// DefaultBounds is the default world extent mapped onto the image.
	DefaultBounds float32 = 800

	// DefaultGlyphLength is the arrow length in pixels of an entity at scale 1.
	DefaultGlyphLength = 40.0

	// minGlyph keeps tiny entities visible.
	minGlyph = 3.0
)

// ErrInvalidSnapshotter is returned by NewSnapshotter for unusable options.
var ErrInvalidSnapshotter = errors.New("snapshot: invalid snapshotter")

// Snapshotter draws render commands as PNG images.
type Snapshotter interface {
	// Render draws a render command from above: world X to the right, world Z downwards.
	//
	// Parameters:
	//   - cmd: the render command
	//
	// Returns:
	//   - image.Image: the rendered image
	Render(cmd presentation.RenderCommand) image.Image

	// Save renders a command and writes it as a PNG file.
	//
	// Parameters:
	//   - path: the output file
	//   - cmd: the render command
	//
	// Returns:
	//   - error: an error if the file could not be written
	Save(path string, cmd presentation.RenderCommand) error

	// Consume saves every Nth command to the configured directory as frame-NNNNNN.png.
	Consume(cmd presentation.RenderCommand) error

	// RenderEffect draws the displaced, shaded faces of a displacement effect from the front,
	// fitted to the image.
	//
	// Parameters:
	//   - effect: the displacement effect
	//   - t: the effect time in seconds
	//
	// Returns:
	//   - image.Image: the rendered image
	RenderEffect(effect *displacement.Effect, t float32) image.Image

	// SaveEffect renders a displacement effect and writes it as a PNG file.
	SaveEffect(path string, effect *displacement.Effect, t float32) error

	// Written returns the number of frames Consume has written.
	Written() int
}

// snapshotter is the implementation of the Snapshotter interface.
type snapshotter struct {
	mu *sync.Mutex

	width, height int
	bounds        float32
	glyph         float64
	backgroundHex string
	background    gg.RGBA
	ink           gg.RGBA

	dir      string
	every    int
	received uint64
	written  int
	dirReady bool
}

var _ Snapshotter = &snapshotter{}

// NewSnapshotter creates a Snapshotter.
//
// Parameters:
//   - options: variadic list of SnapshotterBuilderOption functions
//
// Returns:
//   - Snapshotter: the snapshotter
//   - error: ErrInvalidSnapshotter for a bad size, bounds or background
func NewSnapshotter(options ...SnapshotterBuilderOption) (Snapshotter, error) {
	s := &snapshotter{
		mu:            &sync.Mutex{},
		width:         DefaultSize,
		height:        DefaultSize,
		bounds:        DefaultBounds,
		glyph:         DefaultGlyphLength,
		backgroundHex: "#FFFFFF",
		dir:           ".",
		every:         1,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidSnapshotter, s.width, s.height)
	}
	if s.bounds <= 0 {
		return nil, fmt.Errorf("%w: bounds %v", ErrInvalidSnapshotter, s.bounds)
	}
	bg, err := colorful.Hex(s.backgroundHex)
	if err != nil {
		return nil, fmt.Errorf("%w: background %q: %w", ErrInvalidSnapshotter, s.backgroundHex, err)
	}
	s.background = gg.RGB(bg.R, bg.G, bg.B)

	// Dark ink on light backgrounds, light ink on dark ones.
	_, _, l := bg.Hsl()
	if l > 0.5 {
		s.ink = gg.RGB(0.2, 0.2, 0.2)
	} else {
		s.ink = gg.RGB(0.9, 0.9, 0.9)
	}
	return s, nil
}

func (s *snapshotter) Render(cmd presentation.RenderCommand) image.Image {
	dc := s.draw(cmd)
	defer dc.Close()
	_ = dc.FlushGPU()
	return dc.Image()
}

func (s *snapshotter) Save(path string, cmd presentation.RenderCommand) error {
	dc := s.draw(cmd)
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", path, err)
	}
	return nil
}

func (s *snapshotter) Consume(cmd presentation.RenderCommand) error {
	s.mu.Lock()
	n := s.received
	s.received++
	if n%uint64(s.every) != 0 {
		s.mu.Unlock()
		return nil
	}
	if !s.dirReady {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
		s.dirReady = true
	}
	path := filepath.Join(s.dir, fmt.Sprintf("frame-%06d.png", n))
	s.mu.Unlock()

	if err := s.Save(path, cmd); err != nil {
		return err
	}

	s.mu.Lock()
	s.written++
	s.mu.Unlock()
	common.Logger().Debug("snapshot written", "path", path, "instances", len(cmd.Instances))
	return nil
}

func (s *snapshotter) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// draw paints every instance as an arrow pointing along its heading. The heading is the first
// rotation column, which follows the entity velocity.
func (s *snapshotter) draw(cmd presentation.RenderCommand) *gg.Context {
	dc := gg.NewContext(s.width, s.height)
	dc.ClearWithColor(s.background)
	dc.SetColor(s.ink.Color())

	for _, inst := range cmd.Instances {
		x, y := s.project(inst.Position)
		hx, hy := float64(inst.Rotation[0]), float64(inst.Rotation[2])
		if hx == 0 && hy == 0 {
			hx = 1
		}
		length := max(s.glyph*float64(inst.Scale), minGlyph)
		half := length / 2
		wing := length / 3

		dc.MoveTo(x+hx*half, y+hy*half)
		dc.LineTo(x-hx*half-hy*wing, y-hy*half+hx*wing)
		dc.LineTo(x-hx*half+hy*wing, y-hy*half-hx*wing)
		dc.ClosePath()
		_ = dc.Fill()
	}
	return dc
}

// project maps a world position onto the image: [-bounds/2, bounds/2] on X and Z fills the
// width and height.
func (s *snapshotter) project(p common.Vec3) (float64, float64) {
	x := (p[0]/s.bounds + 0.5) * float32(s.width)
	y := (p[2]/s.bounds + 0.5) * float32(s.height)
	return float64(x), float64(y)
}

func (s *snapshotter) RenderEffect(effect *displacement.Effect, t float32) image.Image {
	dc := s.drawEffect(effect, t)
	defer dc.Close()
	_ = dc.FlushGPU()
	return dc.Image()
}

func (s *snapshotter) SaveEffect(path string, effect *displacement.Effect, t float32) error {
	dc := s.drawEffect(effect, t)
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save effect %s: %w", path, err)
	}
	return nil
}

// drawEffect fits the displaced mesh to the image and paints its faces back to front.
func (s *snapshotter) drawEffect(effect *displacement.Effect, t float32) *gg.Context {
	positions := effect.Displace(t)
	faces := len(positions) / 3

	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := -minX, -minY
	for _, p := range positions {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minY, maxY = min(minY, p[1]), max(maxY, p[1])
	}
	span := max(maxX-minX, maxY-minY, 1e-6)
	scale := 0.9 * float32(min(s.width, s.height)) / span
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	toScreen := func(p common.Vec3) (float64, float64) {
		return float64(float32(s.width)/2 + (p[0]-cx)*scale), float64(float32(s.height)/2 - (p[1]-cy)*scale)
	}

	// Farthest faces (smallest z) first.
	order := make([]int, faces)
	depth := make([]float32, faces)
	for f := range order {
		order[f] = f
		depth[f] = positions[f*3][2] + positions[f*3+1][2] + positions[f*3+2][2]
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(depth[a], depth[b]) })

	dc := gg.NewContext(s.width, s.height)
	dc.ClearWithColor(s.background)
	for _, f := range order {
		var c common.Vec3
		for k := range 3 {
			c = common.Add3(c, effect.Shade(f*3+k))
		}
		c = common.Scale3(c, 1.0/3)
		dc.SetRGB(float64(min(c[0], 1)), float64(min(c[1], 1)), float64(min(c[2], 1)))

		x0, y0 := toScreen(positions[f*3])
		x1, y1 := toScreen(positions[f*3+1])
		x2, y2 := toScreen(positions[f*3+2])
		dc.MoveTo(x0, y0)
		dc.LineTo(x1, y1)
		dc.LineTo(x2, y2)
		dc.ClosePath()
		_ = dc.Fill()
	}
	return dc
}
