package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePointer(t *testing.T) {
	tests := []struct {
		name         string
		x, y         float64
		w, h         int
		wantX, wantY float32
	}{
		{"centre", 400, 300, 800, 600, 0, 0},
		{"top left", 0, 0, 800, 600, -1, -1},
		{"bottom right", 800, 600, 800, 600, 1, 1},
		{"quarter", 600, 150, 800, 600, 0.5, -0.5},
		{"degenerate", 10, 10, 0, 600, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := NormalizePointer(tt.x, tt.y, tt.w, tt.h)
			assert.InDelta(t, tt.wantX, x, 1e-6)
			assert.InDelta(t, tt.wantY, y, 1e-6)
		})
	}
}
