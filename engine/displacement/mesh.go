package displacement

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// Mesh is an unindexed triangle soup: every three consecutive vertices form one face.
type Mesh struct {
	Positions []common.Vec3
	Normals   []common.Vec3
}

// FaceCount returns the number of triangles.
func (m Mesh) FaceCount() int {
	return len(m.Positions) / 3
}

func (m Mesh) validate() error {
	if len(m.Positions) == 0 || len(m.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d positions is not a whole number of triangles", ErrInvalidMesh, len(m.Positions))
	}
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrInvalidMesh, len(m.Normals), len(m.Positions))
	}
	return nil
}

// PlaneMesh builds a flat grid of cols x rows quads centred on the origin in the XY plane,
// facing +Z.
//
// Parameters:
//   - width: extent along X
//   - height: extent along Y
//   - cols: quads along X (at least 1)
//   - rows: quads along Y (at least 1)
//
// Returns:
//   - Mesh: two triangles per quad
func PlaneMesh(width, height float32, cols, rows int) Mesh {
	cols, rows = max(cols, 1), max(rows, 1)
	m := Mesh{
		Positions: make([]common.Vec3, 0, cols*rows*6),
		Normals:   make([]common.Vec3, 0, cols*rows*6),
	}
	at := func(c, r int) common.Vec3 {
		return common.Vec3{
			width*float32(c)/float32(cols) - width/2,
			height*float32(r)/float32(rows) - height/2,
			0,
		}
	}
	up := common.Vec3{0, 0, 1}
	for r := range rows {
		for c := range cols {
			a, b, cc, d := at(c, r), at(c+1, r), at(c+1, r+1), at(c, r+1)
			m.Positions = append(m.Positions, a, b, cc, a, cc, d)
			m.Normals = append(m.Normals, up, up, up, up, up, up)
		}
	}
	return m
}

// Tessellate splits every face whose longest edge exceeds maxEdge at that edge's midpoint,
// repeating for up to iterations passes or until no face changes.
//
// Parameters:
//   - m: the input mesh
//   - maxEdge: the longest edge allowed to survive
//   - iterations: the maximum number of passes
//
// Returns:
//   - Mesh: a new, finer mesh
func Tessellate(m Mesh, maxEdge float32, iterations int) Mesh {
	limit := maxEdge * maxEdge
	cur := m
	for range iterations {
		next := Mesh{
			Positions: make([]common.Vec3, 0, len(cur.Positions)*2),
			Normals:   make([]common.Vec3, 0, len(cur.Normals)*2),
		}
		split := false
		for f := range cur.FaceCount() {
			p := cur.Positions[f*3 : f*3+3]
			n := cur.Normals[f*3 : f*3+3]

			// Rotate the face so the longest edge runs from vertex 0 to vertex 1.
			e0 := common.LengthSq3(common.Sub3(p[0], p[1]))
			e1 := common.LengthSq3(common.Sub3(p[1], p[2]))
			e2 := common.LengthSq3(common.Sub3(p[2], p[0]))
			longest, o := e0, 0
			if e1 > longest {
				longest, o = e1, 1
			}
			if e2 > longest {
				longest, o = e2, 2
			}
			if longest <= limit {
				next.Positions = append(next.Positions, p...)
				next.Normals = append(next.Normals, n...)
				continue
			}
			split = true

			a, b, c := o, (o+1)%3, (o+2)%3
			mid := common.Scale3(common.Add3(p[a], p[b]), 0.5)
			midN, ok := common.Normalize3(common.Add3(n[a], n[b]), 1e-12)
			if !ok {
				midN = n[a]
			}
			next.Positions = append(next.Positions, p[a], mid, p[c], mid, p[b], p[c])
			next.Normals = append(next.Normals, n[a], midN, n[c], midN, n[b], n[c])
		}
		cur = next
		if !split {
			break
		}
	}
	return cur
}
