package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// SliceToBytes reinterprets a slice as bytes for GPU buffer uploads.
// The returned slice shares memory with the input.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte view of data, or nil if data is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}

// Mul4 stores a * b in out. All matrices are column-major; out may alias a or b.
//
// Parameters:
//   - out: destination slice (at least 16 elements)
//   - a: left-hand matrix
//   - b: right-hand matrix
func Mul4(out, a, b []float32) {
	var m [16]float32
	for col := range 4 {
		for row := range 4 {
			var sum float32
			for k := range 4 {
				sum += a[k*4+row] * b[col*4+k]
			}
			m[col*4+row] = sum
		}
	}
	copy(out, m[:])
}

// Perspective writes a right-handed perspective projection with WebGPU's [0, 1] depth range.
//
// Parameters:
//   - out: destination slice (at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near: near plane distance (> 0)
//   - far: far plane distance (> near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1 / math32.Tan(fovY/2)
	clear(out[:16])
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1
	out[14] = near * far / (near - far)
}

// LookAt writes the view matrix of a camera at eye looking at center.
// A degenerate forward or side axis is left unnormalized rather than producing NaNs.
//
// Parameters:
//   - out: destination slice (at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position
//   - centerX, centerY, centerZ: target point
//   - upX, upY, upZ: up direction, usually (0, 1, 0)
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	eye := Vec3{eyeX, eyeY, eyeZ}
	back := Sub3(eye, Vec3{centerX, centerY, centerZ})
	if n, ok := Normalize3(back, 0); ok {
		back = n
	}
	side := Cross3(Vec3{upX, upY, upZ}, back)
	if n, ok := Normalize3(side, 0); ok {
		side = n
	}
	up := Cross3(back, side)

	for i, axis := range [3]Vec3{side, up, back} {
		out[i], out[4+i], out[8+i] = axis[0], axis[1], axis[2]
		out[12+i] = -Dot3(axis, eye)
	}
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// ModelMatrix builds a column-major 4x4 model matrix from a rotation, a translation and a
// uniform scale.
//
// Parameters:
//   - out: destination slice (at least 16 elements)
//   - rot: column-major 3x3 rotation
//   - pos: translation in world space
//   - scale: uniform scale factor
func ModelMatrix(out []float32, rot Mat3, pos Vec3, scale float32) {
	for col := range 3 {
		out[col*4+0] = rot[col*3+0] * scale
		out[col*4+1] = rot[col*3+1] * scale
		out[col*4+2] = rot[col*3+2] * scale
		out[col*4+3] = 0
	}
	out[12], out[13], out[14], out[15] = pos[0], pos[1], pos[2], 1
}
