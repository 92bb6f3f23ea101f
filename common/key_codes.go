package common

// Virtual key codes delivered by the window key callbacks.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyP     = 80  // P key (ASCII)
	KeyR     = 82  // R key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)

	KeyEqual = 61 // = / + key (ASCII)
	KeyMinus = 45 // - key (ASCII)

	KeyUp   = 265 // Up arrow (GLFW)
	KeyDown = 264 // Down arrow (GLFW)
)
