package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// errNotOpen is returned when closing a window that was never opened or is already closed.
var errNotOpen = errors.New("window: not open")

// glfwWindow is the GLFW side of an engineWindow.
type glfwWindow struct {
	handle  *glfw.Window
	running bool
}

// openGLFW creates the GLFW window and routes its callbacks into w.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func openGLFW(w *engineWindow) (*glfwWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// No OpenGL context: the surface is created by WebGPU.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	gw := &glfwWindow{handle: handle, running: true}

	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch {
		case key == glfw.KeyEscape && action == glfw.Press:
			gw.running = false
			handle.SetShouldClose(true)
		case action != glfw.Release && w.onKeyDown != nil:
			w.onKeyDown(uint32(key))
		}
	})

	// Cursor positions are in screen coordinates, so they are normalized against the window size
	// rather than the framebuffer size.
	handle.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if w.onPointer == nil {
			return
		}
		width, height := handle.GetSize()
		w.onPointer(NormalizePointer(xpos, ypos, width, height))
	})

	handle.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if !entered && w.onPointerLeave != nil {
			w.onPointerLeave()
		}
	})

	// Surfaces are sized in pixels, which differ from screen coordinates on high-DPI displays.
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	w.width, w.height = handle.GetFramebufferSize()
	common.Logger().Info("window opened", "title", w.title, "width", w.width, "height", w.height)
	return gw, nil
}

// surfaceDescriptor returns the platform surface of the window via the wgpuglfw bridge.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.handle)
}

func (gw *glfwWindow) isRunning() bool {
	return gw.running && !gw.handle.ShouldClose()
}

// poll processes pending events without blocking and reports whether the window is still open.
func (gw *glfwWindow) poll() bool {
	glfw.PollEvents()
	return gw.isRunning()
}

// close destroys the window and terminates GLFW.
func (gw *glfwWindow) close() {
	gw.running = false
	gw.handle.Destroy()
	glfw.Terminate()
}
