package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// GLFW is a GLFW window with no client API
type GLFW struct {
	window  *glfw.Window
	resized bool
}

// NewGLFW initialises GLFW and opens a resizable window
func NewGLFW(title string, width, height uint32) (*GLFW, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw.Init()")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw: vulkan loader not found")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "glfw.CreateWindow()")
	}

	g := &GLFW{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		g.resized = true
	})
	return g, nil
}

// FramebufferSize implements core.Window
func (g *GLFW) FramebufferSize() (uint32, uint32) {
	w, h := g.window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// WaitEvents implements core.Window
func (g *GLFW) WaitEvents() {
	glfw.WaitEvents()
}

// Closed implements core.Window
func (g *GLFW) Closed() bool {
	return g.window.ShouldClose()
}

// ProcAddr implements Window
func (g *GLFW) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// InstanceExtensions implements Window
func (g *GLFW) InstanceExtensions() []string {
	return g.window.GetRequiredInstanceExtensions()
}

// CreateSurface implements Window
func (g *GLFW) CreateSurface(instance interface{}) (uintptr, error) {
	surface, err := g.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, errors.Wrap(err, "glfw.CreateWindowSurface()")
	}
	return surface, nil
}

// Poll implements Window
func (g *GLFW) Poll() Events {
	glfw.PollEvents()
	events := Events{
		Quit:    g.window.ShouldClose() || g.window.GetKey(glfw.KeyEscape) == glfw.Press,
		Resized: g.resized,
	}
	g.resized = false
	return events
}

// Destroy closes the window and terminates GLFW
func (g *GLFW) Destroy() {
	g.window.Destroy()
	glfw.Terminate()
}
