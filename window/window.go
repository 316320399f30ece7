// Package window provides the window backends the Vulkan surface is
// created on. Both SDL2 and GLFW are supported.
package window

import (
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/devblok/vkchain/core"
)

// Events is what happened since the last Poll
type Events struct {
	Quit    bool
	Resized bool
}

// Window is a Vulkan capable window
type Window interface {
	core.Window

	// ProcAddr is the vkGetInstanceProcAddr the backend loaded
	ProcAddr() unsafe.Pointer

	// InstanceExtensions lists the extensions surfaces need
	InstanceExtensions() []string

	// CreateSurface creates a surface for instance, a vk.Instance
	CreateSurface(instance interface{}) (uintptr, error)

	// Poll drains pending window events
	Poll() Events

	Destroy()
}

// Backends are the supported values of the window backend setting
var Backends = []string{"sdl", "glfw"}

// New opens a window with the configured backend
func New(cfg core.WindowConfiguration, width, height uint32) (Window, error) {
	switch strings.ToLower(cfg.Backend) {
	case "sdl":
		return NewSDL(cfg.Title, width, height)
	case "glfw":
		return NewGLFW(cfg.Title, width, height)
	}
	return nil, errors.Newf("unknown window backend %q, use one of %s", cfg.Backend, strings.Join(Backends, ", "))
}
