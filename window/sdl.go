package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// SDL is an SDL2 window
type SDL struct {
	window *sdl.Window
	quit   bool
}

// NewSDL initialises SDL with its Vulkan loader and opens a resizable window
func NewSDL(title string, width, height uint32) (*SDL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "sdl.Init()")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}

	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &SDL{window: window}, nil
}

// FramebufferSize implements core.Window
func (s *SDL) FramebufferSize() (uint32, uint32) {
	w, h := s.window.VulkanGetDrawableSize()
	return uint32(w), uint32(h)
}

// WaitEvents implements core.Window
func (s *SDL) WaitEvents() {
	s.handle(sdl.WaitEvent())
}

// Closed implements core.Window
func (s *SDL) Closed() bool {
	return s.quit
}

// ProcAddr implements Window
func (s *SDL) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// InstanceExtensions implements Window
func (s *SDL) InstanceExtensions() []string {
	return s.window.VulkanGetInstanceExtensions()
}

// CreateSurface implements Window
func (s *SDL) CreateSurface(instance interface{}) (uintptr, error) {
	surface, err := s.window.VulkanCreateSurface(instance)
	if err != nil {
		return 0, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return uintptr(surface), nil
}

// Poll implements Window
func (s *SDL) Poll() Events {
	var events Events
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if s.handle(event) {
			events.Resized = true
		}
	}
	events.Quit = s.quit
	return events
}

func (s *SDL) handle(event sdl.Event) (resized bool) {
	switch et := event.(type) {
	case *sdl.QuitEvent:
		s.quit = true
	case *sdl.KeyboardEvent:
		if et.Keysym.Sym == sdl.K_ESCAPE {
			s.quit = true
		}
	case *sdl.WindowEvent:
		switch et.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_RESTORED:
			return true
		}
	}
	return false
}

// Destroy closes the window and shuts SDL down
func (s *SDL) Destroy() {
	s.window.Destroy()
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
