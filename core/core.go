package core

import (
	vk "github.com/vulkan-go/vulkan"
)

// Instance describes a graphics API instance and supporting methods.
// Once created it is ready to use.
type Instance interface {
	// Adapters returns every physical device reported by the driver,
	// in the order the driver reports them
	Adapters() ([]Adapter, error)

	// Surface returns the window surface, nil if it's not set
	Surface() Surface

	// Destroy destroys internal members
	Destroy()
}

// Adapter is a physical device. It is owned by the driver layer,
// nothing in this module mutates it.
type Adapter interface {
	// Info returns the read-only attributes used for selection
	Info() AdapterInfo

	// SupportsPresent reports if a queue family can present to surface
	SupportsPresent(family uint32, surface Surface) (bool, error)

	// SurfaceSupport returns the capabilities, formats and present modes
	// the adapter reports for surface
	SurfaceSupport(surface Surface) (SurfaceSupport, error)

	// CreateDevice creates a logical device
	CreateDevice(req DeviceRequest) (Device, error)
}

// Surface is a presentable window surface
type Surface interface {
	Destroy()
}

// Device is a logical device created from an Adapter.
type Device interface {
	// Queue returns a non-owning view of a device queue
	Queue(family, index uint32) Queue

	// WaitIdle blocks until all submitted work has completed
	WaitIdle() error

	CreateSwapchain(req SwapchainRequest) (Swapchain, error)
	CreateImageView(image Image, format vk.Format) (ImageView, error)
	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)
	CreateCommandPool(family uint32) (CommandPool, error)

	// Destroy destroys the device, every object created from it
	// must be destroyed before
	Destroy()
}

// Queue accepts command submissions and presentation requests.
type Queue interface {
	Submit(sub Submission) error
	Present(chain Swapchain, image uint32, wait Semaphore) (PresentStatus, error)
}

// Submission is a single command buffer submission
type Submission struct {
	Command   CommandBuffer
	Wait      Semaphore
	WaitStage vk.PipelineStageFlags
	Signal    Semaphore
	Fence     Fence
}

// Swapchain is the driver side present chain.
type Swapchain interface {
	// Images returns the presentable images, owned by the chain
	Images() ([]Image, error)

	// AcquireNextImage requests the next presentable image, signal is
	// signaled once the image is ready to be rendered to
	AcquireNextImage(signal Semaphore) (uint32, PresentStatus, error)

	Destroy()
}

// Image is a driver owned image handle
type Image interface{}

// ImageView is a view of an Image
type ImageView interface {
	Destroy()
}

// Fence is a completion signal observable from the CPU
type Fence interface {
	// Wait blocks until the fence is signaled
	Wait() error
	Reset() error
	Destroy()
}

// Semaphore is an ordering signal consumed only by GPU work
type Semaphore interface {
	Destroy()
}

// CommandPool allocates command buffers for one queue family
type CommandPool interface {
	Allocate() (CommandBuffer, error)
	Destroy()
}

// CommandBuffer records commands for submission
type CommandBuffer interface {
	Reset() error
	Begin() error
	End() error
}

// Window is what the presentation code needs from the window system.
// It never creates or destroys windows.
type Window interface {
	// FramebufferSize returns the drawable size in pixels
	FramebufferSize() (width, height uint32)

	// WaitEvents blocks until the window system has events
	WaitEvents()

	// Closed reports if the user asked to close the window
	Closed() bool
}

// PresentStatus is the recoverable outcome of acquire and present
type PresentStatus int

// Recoverable presentation statuses
const (
	PresentOK PresentStatus = iota
	PresentSuboptimal
	PresentOutOfDate
)

func (s PresentStatus) String() string {
	switch s {
	case PresentOK:
		return "ok"
	case PresentSuboptimal:
		return "suboptimal"
	case PresentOutOfDate:
		return "out of date"
	}
	return "unknown"
}
