package core

import (
	"fmt"
	"math"

	vk "github.com/vulkan-go/vulkan"
)

// AdapterInfo describes available physical properties of a rendering device
type AdapterInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	APIVersion    uint32
	Type          vk.PhysicalDeviceType
	QueueFamilies []QueueFamily
	Extensions    []string
	Layers        []string
	Memory        uint64
}

// QueueFamily is a group of queues sharing the same capabilities
type QueueFamily struct {
	Flags vk.QueueFlags
	Count uint32
}

// Graphics reports if the family can execute graphics work
func (q QueueFamily) Graphics() bool {
	return q.Flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
}

// Extent is a two dimensional size in pixels
type Extent struct {
	Width  uint32
	Height uint32
}

// Zero reports if either side of the extent is zero
func (e Extent) Zero() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// MatchWindow is the current extent value surfaces report when
// the swapchain extent should follow the window
const MatchWindow uint32 = math.MaxUint32

// SurfaceFormat is a format and color space pair supported by a surface
type SurfaceFormat struct {
	Format     vk.Format
	ColorSpace vk.ColorSpace
}

// SurfaceCapabilities is the surface capability set relevant to swapchains
type SurfaceCapabilities struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           Extent
	MinImageExtent          Extent
	MaxImageExtent          Extent
	SupportedTransforms     vk.SurfaceTransformFlags
	CurrentTransform        vk.SurfaceTransformFlagBits
	SupportedCompositeAlpha vk.CompositeAlphaFlags
}

// SurfaceSupport is everything an adapter reports about a surface
type SurfaceSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []vk.PresentMode
}

// QueueRequest asks for queues from one family
type QueueRequest struct {
	Family     uint32
	Priorities []float32
}

// DeviceRequest describes a logical device to be created
type DeviceRequest struct {
	Queues     []QueueRequest
	Extensions []string
	Layers     []string
}

// SwapchainRequest holds negotiated swapchain parameters
type SwapchainRequest struct {
	Surface        Surface
	MinImageCount  uint32
	Format         SurfaceFormat
	Extent         Extent
	PresentMode    vk.PresentMode
	Transform      vk.SurfaceTransformFlagBits
	CompositeAlpha vk.CompositeAlphaFlagBits

	// QueueFamilies lists the families that access the images,
	// more than one means concurrent sharing
	QueueFamilies []uint32
}

// MakeVersion packs a version the same way the driver does
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// VersionString formats a packed version
func VersionString(version uint32) string {
	return fmt.Sprintf("%d.%d.%d", version>>22, (version>>12)&0x3ff, version&0xfff)
}
