package renderer

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
)

// PreferredFormat is picked when the surface supports it
var PreferredFormat = core.SurfaceFormat{
	Format:     vk.FormatB8g8r8a8Srgb,
	ColorSpace: vk.ColorSpaceSrgbNonlinear,
}

// Parameters are negotiated swapchain parameters
type Parameters struct {
	Format         core.SurfaceFormat
	PresentMode    vk.PresentMode
	Extent         core.Extent
	ImageCount     uint32
	Transform      vk.SurfaceTransformFlagBits
	CompositeAlpha vk.CompositeAlphaFlagBits
}

// ChooseSurfaceFormat picks PreferredFormat, else the first reported format
func ChooseSurfaceFormat(formats []core.SurfaceFormat) (core.SurfaceFormat, error) {
	if len(formats) == 0 {
		return core.SurfaceFormat{}, errors.New("surface reports no formats")
	}
	for _, f := range formats {
		if f == PreferredFormat {
			return f, nil
		}
	}
	return formats[0], nil
}

// ChoosePresentMode picks mailbox when supported, else FIFO which
// every implementation supports
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent uses the surface extent, or the framebuffer size clamped
// to the surface limits when the surface follows the window
func ChooseExtent(caps core.SurfaceCapabilities, framebuffer core.Extent) core.Extent {
	if caps.CurrentExtent.Width != core.MatchWindow {
		return caps.CurrentExtent
	}
	return core.Extent{
		Width:  clamp(framebuffer.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(framebuffer.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount is one more than the minimum, bounded by the maximum.
// A maximum of zero means no limit.
func ChooseImageCount(caps core.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseTransform prefers the identity transform
func ChooseTransform(caps core.SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if caps.SupportedTransforms&vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit) != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

var compositeAlphaOrder = []vk.CompositeAlphaFlagBits{
	vk.CompositeAlphaOpaqueBit,
	vk.CompositeAlphaPreMultipliedBit,
	vk.CompositeAlphaPostMultipliedBit,
	vk.CompositeAlphaInheritBit,
}

// ChooseCompositeAlpha picks the first supported of opaque,
// pre-multiplied, post-multiplied and inherit
func ChooseCompositeAlpha(caps core.SurfaceCapabilities) vk.CompositeAlphaFlagBits {
	for _, bit := range compositeAlphaOrder {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(bit) != 0 {
			return bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

// Negotiate chooses every swapchain parameter from what the surface supports
func Negotiate(support core.SurfaceSupport, framebuffer core.Extent) (Parameters, error) {
	format, err := ChooseSurfaceFormat(support.Formats)
	if err != nil {
		return Parameters{}, err
	}
	caps := support.Capabilities
	return Parameters{
		Format:         format,
		PresentMode:    ChoosePresentMode(support.PresentModes),
		Extent:         ChooseExtent(caps, framebuffer),
		ImageCount:     ChooseImageCount(caps),
		Transform:      ChooseTransform(caps),
		CompositeAlpha: ChooseCompositeAlpha(caps),
	}, nil
}

func clamp(v, min, max uint32) uint32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
