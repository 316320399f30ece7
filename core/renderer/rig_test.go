package renderer_test

import (
	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/core/renderer"
	"github.com/devblok/vkchain/device"
	"github.com/devblok/vkchain/internal/fakegpu"
)

type rig struct {
	adapter *fakegpu.Adapter
	fake    *fakegpu.Device
	dev     *device.LogicalDevice
	surface *fakegpu.Surface
	window  *fakegpu.Window
	log     *fakegpu.Log
}

func newRig(c *qt.C) *rig {
	r := &rig{
		log:     &fakegpu.Log{},
		surface: &fakegpu.Surface{},
		window:  &fakegpu.Window{Sizes: []core.Extent{{Width: 800, Height: 600}}},
	}
	r.adapter = &fakegpu.Adapter{
		Data: core.AdapterInfo{
			Name:       "fake",
			APIVersion: core.MakeVersion(1, 3, 0),
			Type:       vk.PhysicalDeviceTypeDiscreteGpu,
			QueueFamilies: []core.QueueFamily{
				{Flags: vk.QueueFlags(vk.QueueGraphicsBit), Count: 1},
			},
			Extensions: []string{"VK_KHR_swapchain"},
		},
		Present: map[uint32]bool{0: true},
		Support: core.SurfaceSupport{
			Capabilities: core.SurfaceCapabilities{
				MinImageCount:           2,
				CurrentExtent:           core.Extent{Width: core.MatchWindow, Height: core.MatchWindow},
				MinImageExtent:          core.Extent{Width: 1, Height: 1},
				MaxImageExtent:          core.Extent{Width: 4096, Height: 4096},
				SupportedTransforms:     vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
				CurrentTransform:        vk.SurfaceTransformIdentityBit,
				SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
			},
			Formats:      []core.SurfaceFormat{unormFormat, renderer.PreferredFormat},
			PresentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		},
		Log: r.log,
	}

	queues, err := device.ResolveQueues(r.adapter, r.surface)
	c.Assert(err, qt.IsNil)
	r.dev, err = device.Build(r.adapter, queues, []string{"VK_KHR_swapchain"}, nil)
	c.Assert(err, qt.IsNil)
	r.fake = r.adapter.Devices[0]
	r.log.Clear()
	return r
}

func (r *rig) swapchain(c *qt.C) *renderer.Swapchain {
	s := renderer.NewSwapchain(r.dev, r.surface, r.window, nil)
	c.Assert(s.Build(), qt.IsNil)
	r.log.Clear()
	return s
}

func (r *rig) live() map[string]int {
	out := map[string]int{}
	for _, kind := range []string{"chain", "view", "fence", "sem", "pool", "cmd"} {
		out[kind] = r.fake.Live(kind)
	}
	return out
}

func (r *rig) recorder() renderer.Recorder {
	return renderer.RecorderFunc(func(cmd core.CommandBuffer, target renderer.Target) error {
		r.log.Record("record image=%d slot=%d frame=%d", target.ImageIndex, target.Slot, target.Frame)
		return nil
	})
}
