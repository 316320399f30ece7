package device_test

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/internal/fakegpu"
)

var (
	v13 = core.MakeVersion(1, 3, 0)
	v12 = core.MakeVersion(1, 2, 0)

	graphicsFamily = core.QueueFamily{Flags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit), Count: 16}
	computeFamily  = core.QueueFamily{Flags: vk.QueueFlags(vk.QueueComputeBit), Count: 4}
	transferFamily = core.QueueFamily{Flags: vk.QueueFlags(vk.QueueTransferBit), Count: 2}

	swapchainOnly = []string{"VK_KHR_swapchain"}
)

func newAdapter(name string, deviceType vk.PhysicalDeviceType, families ...core.QueueFamily) *fakegpu.Adapter {
	return &fakegpu.Adapter{
		Data: core.AdapterInfo{
			Name:          name,
			APIVersion:    v13,
			Type:          deviceType,
			QueueFamilies: families,
			Extensions:    []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"},
		},
		Present: map[uint32]bool{0: true},
	}
}

func adapters(list ...*fakegpu.Adapter) []core.Adapter {
	out := make([]core.Adapter, len(list))
	for i, a := range list {
		out[i] = a
	}
	return out
}
