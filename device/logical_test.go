package device_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/device"
	"github.com/devblok/vkchain/internal/fakegpu"
)

func assignment(graphics, present uint32) device.QueueAssignment {
	var q device.QueueAssignment
	q.Assign(device.RoleGraphics, graphics)
	q.Assign(device.RolePresentation, present)
	return q
}

func TestBuildSharedFamily(t *testing.T) {
	c := qt.New(t)

	a := newAdapter("gpu", vk.PhysicalDeviceTypeDiscreteGpu, graphicsFamily)
	ld, err := device.Build(a, assignment(0, 0), swapchainOnly, nil)
	c.Assert(err, qt.IsNil)
	defer ld.Destroy()

	dev := a.Devices[0]
	c.Assert(dev.Request, qt.DeepEquals, core.DeviceRequest{
		Queues:     []core.QueueRequest{{Family: 0, Priorities: []float32{1}}},
		Extensions: swapchainOnly,
	})
	c.Assert(ld.Queue(device.RoleGraphics), qt.Equals, ld.Queue(device.RolePresentation))
	c.Assert(ld.Queue(device.RoleGraphics).(*fakegpu.Queue).Index, qt.Equals, uint32(0))
}

func TestBuildDistinctFamilies(t *testing.T) {
	c := qt.New(t)

	a := newAdapter("gpu", vk.PhysicalDeviceTypeDiscreteGpu, graphicsFamily, computeFamily, transferFamily)
	ld, err := device.Build(a, assignment(0, 2), swapchainOnly, nil)
	c.Assert(err, qt.IsNil)

	req := a.Devices[0].Request
	c.Assert(req.Queues, qt.HasLen, 2)
	c.Assert(req.Queues[0].Family, qt.Equals, uint32(0))
	c.Assert(req.Queues[1].Family, qt.Equals, uint32(2))

	present := ld.Queue(device.RolePresentation).(*fakegpu.Queue)
	c.Assert(present.Family, qt.Equals, uint32(2))
	c.Assert(present.Index, qt.Equals, uint32(0))
	c.Assert(ld.Family(device.RoleGraphics), qt.Equals, uint32(0))

	ld.Destroy()
	c.Assert(a.Devices[0].Destroyed, qt.IsTrue)
	ld.Destroy()
}

func TestBuildIncomplete(t *testing.T) {
	c := qt.New(t)

	a := newAdapter("gpu", vk.PhysicalDeviceTypeDiscreteGpu, graphicsFamily)
	var q device.QueueAssignment
	q.Assign(device.RoleGraphics, 0)

	_, err := device.Build(a, q, swapchainOnly, nil)
	c.Assert(errors.Is(err, core.ErrIncompleteQueueAssignment), qt.IsTrue)
	c.Assert(a.Devices, qt.HasLen, 0)
}

func TestBuildDeviceCreationError(t *testing.T) {
	c := qt.New(t)

	a := newAdapter("gpu", vk.PhysicalDeviceTypeDiscreteGpu, graphicsFamily)
	a.CreateErr = errors.New("vk.CreateDevice(): VK_ERROR_INITIALIZATION_FAILED")

	_, err := device.Build(a, assignment(0, 0), swapchainOnly, nil)
	c.Assert(errors.Is(err, core.ErrDeviceCreation), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `create device on gpu: vk.CreateDevice\(\): VK_ERROR_INITIALIZATION_FAILED`)
}

func TestOpen(t *testing.T) {
	c := qt.New(t)

	a := newAdapter("gpu", vk.PhysicalDeviceTypeDiscreteGpu, graphicsFamily, computeFamily)
	a.Present = map[uint32]bool{1: true}

	best, err := device.NewSelector(device.NewScorer(v13, swapchainOnly), nil).SelectBest(adapters(a))
	c.Assert(err, qt.IsNil)

	ld, err := device.Open(best, &fakegpu.Surface{}, swapchainOnly, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(ld.Queues.String(), qt.Equals, "graphics=0 presentation=1")

	a.Present = nil
	_, err = device.Open(best, &fakegpu.Surface{}, swapchainOnly, nil)
	c.Assert(errors.Is(err, core.ErrIncompleteQueueAssignment), qt.IsTrue)
}
