package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
)

// Fence is a CPU visible completion signal
type Fence struct {
	device vk.Device
	handle vk.Fence
}

// Wait implements core.Fence, it blocks without a timeout
func (f *Fence) Wait() error {
	ret := vk.WaitForFences(f.device, 1, []vk.Fence{f.handle}, vk.True, math.MaxUint64)
	return errors.Wrap(vk.Error(ret), "vk.WaitForFences()")
}

// Reset implements core.Fence
func (f *Fence) Reset() error {
	return errors.Wrap(vk.Error(vk.ResetFences(f.device, 1, []vk.Fence{f.handle})), "vk.ResetFences()")
}

// Destroy implements core.Fence
func (f *Fence) Destroy() {
	if f.handle == vk.NullFence {
		return
	}
	vk.DestroyFence(f.device, f.handle, nil)
	f.handle = vk.NullFence
}

// Semaphore is a GPU side ordering signal
type Semaphore struct {
	device vk.Device
	handle vk.Semaphore
}

// Destroy implements core.Semaphore
func (s *Semaphore) Destroy() {
	if s.handle == vk.NullSemaphore {
		return
	}
	vk.DestroySemaphore(s.device, s.handle, nil)
	s.handle = vk.NullSemaphore
}

func semaphoreHandle(s core.Semaphore) vk.Semaphore {
	if semaphore, ok := s.(*Semaphore); ok && semaphore != nil {
		return semaphore.handle
	}
	return vk.NullSemaphore
}

func fenceHandle(f core.Fence) vk.Fence {
	if fence, ok := f.(*Fence); ok && fence != nil {
		return fence.handle
	}
	return vk.NullFence
}

// CommandPool allocates primary command buffers
type CommandPool struct {
	device vk.Device
	handle vk.CommandPool
}

// Allocate implements core.CommandPool
func (p *CommandPool) Allocate() (core.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.handle,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}

	buffers := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(p.device, &cbai, buffers)); err != nil {
		return nil, errors.Wrap(err, "vk.AllocateCommandBuffers()")
	}
	return &CommandBuffer{handle: buffers[0]}, nil
}

// Destroy implements core.CommandPool, buffers allocated from the
// pool are freed with it
func (p *CommandPool) Destroy() {
	if p.handle == vk.NullCommandPool {
		return
	}
	vk.DestroyCommandPool(p.device, p.handle, nil)
	p.handle = vk.NullCommandPool
}

// CommandBuffer is a primary command buffer
type CommandBuffer struct {
	handle vk.CommandBuffer
}

// Handle returns the vk.CommandBuffer for recording
func (c *CommandBuffer) Handle() vk.CommandBuffer {
	return c.handle
}

// Reset implements core.CommandBuffer
func (c *CommandBuffer) Reset() error {
	return errors.Wrap(vk.Error(vk.ResetCommandBuffer(c.handle, 0)), "vk.ResetCommandBuffer()")
}

// Begin implements core.CommandBuffer, the buffer is recorded
// for a single submission
func (c *CommandBuffer) Begin() error {
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	return errors.Wrap(vk.Error(vk.BeginCommandBuffer(c.handle, &cbbi)), "vk.BeginCommandBuffer()")
}

// End implements core.CommandBuffer
func (c *CommandBuffer) End() error {
	return errors.Wrap(vk.Error(vk.EndCommandBuffer(c.handle)), "vk.EndCommandBuffer()")
}

// Queue is a device queue
type Queue struct {
	handle vk.Queue
	family uint32
}

// Family returns the queue family of the queue
func (q *Queue) Family() uint32 {
	return q.family
}

// Submit implements core.Queue
func (q *Queue) Submit(sub core.Submission) error {
	cmd, ok := sub.Command.(*CommandBuffer)
	if !ok {
		return errors.Newf("not a vulkan command buffer: %T", sub.Command)
	}

	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd.handle},
	}
	if wait := semaphoreHandle(sub.Wait); wait != vk.NullSemaphore {
		info.WaitSemaphoreCount = 1
		info.PWaitSemaphores = []vk.Semaphore{wait}
		info.PWaitDstStageMask = []vk.PipelineStageFlags{sub.WaitStage}
	}
	if signal := semaphoreHandle(sub.Signal); signal != vk.NullSemaphore {
		info.SignalSemaphoreCount = 1
		info.PSignalSemaphores = []vk.Semaphore{signal}
	}

	ret := vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{info}, fenceHandle(sub.Fence))
	return errors.Wrap(vk.Error(ret), "vk.QueueSubmit()")
}

// Present implements core.Queue
func (q *Queue) Present(chain core.Swapchain, image uint32, wait core.Semaphore) (core.PresentStatus, error) {
	swapchain, ok := chain.(*Swapchain)
	if !ok {
		return core.PresentOK, errors.Newf("not a vulkan swapchain: %T", chain)
	}

	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{swapchain.handle},
		PImageIndices:  []uint32{image},
	}
	if semaphore := semaphoreHandle(wait); semaphore != vk.NullSemaphore {
		presentInfo.WaitSemaphoreCount = 1
		presentInfo.PWaitSemaphores = []vk.Semaphore{semaphore}
	}

	status, err := presentStatus(vk.QueuePresent(q.handle, &presentInfo))
	return status, errors.Wrap(err, "vk.QueuePresent()")
}
