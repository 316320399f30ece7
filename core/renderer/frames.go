package renderer

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/vkchain/core"
)

// FrameSlot holds everything one frame in flight uses
type FrameSlot struct {
	Command        core.CommandBuffer
	ImageAvailable core.Semaphore
	RenderComplete core.Semaphore
	InFlight       core.Fence
}

// FrameSet is a fixed ring of frame slots. A slot is reused only after
// its fence signaled, which bounds frames in flight to the ring size.
type FrameSet struct {
	pool    core.CommandPool
	slots   []FrameSlot
	current int
}

// NewFrameSet creates size slots with command buffers from family.
// Fences start signaled so the first wait on each slot returns at once.
func NewFrameSet(dev core.Device, family uint32, size int) (*FrameSet, error) {
	if size < 1 {
		return nil, errors.Newf("frame set needs at least one slot, got %d", size)
	}

	pool, err := dev.CreateCommandPool(family)
	if err != nil {
		return nil, errors.Wrap(err, "create command pool")
	}
	f := &FrameSet{pool: pool}

	for i := 0; i < size; i++ {
		slot, err := newFrameSlot(dev, pool)
		if err != nil {
			f.slots = append(f.slots, slot)
			f.Destroy()
			return nil, errors.Wrapf(err, "frame slot %d", i)
		}
		f.slots = append(f.slots, slot)
	}
	return f, nil
}

func newFrameSlot(dev core.Device, pool core.CommandPool) (slot FrameSlot, err error) {
	if slot.Command, err = pool.Allocate(); err != nil {
		return slot, errors.Wrap(err, "allocate command buffer")
	}
	if slot.ImageAvailable, err = dev.CreateSemaphore(); err != nil {
		return slot, errors.Wrap(err, "create image available semaphore")
	}
	if slot.RenderComplete, err = dev.CreateSemaphore(); err != nil {
		return slot, errors.Wrap(err, "create render complete semaphore")
	}
	if slot.InFlight, err = dev.CreateFence(true); err != nil {
		return slot, errors.Wrap(err, "create in flight fence")
	}
	return slot, nil
}

// Current returns the slot of the frame being rendered
func (f *FrameSet) Current() *FrameSlot {
	return &f.slots[f.current]
}

// Slot returns slot i
func (f *FrameSet) Slot(i int) *FrameSlot {
	return &f.slots[i]
}

// Index returns the current slot index
func (f *FrameSet) Index() int {
	return f.current
}

// Len returns the ring size
func (f *FrameSet) Len() int {
	return len(f.slots)
}

// Advance moves to the next slot
func (f *FrameSet) Advance() {
	f.current = (f.current + 1) % len(f.slots)
}

// Destroy destroys every slot and then the command pool.
// The device must be idle.
func (f *FrameSet) Destroy() {
	for i := len(f.slots) - 1; i >= 0; i-- {
		slot := &f.slots[i]
		if slot.InFlight != nil {
			slot.InFlight.Destroy()
		}
		if slot.RenderComplete != nil {
			slot.RenderComplete.Destroy()
		}
		if slot.ImageAvailable != nil {
			slot.ImageAvailable.Destroy()
		}
	}
	f.slots = nil
	if f.pool != nil {
		f.pool.Destroy()
		f.pool = nil
	}
}
