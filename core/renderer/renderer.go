// Package renderer drives presentation: it negotiates and rebuilds the
// swapchain and runs the per frame acquire, record, submit and present
// cycle over a ring of frame slots.
package renderer

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/device"
)

// Target is what a Recorder renders to
type Target struct {
	Image      core.Image
	View       core.ImageView
	ImageIndex uint32
	Format     core.SurfaceFormat
	Extent     core.Extent
	Frame      uint64
	Slot       int
}

// Recorder records the commands of one frame. The command buffer
// is already begun and is ended after Record returns.
type Recorder interface {
	Record(cmd core.CommandBuffer, target Target) error
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(cmd core.CommandBuffer, target Target) error

// Record implements Recorder
func (f RecorderFunc) Record(cmd core.CommandBuffer, target Target) error {
	return f(cmd, target)
}

// Renderer presents frames recorded by a Recorder
type Renderer struct {
	device    *device.LogicalDevice
	swapchain *Swapchain
	frames    *FrameSet
	recorder  Recorder
	log       log.FieldLogger

	frame   uint64
	skipped uint64
}

// New builds the swapchain and the frame ring. The logical device,
// surface and window stay owned by the caller.
func New(dev *device.LogicalDevice, surface core.Surface, window core.Window, recorder Recorder, cfg core.RendererConfiguration, logger log.FieldLogger) (*Renderer, error) {
	logger = core.LoggerOr(logger)

	swapchain := NewSwapchain(dev, surface, window, logger)
	if err := swapchain.Build(); err != nil {
		return nil, err
	}

	frames, err := NewFrameSet(dev.Device, dev.Family(device.RoleGraphics), cfg.FramesInFlight)
	if err != nil {
		swapchain.Destroy()
		return nil, err
	}

	return &Renderer{
		device:    dev,
		swapchain: swapchain,
		frames:    frames,
		recorder:  recorder,
		log:       logger,
	}, nil
}

// DrawFrame renders and presents one frame. It returns false without an
// error when the frame was skipped because the swapchain was rebuilt.
func (r *Renderer) DrawFrame() (bool, error) {
	if r.swapchain.State() == StateStale {
		if err := r.swapchain.Rebuild(); err != nil {
			return false, err
		}
	}

	slot := r.frames.Current()
	if err := slot.InFlight.Wait(); err != nil {
		return false, errors.Wrap(err, "wait in flight fence")
	}

	index, ok, err := r.swapchain.Acquire(slot.ImageAvailable)
	if err != nil {
		return false, err
	}
	if !ok {
		r.skipped++
		return false, r.swapchain.Rebuild()
	}

	if err := r.record(slot, index); err != nil {
		return false, err
	}

	// Reset right before submit, a reset fence that is never
	// submitted never signals again.
	if err := slot.InFlight.Reset(); err != nil {
		return false, errors.Wrap(err, "reset in flight fence")
	}

	if err := r.device.Queue(device.RoleGraphics).Submit(core.Submission{
		Command:   slot.Command,
		Wait:      slot.ImageAvailable,
		WaitStage: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		Signal:    slot.RenderComplete,
		Fence:     slot.InFlight,
	}); err != nil {
		return false, errors.Wrap(err, "submit")
	}

	if err := r.swapchain.Present(r.device.Queue(device.RolePresentation), index, slot.RenderComplete); err != nil {
		return false, err
	}

	r.frames.Advance()
	r.frame++
	return true, nil
}

func (r *Renderer) record(slot *FrameSlot, index uint32) error {
	cmd := slot.Command
	if err := cmd.Reset(); err != nil {
		return errors.Wrap(err, "reset command buffer")
	}
	if err := cmd.Begin(); err != nil {
		return errors.Wrap(err, "begin command buffer")
	}
	if err := r.recorder.Record(cmd, Target{
		Image:      r.swapchain.Images()[index],
		View:       r.swapchain.Views()[index],
		ImageIndex: index,
		Format:     r.swapchain.Format(),
		Extent:     r.swapchain.Extent(),
		Frame:      r.frame,
		Slot:       r.frames.Index(),
	}); err != nil {
		return errors.Wrap(err, "record frame")
	}
	return errors.Wrap(cmd.End(), "end command buffer")
}

// Resize tells the renderer the window size changed
func (r *Renderer) Resize() {
	r.swapchain.Invalidate("resize")
}

// Swapchain returns the managed swapchain, its format, extent and
// views are what pipelines and framebuffers are built against
func (r *Renderer) Swapchain() *Swapchain {
	return r.swapchain
}

// Frames returns the frame ring
func (r *Renderer) Frames() *FrameSet {
	return r.frames
}

// Frame returns the number of presented frames
func (r *Renderer) Frame() uint64 {
	return r.frame
}

// Skipped returns the number of frames abandoned for a rebuild
func (r *Renderer) Skipped() uint64 {
	return r.skipped
}

// Destroy waits for the device to go idle and releases the frame
// ring and then the swapchain
func (r *Renderer) Destroy() error {
	err := r.device.Device.WaitIdle()
	r.frames.Destroy()
	r.swapchain.Destroy()
	return errors.Wrap(err, "wait device idle")
}
