package renderer

import (
	"fmt"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/device"
)

// State is the lifecycle state of a Swapchain
type State int

// Swapchain states
const (
	StateUninitialized State = iota
	StateReady
	StateStale
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Swapchain owns the present chain and a view of every chain image.
// A stale chain is rebuilt against the current surface state, the
// device is idle while the old chain is released.
type Swapchain struct {
	device  *device.LogicalDevice
	surface core.Surface
	window  core.Window
	log     log.FieldLogger

	state      State
	pending    string
	chain      core.Swapchain
	images     []core.Image
	views      []core.ImageView
	params     Parameters
	generation int
}

// NewSwapchain creates an uninitialized Swapchain, call Build before use
func NewSwapchain(dev *device.LogicalDevice, surface core.Surface, window core.Window, logger log.FieldLogger) *Swapchain {
	return &Swapchain{
		device:  dev,
		surface: surface,
		window:  window,
		log:     core.LoggerOr(logger),
	}
}

// Build creates the chain and its views for the first time
func (s *Swapchain) Build() error {
	if s.state != StateUninitialized {
		return errors.Newf("swapchain build in state %s", s.state)
	}
	framebuffer, err := s.waitForFramebuffer()
	if err != nil {
		return err
	}
	return s.create(framebuffer)
}

// Invalidate marks the chain stale, it is rebuilt before the next acquire
func (s *Swapchain) Invalidate(reason string) {
	if s.state != StateReady {
		return
	}
	s.state = StateStale
	s.pending = ""
	s.log.WithFields(log.Fields{
		"reason":     reason,
		"generation": s.generation,
	}).Debug("swapchain stale")
}

// Rebuild waits for a drawable window and an idle device, releases the
// views and the chain, then negotiates and creates them again. A window
// closed while minimized fails with ErrWindowClosed and leaves the
// chain untouched.
func (s *Swapchain) Rebuild() error {
	if s.state != StateReady && s.state != StateStale {
		return errors.Newf("swapchain rebuild in state %s", s.state)
	}

	framebuffer, err := s.waitForFramebuffer()
	if err != nil {
		return err
	}
	if err := s.device.Device.WaitIdle(); err != nil {
		return errors.Wrap(err, "wait device idle")
	}
	s.release()
	s.state = StateStale
	return s.create(framebuffer)
}

// Acquire gets the next image, signaling signal once it can be rendered to.
// ok is false when the chain went out of date, the chain is stale then.
func (s *Swapchain) Acquire(signal core.Semaphore) (index uint32, ok bool, err error) {
	if s.state != StateReady {
		return 0, false, errors.Newf("swapchain acquire in state %s", s.state)
	}
	index, status, err := s.chain.AcquireNextImage(signal)
	if err != nil {
		return 0, false, core.Mark(err, core.ErrPresentationEngine, "acquire next image")
	}
	switch status {
	case core.PresentOutOfDate:
		s.Invalidate("acquire out of date")
		return 0, false, nil
	case core.PresentSuboptimal:
		s.pending = "acquire suboptimal"
	}
	return index, true, nil
}

// Present hands image back to the presentation engine once wait is signaled.
// Out of date and suboptimal results make the chain stale.
func (s *Swapchain) Present(queue core.Queue, index uint32, wait core.Semaphore) error {
	if s.state != StateReady {
		return errors.Newf("swapchain present in state %s", s.state)
	}
	status, err := queue.Present(s.chain, index, wait)
	if err != nil {
		return core.Mark(err, core.ErrPresentationEngine, "present")
	}
	switch {
	case status == core.PresentOutOfDate:
		s.Invalidate("present out of date")
	case status == core.PresentSuboptimal:
		s.Invalidate("present suboptimal")
	case s.pending != "":
		s.Invalidate(s.pending)
	}
	return nil
}

// Destroy releases the views and then the chain
func (s *Swapchain) Destroy() {
	if s.state == StateDestroyed {
		return
	}
	s.release()
	s.state = StateDestroyed
}

// State returns the lifecycle state
func (s *Swapchain) State() State {
	return s.state
}

// Format is the negotiated image format
func (s *Swapchain) Format() core.SurfaceFormat {
	return s.params.Format
}

// Extent is the negotiated image extent
func (s *Swapchain) Extent() core.Extent {
	return s.params.Extent
}

// Parameters returns every negotiated parameter
func (s *Swapchain) Parameters() Parameters {
	return s.params
}

// Images returns the chain images
func (s *Swapchain) Images() []core.Image {
	return s.images
}

// Views returns one view per chain image, in image order
func (s *Swapchain) Views() []core.ImageView {
	return s.views
}

// Generation counts how many chains have been created
func (s *Swapchain) Generation() int {
	return s.generation
}

func (s *Swapchain) waitForFramebuffer() (core.Extent, error) {
	w, h := s.window.FramebufferSize()
	if w != 0 && h != 0 {
		return core.Extent{Width: w, Height: h}, nil
	}

	s.log.Debug("window minimized, waiting")
	for w == 0 || h == 0 {
		if s.window.Closed() {
			return core.Extent{}, errors.Mark(errors.New("window closed while minimized"), core.ErrWindowClosed)
		}
		s.window.WaitEvents()
		w, h = s.window.FramebufferSize()
	}
	return core.Extent{Width: w, Height: h}, nil
}

func (s *Swapchain) create(framebuffer core.Extent) error {
	support, err := s.device.Adapter.SurfaceSupport(s.surface)
	if err != nil {
		return core.Mark(err, core.ErrSwapchainCreation, "query surface support")
	}
	params, err := Negotiate(support, framebuffer)
	if err != nil {
		return core.Mark(err, core.ErrSwapchainCreation, "negotiate")
	}

	chain, err := s.device.Device.CreateSwapchain(core.SwapchainRequest{
		Surface:        s.surface,
		MinImageCount:  params.ImageCount,
		Format:         params.Format,
		Extent:         params.Extent,
		PresentMode:    params.PresentMode,
		Transform:      params.Transform,
		CompositeAlpha: params.CompositeAlpha,
		QueueFamilies:  s.device.Queues.Families(),
	})
	if err != nil {
		return core.Mark(err, core.ErrSwapchainCreation, "create swapchain")
	}

	images, err := chain.Images()
	if err != nil {
		chain.Destroy()
		return core.Mark(err, core.ErrSwapchainCreation, "swapchain images")
	}

	views := make([]core.ImageView, 0, len(images))
	for i, image := range images {
		view, err := s.device.Device.CreateImageView(image, params.Format.Format)
		if err != nil {
			for _, v := range views {
				v.Destroy()
			}
			chain.Destroy()
			return core.Mark(err, core.ErrSwapchainCreation, fmt.Sprintf("create image view %d", i))
		}
		views = append(views, view)
	}

	s.chain = chain
	s.images = images
	s.views = views
	s.params = params
	s.pending = ""
	s.state = StateReady
	s.generation++

	s.log.WithFields(log.Fields{
		"format":       params.Format.Format,
		"present_mode": params.PresentMode,
		"extent":       params.Extent.String(),
		"images":       len(images),
		"generation":   s.generation,
	}).Info("swapchain ready")
	return nil
}

func (s *Swapchain) release() {
	for _, v := range s.views {
		v.Destroy()
	}
	s.views = nil
	s.images = nil
	if s.chain != nil {
		s.chain.Destroy()
		s.chain = nil
	}
}
