// Package fakegpu is an in-memory driver implementing the core interfaces.
// Every call is recorded in a Log so tests can check ordering. Submitted
// work completes immediately, a wait on a fence that nothing will signal
// fails instead of blocking.
package fakegpu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
)

// ErrNeverSignaled is returned by Fence.Wait on an unsignaled fence
// with no pending work.
var ErrNeverSignaled = errors.New("fakegpu: fence would never signal")

// Log records driver calls in order.
type Log struct {
	mu     sync.Mutex
	events []string
}

func (l *Log) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

// Record adds an event from outside the driver, e.g. a recorder
func (l *Log) Record(format string, args ...interface{}) {
	l.add(format, args...)
}

// Events returns a copy of the recorded events
func (l *Log) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// Matching returns events starting with prefix
func (l *Log) Matching(prefix string) []string {
	var out []string
	for _, e := range l.Events() {
		if strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Index returns the position of the first event starting with prefix
// at or after from, -1 if none
func (l *Log) Index(prefix string, from int) int {
	events := l.Events()
	for i := from; i < len(events); i++ {
		if strings.HasPrefix(events[i], prefix) {
			return i
		}
	}
	return -1
}

// Clear drops every recorded event
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// Instance is a fake core.Instance
type Instance struct {
	AdapterList []*Adapter
	Err         error
	Surf        *Surface
	Destroyed   bool
}

// Adapters implements core.Instance
func (i *Instance) Adapters() ([]core.Adapter, error) {
	if i.Err != nil {
		return nil, i.Err
	}
	out := make([]core.Adapter, len(i.AdapterList))
	for idx, a := range i.AdapterList {
		out[idx] = a
	}
	return out, nil
}

// Surface implements core.Instance
func (i *Instance) Surface() core.Surface {
	if i.Surf == nil {
		return nil
	}
	return i.Surf
}

// Destroy implements core.Instance
func (i *Instance) Destroy() {
	i.Destroyed = true
}

// Surface is a fake presentation surface
type Surface struct {
	Destroyed bool
}

// Destroy implements core.Surface
func (s *Surface) Destroy() {
	s.Destroyed = true
}

// Result is a scripted acquire or present outcome
type Result struct {
	Status core.PresentStatus
	Err    error
}

// Adapter is a fake core.Adapter. Present lists the families able to
// present to any surface.
type Adapter struct {
	Data       core.AdapterInfo
	Present    map[uint32]bool
	PresentErr error
	Support    core.SurfaceSupport
	SupportErr error
	CreateErr  error

	// Scripts handed to every device created from the adapter
	AcquireScript []Result
	PresentScript []Result

	Log     *Log
	Devices []*Device
}

func (a *Adapter) log() *Log {
	if a.Log == nil {
		a.Log = &Log{}
	}
	return a.Log
}

// Info implements core.Adapter
func (a *Adapter) Info() core.AdapterInfo {
	return a.Data
}

// SupportsPresent implements core.Adapter
func (a *Adapter) SupportsPresent(family uint32, surface core.Surface) (bool, error) {
	a.log().add("query present family=%d", family)
	if a.PresentErr != nil {
		return false, a.PresentErr
	}
	return a.Present[family], nil
}

// SurfaceSupport implements core.Adapter
func (a *Adapter) SurfaceSupport(surface core.Surface) (core.SurfaceSupport, error) {
	a.log().add("query surface")
	if a.SupportErr != nil {
		return core.SurfaceSupport{}, a.SupportErr
	}
	return a.Support, nil
}

// CreateDevice implements core.Adapter
func (a *Adapter) CreateDevice(req core.DeviceRequest) (core.Device, error) {
	a.log().add("create device queues=%d extensions=%s", len(req.Queues), strings.Join(req.Extensions, ","))
	if a.CreateErr != nil {
		return nil, a.CreateErr
	}
	d := &Device{
		Request:       req,
		Adapter:       a,
		Log:           a.log(),
		AcquireScript: append([]Result(nil), a.AcquireScript...),
		PresentScript: append([]Result(nil), a.PresentScript...),
		live:          map[string]int{},
		created:       map[string]int{},
		queues:        map[[2]uint32]*Queue{},
	}
	a.Devices = append(a.Devices, d)
	return d, nil
}

// Device is a fake core.Device
type Device struct {
	Request core.DeviceRequest
	Adapter *Adapter
	Log     *Log

	AcquireScript []Result
	PresentScript []Result

	SwapchainErr error
	ViewErr      error
	IdleErr      error

	IdleWaits int
	Destroyed bool
	Chains    []*Swapchain

	nextID  int
	live    map[string]int
	created map[string]int
	queues  map[[2]uint32]*Queue
}

func (d *Device) newID(kind string) int {
	d.nextID++
	d.live[kind]++
	d.created[kind]++
	return d.nextID
}

func (d *Device) release(kind string) {
	d.live[kind]--
}

// Live returns the number of objects of kind not yet destroyed.
// Kinds: chain, view, fence, sem, pool, cmd.
func (d *Device) Live(kind string) int {
	return d.live[kind]
}

// Created returns the number of objects of kind ever created
func (d *Device) Created(kind string) int {
	return d.created[kind]
}

// Queue implements core.Device
func (d *Device) Queue(family, index uint32) core.Queue {
	key := [2]uint32{family, index}
	if q, ok := d.queues[key]; ok {
		return q
	}
	q := &Queue{Family: family, Index: index, device: d}
	d.queues[key] = q
	return q
}

// WaitIdle implements core.Device
func (d *Device) WaitIdle() error {
	d.IdleWaits++
	d.Log.add("wait idle")
	return d.IdleErr
}

// CreateSwapchain implements core.Device. The chain has exactly
// MinImageCount images.
func (d *Device) CreateSwapchain(req core.SwapchainRequest) (core.Swapchain, error) {
	if d.SwapchainErr != nil {
		return nil, d.SwapchainErr
	}
	s := &Swapchain{
		ID:      d.newID("chain"),
		Request: req,
		device:  d,
	}
	for i := uint32(0); i < req.MinImageCount; i++ {
		s.images = append(s.images, Image{Chain: s.ID, Index: i})
	}
	d.Chains = append(d.Chains, s)
	d.Log.add("create chain#%d images=%d extent=%s", s.ID, len(s.images), req.Extent)
	return s, nil
}

// CreateImageView implements core.Device
func (d *Device) CreateImageView(image core.Image, format vk.Format) (core.ImageView, error) {
	if d.ViewErr != nil {
		return nil, d.ViewErr
	}
	v := &ImageView{ID: d.newID("view"), Image: image.(Image), device: d}
	d.Log.add("create view#%d", v.ID)
	return v, nil
}

// CreateFence implements core.Device
func (d *Device) CreateFence(signaled bool) (core.Fence, error) {
	f := &Fence{ID: d.newID("fence"), Signaled: signaled, device: d}
	d.Log.add("create fence#%d signaled=%t", f.ID, signaled)
	return f, nil
}

// CreateSemaphore implements core.Device
func (d *Device) CreateSemaphore() (core.Semaphore, error) {
	s := &Semaphore{ID: d.newID("sem"), device: d}
	d.Log.add("create sem#%d", s.ID)
	return s, nil
}

// CreateCommandPool implements core.Device
func (d *Device) CreateCommandPool(family uint32) (core.CommandPool, error) {
	p := &CommandPool{ID: d.newID("pool"), Family: family, device: d}
	d.Log.add("create pool#%d family=%d", p.ID, family)
	return p, nil
}

// Destroy implements core.Device
func (d *Device) Destroy() {
	d.Destroyed = true
	d.Log.add("destroy device")
}

// Image is a fake swapchain image
type Image struct {
	Chain int
	Index uint32
}

// Swapchain is a fake core.Swapchain
type Swapchain struct {
	ID        int
	Request   core.SwapchainRequest
	Destroyed bool

	device *Device
	images []core.Image
	next   uint32
}

// Images implements core.Swapchain
func (s *Swapchain) Images() ([]core.Image, error) {
	return append([]core.Image(nil), s.images...), nil
}

// AcquireNextImage implements core.Swapchain
func (s *Swapchain) AcquireNextImage(signal core.Semaphore) (uint32, core.PresentStatus, error) {
	if s.Destroyed {
		return 0, core.PresentOK, errors.Newf("fakegpu: acquire on destroyed chain#%d", s.ID)
	}
	res := s.device.nextAcquire()
	if res.Err != nil || res.Status == core.PresentOutOfDate {
		s.device.Log.add("acquire chain#%d signal=%s -> %s", s.ID, name(signal), outcome(res))
		return 0, res.Status, res.Err
	}
	index := s.next % uint32(len(s.images))
	s.next++
	s.device.Log.add("acquire chain#%d signal=%s -> image=%d %s", s.ID, name(signal), index, outcome(res))
	return index, res.Status, nil
}

// Destroy implements core.Swapchain
func (s *Swapchain) Destroy() {
	if s.Destroyed {
		return
	}
	s.Destroyed = true
	s.device.release("chain")
	s.device.Log.add("destroy chain#%d", s.ID)
}

func (d *Device) nextAcquire() Result {
	if len(d.AcquireScript) == 0 {
		return Result{}
	}
	res := d.AcquireScript[0]
	d.AcquireScript = d.AcquireScript[1:]
	return res
}

func (d *Device) nextPresent() Result {
	if len(d.PresentScript) == 0 {
		return Result{}
	}
	res := d.PresentScript[0]
	d.PresentScript = d.PresentScript[1:]
	return res
}

// ImageView is a fake core.ImageView
type ImageView struct {
	ID        int
	Image     Image
	Destroyed bool
	device    *Device
}

// Destroy implements core.ImageView
func (v *ImageView) Destroy() {
	if v.Destroyed {
		return
	}
	v.Destroyed = true
	v.device.release("view")
	v.device.Log.add("destroy view#%d", v.ID)
}

// Fence is a fake core.Fence
type Fence struct {
	ID        int
	Signaled  bool
	Destroyed bool
	device    *Device
}

// Wait implements core.Fence
func (f *Fence) Wait() error {
	f.device.Log.add("wait fence#%d", f.ID)
	if !f.Signaled {
		return errors.Wrapf(ErrNeverSignaled, "fence#%d", f.ID)
	}
	return nil
}

// Reset implements core.Fence
func (f *Fence) Reset() error {
	f.device.Log.add("reset fence#%d", f.ID)
	f.Signaled = false
	return nil
}

// Destroy implements core.Fence
func (f *Fence) Destroy() {
	if f.Destroyed {
		return
	}
	f.Destroyed = true
	f.device.release("fence")
	f.device.Log.add("destroy fence#%d", f.ID)
}

// Semaphore is a fake core.Semaphore
type Semaphore struct {
	ID        int
	Destroyed bool
	device    *Device
}

// Destroy implements core.Semaphore
func (s *Semaphore) Destroy() {
	if s.Destroyed {
		return
	}
	s.Destroyed = true
	s.device.release("sem")
	s.device.Log.add("destroy sem#%d", s.ID)
}

// CommandPool is a fake core.CommandPool
type CommandPool struct {
	ID        int
	Family    uint32
	Destroyed bool
	device    *Device
	buffers   []*CommandBuffer
}

// Allocate implements core.CommandPool
func (p *CommandPool) Allocate() (core.CommandBuffer, error) {
	c := &CommandBuffer{ID: p.device.newID("cmd"), device: p.device}
	p.buffers = append(p.buffers, c)
	p.device.Log.add("allocate cmd#%d pool#%d", c.ID, p.ID)
	return c, nil
}

// Destroy implements core.CommandPool, freeing its buffers
func (p *CommandPool) Destroy() {
	if p.Destroyed {
		return
	}
	p.Destroyed = true
	for range p.buffers {
		p.device.release("cmd")
	}
	p.device.release("pool")
	p.device.Log.add("destroy pool#%d", p.ID)
}

// CommandBuffer is a fake core.CommandBuffer
type CommandBuffer struct {
	ID        int
	Recording bool
	device    *Device
}

// Reset implements core.CommandBuffer
func (c *CommandBuffer) Reset() error {
	c.device.Log.add("reset cmd#%d", c.ID)
	c.Recording = false
	return nil
}

// Begin implements core.CommandBuffer
func (c *CommandBuffer) Begin() error {
	if c.Recording {
		return errors.Newf("fakegpu: cmd#%d already recording", c.ID)
	}
	c.device.Log.add("begin cmd#%d", c.ID)
	c.Recording = true
	return nil
}

// End implements core.CommandBuffer
func (c *CommandBuffer) End() error {
	if !c.Recording {
		return errors.Newf("fakegpu: cmd#%d not recording", c.ID)
	}
	c.device.Log.add("end cmd#%d", c.ID)
	c.Recording = false
	return nil
}

// Queue is a fake core.Queue
type Queue struct {
	Family uint32
	Index  uint32
	device *Device
}

// Submit implements core.Queue. The work completes at once and
// signals the fence.
func (q *Queue) Submit(sub core.Submission) error {
	q.device.Log.add("submit %s wait=%s stage=%d signal=%s fence=%s queue=%d",
		name(sub.Command), name(sub.Wait), sub.WaitStage, name(sub.Signal), name(sub.Fence), q.Family)
	if f, ok := sub.Fence.(*Fence); ok {
		f.Signaled = true
	}
	return nil
}

// Present implements core.Queue
func (q *Queue) Present(chain core.Swapchain, image uint32, wait core.Semaphore) (core.PresentStatus, error) {
	res := q.device.nextPresent()
	q.device.Log.add("present %s image=%d wait=%s queue=%d -> %s",
		name(chain), image, name(wait), q.Family, outcome(res))
	return res.Status, res.Err
}

func name(obj interface{}) string {
	switch o := obj.(type) {
	case *Fence:
		return fmt.Sprintf("fence#%d", o.ID)
	case *Semaphore:
		return fmt.Sprintf("sem#%d", o.ID)
	case *CommandBuffer:
		return fmt.Sprintf("cmd#%d", o.ID)
	case *Swapchain:
		return fmt.Sprintf("chain#%d", o.ID)
	case *ImageView:
		return fmt.Sprintf("view#%d", o.ID)
	case nil:
		return "none"
	}
	return fmt.Sprintf("%T", obj)
}

// Name returns the log name of a fake object
func Name(obj interface{}) string {
	return name(obj)
}

func outcome(res Result) string {
	if res.Err != nil {
		return "error"
	}
	return res.Status.String()
}

// Window is a fake core.Window. FramebufferSize reports the first
// entry of Sizes, every WaitEvents moves to the next one. CloseAfter
// closes the window once that many WaitEvents calls returned.
type Window struct {
	Sizes      []core.Extent
	Waits      int
	CloseAfter int
	Quit       bool
}

// FramebufferSize implements core.Window
func (w *Window) FramebufferSize() (uint32, uint32) {
	if len(w.Sizes) == 0 {
		return 0, 0
	}
	return w.Sizes[0].Width, w.Sizes[0].Height
}

// WaitEvents implements core.Window
func (w *Window) WaitEvents() {
	w.Waits++
	if len(w.Sizes) > 1 {
		w.Sizes = w.Sizes[1:]
	}
	if w.CloseAfter > 0 && w.Waits >= w.CloseAfter {
		w.Quit = true
	}
}

// Closed implements core.Window
func (w *Window) Closed() bool {
	return w.Quit
}
