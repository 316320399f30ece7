package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
)

// SwapchainUsage is the usage of every swapchain image. Transfer
// destination allows clearing images without a render pass.
const SwapchainUsage = vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit

// Device is a logical device
type Device struct {
	handle vk.Device
}

// Handle returns the vk.Device
func (d *Device) Handle() vk.Device {
	return d.handle
}

// Queue implements core.Device
func (d *Device) Queue(family, index uint32) core.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.handle, family, index, &queue)
	return &Queue{handle: queue, family: family}
}

// WaitIdle implements core.Device
func (d *Device) WaitIdle() error {
	return errors.Wrap(vk.Error(vk.DeviceWaitIdle(d.handle)), "vk.DeviceWaitIdle()")
}

// CreateSwapchain implements core.Device. Images are shared concurrently
// when the request names more than one queue family.
func (d *Device) CreateSwapchain(req core.SwapchainRequest) (core.Swapchain, error) {
	surface, err := surfaceHandle(req.Surface)
	if err != nil {
		return nil, err
	}

	scci := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         surface,
		MinImageCount:   req.MinImageCount,
		ImageFormat:     req.Format.Format,
		ImageColorSpace: req.Format.ColorSpace,
		ImageExtent: vk.Extent2D{
			Width:  req.Extent.Width,
			Height: req.Extent.Height,
		},
		ImageUsage:       vk.ImageUsageFlags(SwapchainUsage),
		PreTransform:     req.Transform,
		CompositeAlpha:   req.CompositeAlpha,
		PresentMode:      req.PresentMode,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
	}
	if len(req.QueueFamilies) > 1 {
		scci.ImageSharingMode = vk.SharingModeConcurrent
		scci.QueueFamilyIndexCount = uint32(len(req.QueueFamilies))
		scci.PQueueFamilyIndices = req.QueueFamilies
	}

	var handle vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(d.handle, &scci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateSwapchain()")
	}
	return &Swapchain{device: d.handle, handle: handle}, nil
}

// CreateImageView implements core.Device
func (d *Device) CreateImageView(image core.Image, format vk.Format) (core.ImageView, error) {
	img, ok := image.(vk.Image)
	if !ok {
		return nil, errors.Newf("not a vulkan image: %T", image)
	}

	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: colorRange,
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(d.handle, &ivci, nil, &view)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateImageView()")
	}
	return &ImageView{device: d.handle, handle: view}, nil
}

// CreateFence implements core.Device
func (d *Device) CreateFence(signaled bool) (core.Fence, error) {
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fci.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if err := vk.Error(vk.CreateFence(d.handle, &fci, nil, &fence)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateFence()")
	}
	return &Fence{device: d.handle, handle: fence}, nil
}

// CreateSemaphore implements core.Device
func (d *Device) CreateSemaphore() (core.Semaphore, error) {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var semaphore vk.Semaphore
	if err := vk.Error(vk.CreateSemaphore(d.handle, &sci, nil, &semaphore)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateSemaphore()")
	}
	return &Semaphore{device: d.handle, handle: semaphore}, nil
}

// CreateCommandPool implements core.Device. Buffers from the pool
// can be reset one by one.
func (d *Device) CreateCommandPool(family uint32) (core.CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}

	var pool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(d.handle, &cpci, nil, &pool)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateCommandPool()")
	}
	return &CommandPool{device: d.handle, handle: pool}, nil
}

// Destroy implements core.Device
func (d *Device) Destroy() {
	if d.handle == nil {
		return
	}
	vk.DestroyDevice(d.handle, nil)
	d.handle = nil
}

var colorRange = vk.ImageSubresourceRange{
	AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
	BaseMipLevel:   0,
	LevelCount:     1,
	BaseArrayLayer: 0,
	LayerCount:     1,
}

// Swapchain is a present chain
type Swapchain struct {
	device vk.Device
	handle vk.Swapchain
}

// Images implements core.Swapchain
func (s *Swapchain) Images() ([]core.Image, error) {
	var count uint32
	if err := vk.Error(vk.GetSwapchainImages(s.device, s.handle, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetSwapchainImages(num)")
	}
	images := make([]vk.Image, count)
	if err := vk.Error(vk.GetSwapchainImages(s.device, s.handle, &count, images)); err != nil {
		return nil, errors.Wrap(err, "vk.GetSwapchainImages(images)")
	}
	out := make([]core.Image, count)
	for i, image := range images[:count] {
		out[i] = image
	}
	return out, nil
}

// AcquireNextImage implements core.Swapchain, it waits for an image
// without a timeout
func (s *Swapchain) AcquireNextImage(signal core.Semaphore) (uint32, core.PresentStatus, error) {
	var index uint32
	ret := vk.AcquireNextImage(s.device, s.handle, math.MaxUint64, semaphoreHandle(signal), vk.NullFence, &index)
	status, err := presentStatus(ret)
	if err != nil {
		return 0, status, errors.Wrap(err, "vk.AcquireNextImage()")
	}
	return index, status, nil
}

// Destroy implements core.Swapchain
func (s *Swapchain) Destroy() {
	if s.handle == vk.NullSwapchain {
		return
	}
	vk.DestroySwapchain(s.device, s.handle, nil)
	s.handle = vk.NullSwapchain
}

// ImageView is a view of a swapchain image
type ImageView struct {
	device vk.Device
	handle vk.ImageView
}

// Handle returns the vk.ImageView
func (v *ImageView) Handle() vk.ImageView {
	return v.handle
}

// Destroy implements core.ImageView
func (v *ImageView) Destroy() {
	if v.handle == vk.NullImageView {
		return
	}
	vk.DestroyImageView(v.device, v.handle, nil)
	v.handle = vk.NullImageView
}
