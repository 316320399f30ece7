package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
)

// Adapter is a physical device
type Adapter struct {
	gpu  vk.PhysicalDevice
	info core.AdapterInfo
}

func newAdapter(gpu vk.PhysicalDevice) (*Adapter, error) {
	a := &Adapter{gpu: gpu}

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	a.info = core.AdapterInfo{
		ID:            int(props.DeviceID),
		VendorID:      int(props.VendorID),
		DriverVersion: int(props.DriverVersion),
		Name:          vk.ToString(props.DeviceName[:]),
		APIVersion:    props.ApiVersion,
		Type:          props.DeviceType,
	}

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &familyCount, families)
	for _, family := range families[:familyCount] {
		family.Deref()
		a.info.QueueFamilies = append(a.info.QueueFamilies, core.QueueFamily{
			Flags: family.QueueFlags,
			Count: family.QueueCount,
		})
	}

	var extCount uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(gpu, "", &extCount, nil)); err != nil {
		return nil, errors.Wrapf(err, "vk.EnumerateDeviceExtensionProperties(%s)", a.info.Name)
	}
	exts := make([]vk.ExtensionProperties, extCount)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(gpu, "", &extCount, exts)); err != nil {
		return nil, errors.Wrapf(err, "vk.EnumerateDeviceExtensionProperties(%s)", a.info.Name)
	}
	for _, ext := range exts[:extCount] {
		ext.Deref()
		a.info.Extensions = append(a.info.Extensions, vk.ToString(ext.ExtensionName[:]))
	}

	var layerCount uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(gpu, &layerCount, nil)); err != nil {
		return nil, errors.Wrapf(err, "vk.EnumerateDeviceLayerProperties(%s)", a.info.Name)
	}
	layers := make([]vk.LayerProperties, layerCount)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(gpu, &layerCount, layers)); err != nil {
		return nil, errors.Wrapf(err, "vk.EnumerateDeviceLayerProperties(%s)", a.info.Name)
	}
	for _, layer := range layers[:layerCount] {
		layer.Deref()
		a.info.Layers = append(a.info.Layers, vk.ToString(layer.LayerName[:]))
	}

	var memory vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &memory)
	memory.Deref()
	for i := uint32(0); i < memory.MemoryHeapCount; i++ {
		memory.MemoryHeaps[i].Deref()
		a.info.Memory += uint64(memory.MemoryHeaps[i].Size)
	}
	return a, nil
}

// Info implements core.Adapter
func (a *Adapter) Info() core.AdapterInfo {
	return a.info
}

// SupportsPresent implements core.Adapter
func (a *Adapter) SupportsPresent(family uint32, surface core.Surface) (bool, error) {
	handle, err := surfaceHandle(surface)
	if err != nil {
		return false, err
	}
	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(a.gpu, family, handle, &supported)); err != nil {
		return false, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceSupport()")
	}
	return supported == vk.True, nil
}

// SurfaceSupport implements core.Adapter
func (a *Adapter) SurfaceSupport(surface core.Surface) (core.SurfaceSupport, error) {
	handle, err := surfaceHandle(surface)
	if err != nil {
		return core.SurfaceSupport{}, err
	}

	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(a.gpu, handle, &caps)); err != nil {
		return core.SurfaceSupport{}, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceCapabilities()")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	support := core.SurfaceSupport{
		Capabilities: core.SurfaceCapabilities{
			MinImageCount:           caps.MinImageCount,
			MaxImageCount:           caps.MaxImageCount,
			CurrentExtent:           extent(caps.CurrentExtent),
			MinImageExtent:          extent(caps.MinImageExtent),
			MaxImageExtent:          extent(caps.MaxImageExtent),
			SupportedTransforms:     caps.SupportedTransforms,
			CurrentTransform:        caps.CurrentTransform,
			SupportedCompositeAlpha: caps.SupportedCompositeAlpha,
		},
	}

	var formatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(a.gpu, handle, &formatCount, nil)); err != nil {
		return core.SurfaceSupport{}, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(a.gpu, handle, &formatCount, formats)); err != nil {
		return core.SurfaceSupport{}, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}
	for _, f := range formats[:formatCount] {
		f.Deref()
		support.Formats = append(support.Formats, core.SurfaceFormat{
			Format:     f.Format,
			ColorSpace: f.ColorSpace,
		})
	}

	var modeCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(a.gpu, handle, &modeCount, nil)); err != nil {
		return core.SurfaceSupport{}, errors.Wrap(err, "vk.GetPhysicalDeviceSurfacePresentModes()")
	}
	modes := make([]vk.PresentMode, modeCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(a.gpu, handle, &modeCount, modes)); err != nil {
		return core.SurfaceSupport{}, errors.Wrap(err, "vk.GetPhysicalDeviceSurfacePresentModes()")
	}
	support.PresentModes = modes[:modeCount]
	return support, nil
}

// CreateDevice implements core.Adapter
func (a *Adapter) CreateDevice(req core.DeviceRequest) (core.Device, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(req.Queues))
	for _, q := range req.Queues {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.Family,
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(req.Extensions)),
		PpEnabledExtensionNames: core.SafeStrings(req.Extensions),
		EnabledLayerCount:       uint32(len(req.Layers)),
		PpEnabledLayerNames:     core.SafeStrings(req.Layers),
	}

	var handle vk.Device
	if err := vk.Error(vk.CreateDevice(a.gpu, &dci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDevice()")
	}
	return &Device{handle: handle}, nil
}

func extent(e vk.Extent2D) core.Extent {
	return core.Extent{Width: e.Width, Height: e.Height}
}
