// Package vulkan implements the core driver interfaces on top of
// github.com/vulkan-go/vulkan.
package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
)

// ValidationLayer is enabled in debug mode
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

const debugReportExtension = "VK_EXT_debug_report"

// DefaultApplicationInfo describes this application to the driver
var DefaultApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 3, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	EngineVersion:      vk.MakeVersion(1, 0, 0),
	PApplicationName:   "vkchain\x00",
	PEngineName:        "vkchain\x00",
}

// Instance is a Vulkan instance with an optional window surface
type Instance struct {
	handle  vk.Instance
	surface *Surface
	debug   vk.DebugReportCallback
	log     log.FieldLogger
	cfg     core.InstanceConfiguration
}

// NewInstance loads the driver and creates an instance. procAddr is the
// vkGetInstanceProcAddr of a window library, nil loads the system driver.
// Debug mode requires the validation layer and fails with
// ErrValidationLayerMissing when it is not installed.
func NewInstance(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, cfg core.InstanceConfiguration, logger log.FieldLogger) (*Instance, error) {
	if err := Load(procAddr); err != nil {
		return nil, err
	}

	if cfg.DebugMode {
		cfg.Layers = append(cfg.Layers, ValidationLayer)
		cfg.Extensions = append(cfg.Extensions, debugReportExtension)
	}

	if len(cfg.Layers) > 0 {
		available, err := InstanceLayers()
		if err != nil {
			return nil, err
		}
		if missing := core.MissingNames(cfg.Layers, available); len(missing) > 0 {
			return nil, errors.Mark(
				errors.Newf("instance layers not available: %v", missing),
				core.ErrValidationLayerMissing)
		}
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: core.SafeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     core.SafeStrings(cfg.Layers),
	}

	var handle vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	if err := vk.InitInstance(handle); err != nil {
		vk.DestroyInstance(handle, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}

	i := &Instance{
		handle: handle,
		log:    core.LoggerOr(logger),
		cfg:    cfg,
	}

	if cfg.DebugMode {
		dbgCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: i.debugReport,
		}
		if err := vk.Error(vk.CreateDebugReportCallback(handle, &dbgCreateInfo, nil, &i.debug)); err != nil {
			vk.DestroyInstance(handle, nil)
			return nil, errors.Wrap(err, "vk.CreateDebugReportCallback()")
		}
	}

	i.log.WithFields(log.Fields{
		"extensions": cfg.Extensions,
		"layers":     cfg.Layers,
	}).Debug("instance created")
	return i, nil
}

// Load points the bindings at a driver loader, procAddr nil uses the
// system loader
func Load(procAddr unsafe.Pointer) error {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}
	return errors.Wrap(vk.Init(), "vk.Init()")
}

func (i *Instance) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	entry := i.log.WithFields(log.Fields{
		"layer": pLayerPrefix,
		"code":  messageCode,
	})
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		entry.Error(pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		entry.Warn(pMessage)
	default:
		entry.Debug(pMessage)
	}
	return vk.Bool32(vk.False)
}

// Adapters implements core.Instance
func (i *Instance) Adapters() ([]core.Adapter, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(i.handle, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	gpus := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(i.handle, &count, gpus)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}

	adapters := make([]core.Adapter, 0, len(gpus))
	for _, gpu := range gpus[:count] {
		a, err := newAdapter(gpu)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// Handle returns the vk.Instance, window libraries need it to
// create surfaces
func (i *Instance) Handle() interface{} {
	return i.handle
}

// AttachSurface takes ownership of a surface created by a window library
func (i *Instance) AttachSurface(ptr uintptr) *Surface {
	i.surface = &Surface{
		instance: i.handle,
		handle:   vk.SurfaceFromPointer(ptr),
	}
	return i.surface
}

// Surface implements core.Instance
func (i *Instance) Surface() core.Surface {
	if i.surface == nil {
		return nil
	}
	return i.surface
}

// Extensions returns the enabled instance extensions
func (i *Instance) Extensions() []string {
	return i.cfg.Extensions
}

// Destroy destroys the surface, the debug callback and the instance
func (i *Instance) Destroy() {
	if i.handle == nil {
		return
	}
	if i.surface != nil {
		i.surface.Destroy()
		i.surface = nil
	}
	if i.debug != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.handle, i.debug, nil)
	}
	vk.DestroyInstance(i.handle, nil)
	i.handle = nil
}

// Surface is a window surface owned by an Instance
type Surface struct {
	instance vk.Instance
	handle   vk.Surface
}

// Destroy implements core.Surface
func (s *Surface) Destroy() {
	if s.handle == vk.NullSurface {
		return
	}
	vk.DestroySurface(s.instance, s.handle, nil)
	s.handle = vk.NullSurface
}

func surfaceHandle(s core.Surface) (vk.Surface, error) {
	surface, ok := s.(*Surface)
	if !ok || surface == nil {
		return vk.NullSurface, errors.Newf("not a vulkan surface: %T", s)
	}
	return surface.handle, nil
}

// InstanceLayers lists the layers the loader can enable
func InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	props := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	names := make([]string, 0, count)
	for _, layer := range props[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// InstanceExtensions lists the extensions the loader can enable
func InstanceExtensions() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, props)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	names := make([]string, 0, count)
	for _, ext := range props[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}
