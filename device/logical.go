package device

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkchain/core"
)

// LogicalDevice is a device created on the selected adapter,
// with one queue view per role.
type LogicalDevice struct {
	Adapter    core.Adapter
	Device     core.Device
	Queues     QueueAssignment
	Extensions []string

	roles map[QueueRole]core.Queue
}

// Queue returns the queue used for role, views share the
// underlying queue when roles share a family.
func (d *LogicalDevice) Queue(role QueueRole) core.Queue {
	return d.roles[role]
}

// Family returns the queue family used for role
func (d *LogicalDevice) Family(role QueueRole) uint32 {
	family, _ := d.Queues.Index(role)
	return family
}

// Destroy destroys the device. Everything created from it
// must be destroyed before.
func (d *LogicalDevice) Destroy() {
	if d == nil || d.Device == nil {
		return
	}
	d.Device.Destroy()
	d.Device = nil
	d.roles = nil
}

// Build creates a logical device with one queue per distinct family of
// queues and the extensions enabled as given. Failure to create the
// device is fatal and marked ErrDeviceCreation.
func Build(adapter core.Adapter, queues QueueAssignment, extensions []string, logger log.FieldLogger) (*LogicalDevice, error) {
	if err := queues.Err(); err != nil {
		return nil, err
	}

	req := core.DeviceRequest{
		Extensions: extensions,
	}
	for _, family := range queues.Families() {
		req.Queues = append(req.Queues, core.QueueRequest{
			Family:     family,
			Priorities: []float32{1.0},
		})
	}

	dev, err := adapter.CreateDevice(req)
	if err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "create device on %s", adapter.Info().Name),
			core.ErrDeviceCreation)
	}

	ld := &LogicalDevice{
		Adapter:    adapter,
		Device:     dev,
		Queues:     queues,
		Extensions: extensions,
		roles:      map[QueueRole]core.Queue{},
	}
	for _, role := range Roles {
		family, _ := queues.Index(role)
		ld.roles[role] = dev.Queue(family, 0)
	}

	core.LoggerOr(logger).WithFields(log.Fields{
		"graphics": ld.Family(RoleGraphics),
		"present":  ld.Family(RolePresentation),
		"shared":   queues.Shared(),
	}).Info("logical device created")
	return ld, nil
}

// Open runs queue resolution and Build for a selected candidate
func Open(c Candidate, surface core.Surface, extensions []string, logger log.FieldLogger) (*LogicalDevice, error) {
	queues, err := ResolveQueues(c.Adapter, surface)
	if err != nil {
		return nil, err
	}
	return Build(c.Adapter, queues, extensions, logger)
}
