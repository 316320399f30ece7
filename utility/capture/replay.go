// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/devblok/vkchain/core"
)

// Instance replays a capture as a core.Instance. Its adapters answer
// every query from the capture and cannot create devices.
type Instance struct {
	adapters []core.Adapter
	surface  *Surface
}

// Replay loads every adapter snapshot of archive
func Replay(archive *Archive) (*Instance, error) {
	var names []string
	for _, name := range archive.Names() {
		if strings.HasPrefix(name, adapterPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	i := &Instance{surface: &Surface{}}
	for _, name := range names {
		data, err := archive.ReadAll(name)
		if err != nil {
			return nil, err
		}
		var snapshot Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "decode %s", name), ErrFileFormat)
		}
		i.adapters = append(i.adapters, &Adapter{Snapshot: snapshot})
	}
	return i, nil
}

// Adapters implements core.Instance
func (i *Instance) Adapters() ([]core.Adapter, error) {
	return append([]core.Adapter(nil), i.adapters...), nil
}

// Surface implements core.Instance, the surface stands for the one
// the capture was taken with
func (i *Instance) Surface() core.Surface {
	return i.surface
}

// Destroy implements core.Instance
func (i *Instance) Destroy() {}

// Surface is the recorded surface
type Surface struct{}

// Destroy implements core.Surface
func (*Surface) Destroy() {}

// Adapter is a recorded adapter
type Adapter struct {
	Snapshot Snapshot
}

// Info implements core.Adapter
func (a *Adapter) Info() core.AdapterInfo {
	return a.Snapshot.Info
}

// SupportsPresent implements core.Adapter
func (a *Adapter) SupportsPresent(family uint32, surface core.Surface) (bool, error) {
	if a.Snapshot.Present == nil {
		return false, errors.Newf("%s: capture has no surface", a.Snapshot.Info.Name)
	}
	if int(family) >= len(a.Snapshot.Present) {
		return false, errors.Newf("%s: no queue family %d", a.Snapshot.Info.Name, family)
	}
	return a.Snapshot.Present[family], nil
}

// SurfaceSupport implements core.Adapter
func (a *Adapter) SurfaceSupport(surface core.Surface) (core.SurfaceSupport, error) {
	if a.Snapshot.Support == nil {
		return core.SurfaceSupport{}, errors.Newf("%s: capture has no surface", a.Snapshot.Info.Name)
	}
	return *a.Snapshot.Support, nil
}

// CreateDevice implements core.Adapter, it always fails with ErrReplayOnly
func (a *Adapter) CreateDevice(req core.DeviceRequest) (core.Device, error) {
	return nil, errors.Mark(errors.Newf("create device on %s", a.Snapshot.Info.Name), core.ErrReplayOnly)
}
