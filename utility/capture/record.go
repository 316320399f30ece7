// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/devblok/vkchain/core"
)

const adapterPrefix = "adapters/"

// Snapshot is what one adapter reported. Present and Support are
// empty when there was no surface to query.
type Snapshot struct {
	Info    core.AdapterInfo
	Present []bool               `json:",omitempty"`
	Support *core.SurfaceSupport `json:",omitempty"`
}

// Take queries adapter, and surface support when surface is not nil
func Take(adapter core.Adapter, surface core.Surface) (Snapshot, error) {
	s := Snapshot{Info: adapter.Info()}
	if surface == nil {
		return s, nil
	}
	for i := range s.Info.QueueFamilies {
		present, err := adapter.SupportsPresent(uint32(i), surface)
		if err != nil {
			return Snapshot{}, errors.Wrapf(err, "%s: present support of family %d", s.Info.Name, i)
		}
		s.Present = append(s.Present, present)
	}
	support, err := adapter.SurfaceSupport(surface)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "%s: surface support", s.Info.Name)
	}
	s.Support = &support
	return s, nil
}

// Record snapshots every adapter of instance into a Builder, one
// JSON entry per adapter in driver order
func Record(instance core.Instance, author string) (*Builder, error) {
	adapters, err := instance.Adapters()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate adapters")
	}

	b := NewBuilder(Header{
		Author:      author,
		DateCreated: time.Now().Unix(),
	})
	for i, adapter := range adapters {
		snapshot, err := Take(adapter, instance.Surface())
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(snapshot)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", snapshot.Info.Name)
		}
		if err := b.Add(fmt.Sprintf("%s%02d.json", adapterPrefix, i), data); err != nil {
			return nil, err
		}
	}
	return b, nil
}
