// Command vkprobe prints every adapter the driver reports with its
// selection score as JSON. It can record the adapters into a capture
// archive and replay one instead of querying the driver.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/core/vulkan"
	"github.com/devblok/vkchain/device"
	"github.com/devblok/vkchain/utility/capture"
)

var (
	record = flag.String("record", "", "write a capture of every adapter to `file`")
	replay = flag.String("replay", "", "read adapters from the capture `file` instead of the driver")
	layers = flag.Bool("layers", false, "include instance layers and extensions in the report")
)

// Report is the JSON output
type Report struct {
	Adapters           []AdapterReport `json:"adapters"`
	Selected           string          `json:"selected,omitempty"`
	InstanceLayers     []string        `json:"instance_layers,omitempty"`
	InstanceExtensions []string        `json:"instance_extensions,omitempty"`
}

// AdapterReport is one adapter and its score
type AdapterReport struct {
	core.AdapterInfo
	API      string `json:"api"`
	Eligible bool   `json:"eligible"`
	Score    uint32 `json:"score"`
	Reason   string `json:"reason,omitempty"`
}

func main() {
	flag.Parse()

	cfg, err := core.LoadConfiguration()
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	logger := core.NewLogger(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("%+v", err)
	}
}

func run(cfg core.Configuration, logger *log.Logger) error {
	instance, err := open(cfg, logger)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	if *record != "" {
		if err := write(instance, *record); err != nil {
			return err
		}
		logger.WithField("file", *record).Info("capture written")
	}

	adapters, err := instance.Adapters()
	if err != nil {
		return errors.Wrap(err, "enumerate adapters")
	}

	selector := device.NewSelector(device.NewScorer(cfg.Device.MinAPIVersion, cfg.Device.Extensions), logger)
	selector.Preferred = cfg.Device.PreferredAdapter

	var report Report
	for _, c := range selector.Rank(adapters) {
		report.Adapters = append(report.Adapters, AdapterReport{
			AdapterInfo: c.Info,
			API:         core.VersionString(c.Info.APIVersion),
			Eligible:    c.Score.Eligible,
			Score:       c.Score.Value,
			Reason:      c.Score.Reason,
		})
	}
	if best, err := selector.SelectBest(adapters); err == nil {
		report.Selected = best.Info.Name
	} else {
		logger.WithError(err).Warn("no adapter selected")
	}

	if *layers && *replay == "" {
		if report.InstanceLayers, err = vulkan.InstanceLayers(); err != nil {
			return err
		}
		if report.InstanceExtensions, err = vulkan.InstanceExtensions(); err != nil {
			return err
		}
	}

	bytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	fmt.Printf("%s\n", bytes)
	return nil
}

func open(cfg core.Configuration, logger log.FieldLogger) (core.Instance, error) {
	if *replay == "" {
		return vulkan.NewInstance(vulkan.DefaultApplicationInfo, nil, cfg.Instance, logger)
	}

	ar, closer, err := capture.OpenFile(*replay)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return capture.Replay(ar)
}

func write(instance core.Instance, path string) error {
	builder, err := capture.Record(instance, "vkprobe")
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create capture")
	}
	if _, err := builder.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
