// Command vkchain opens a window, selects the best adapter and presents
// frames cleared to a cycling colour until the window is closed.
package main

import (
	"flag"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/core/renderer"
	"github.com/devblok/vkchain/core/vulkan"
	"github.com/devblok/vkchain/device"
	"github.com/devblok/vkchain/window"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	cfg, err := core.LoadConfiguration(flag.Args()...)
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	logger := core.NewLogger(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("%+v", err)
	}
}

func run(cfg core.Configuration, logger *log.Logger) error {
	win, err := window.New(cfg.Window, cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight)
	if err != nil {
		return err
	}
	defer win.Destroy()

	instanceCfg := cfg.Instance
	instanceCfg.Extensions = append(append([]string(nil), instanceCfg.Extensions...), win.InstanceExtensions()...)
	instance, err := vulkan.NewInstance(vulkan.DefaultApplicationInfo, win.ProcAddr(), instanceCfg, logger)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	ptr, err := win.CreateSurface(instance.Handle())
	if err != nil {
		return err
	}
	surface := instance.AttachSurface(ptr)

	selector := device.NewSelector(device.NewScorer(cfg.Device.MinAPIVersion, cfg.Device.Extensions), logger)
	selector.Preferred = cfg.Device.PreferredAdapter
	candidate, err := selector.SelectFrom(instance)
	if err != nil {
		return err
	}

	dev, err := device.Open(candidate, surface, cfg.Device.Extensions, logger)
	if err != nil {
		return err
	}
	defer dev.Destroy()

	recorder := vulkan.NewClearRecorder(mgl32.Vec4{0.8, 0.1, 0.1, 1})
	rd, err := renderer.New(dev, surface, win, recorder, cfg.Renderer, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rd.Destroy(); err != nil {
			logger.WithError(err).Error("renderer teardown")
		}
	}()

	time := core.NewTime(cfg.Time)
	defer time.Stop()

EventLoop:
	for {
		select {
		case <-time.EventTicker().C:
			events := win.Poll()
			if events.Quit {
				break EventLoop
			}
			if events.Resized {
				rd.Resize()
			}
		case <-time.FpsTicker().C:
			_, err := rd.DrawFrame()
			if errors.Is(err, core.ErrWindowClosed) {
				break EventLoop
			}
			if err != nil {
				return errors.Wrapf(err, "frame %d", rd.Frame())
			}
		}
	}

	logger.WithFields(log.Fields{
		"frames":  rd.Frame(),
		"skipped": rd.Skipped(),
		"chains":  rd.Swapchain().Generation(),
	}).Info("event loop exited")
	return nil
}
