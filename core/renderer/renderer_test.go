package renderer_test

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/core/renderer"
	"github.com/devblok/vkchain/internal/fakegpu"
)

func newRenderer(c *qt.C, r *rig, frames int, recorder renderer.Recorder) *renderer.Renderer {
	if recorder == nil {
		recorder = r.recorder()
	}
	rd, err := renderer.New(r.dev, r.surface, r.window, recorder, core.RendererConfiguration{FramesInFlight: frames}, nil)
	c.Assert(err, qt.IsNil)
	r.log.Clear()
	return rd
}

func TestDrawFrameOrder(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)
	rd := newRenderer(c, r, 2, nil)

	ok, err := rd.DrawFrame()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	slot := rd.Frames().Slot(0)
	fence := fakegpu.Name(slot.InFlight)
	cmd := fakegpu.Name(slot.Command)
	available := fakegpu.Name(slot.ImageAvailable)
	complete := fakegpu.Name(slot.RenderComplete)
	chain := fakegpu.Name(r.fake.Chains[0])

	c.Assert(r.log.Events(), qt.DeepEquals, []string{
		"wait " + fence,
		fmt.Sprintf("acquire %s signal=%s -> image=0 ok", chain, available),
		"reset " + cmd,
		"begin " + cmd,
		"record image=0 slot=0 frame=0",
		"end " + cmd,
		"reset " + fence,
		fmt.Sprintf("submit %s wait=%s stage=1024 signal=%s fence=%s queue=0", cmd, available, complete, fence),
		fmt.Sprintf("present %s image=0 wait=%s queue=0 -> ok", chain, complete),
	})
	c.Assert(rd.Frame(), qt.Equals, uint64(1))
	c.Assert(rd.Frames().Index(), qt.Equals, 1)
}

func TestDrawFrameTarget(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)

	var targets []renderer.Target
	rd := newRenderer(c, r, 2, renderer.RecorderFunc(func(cmd core.CommandBuffer, target renderer.Target) error {
		targets = append(targets, target)
		return nil
	}))

	for i := 0; i < 2; i++ {
		_, err := rd.DrawFrame()
		c.Assert(err, qt.IsNil)
	}
	c.Assert(targets, qt.HasLen, 2)

	s := rd.Swapchain()
	last := targets[1]
	c.Assert(last.ImageIndex, qt.Equals, uint32(1))
	c.Assert(last.Image, qt.Equals, s.Images()[1])
	c.Assert(last.View, qt.Equals, s.Views()[1])
	c.Assert(last.Format, qt.Equals, renderer.PreferredFormat)
	c.Assert(last.Extent, qt.Equals, core.Extent{Width: 800, Height: 600})
	c.Assert(last.Frame, qt.Equals, uint64(1))
	c.Assert(last.Slot, qt.Equals, 1)
}

func TestDrawFrameRotation(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)
	rd := newRenderer(c, r, 3, nil)

	for i := 0; i < 7; i++ {
		ok, err := rd.DrawFrame()
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
	}

	waits := r.log.Matching("wait fence#")
	c.Assert(waits, qt.HasLen, 7)
	for i, w := range waits {
		c.Assert(w, qt.Equals, "wait "+fakegpu.Name(rd.Frames().Slot(i%3).InFlight))
	}
	c.Assert(r.log.Matching("record "), qt.DeepEquals, []string{
		"record image=0 slot=0 frame=0",
		"record image=1 slot=1 frame=1",
		"record image=2 slot=2 frame=2",
		"record image=0 slot=0 frame=3",
		"record image=1 slot=1 frame=4",
		"record image=2 slot=2 frame=5",
		"record image=0 slot=0 frame=6",
	})
	c.Assert(rd.Frame(), qt.Equals, uint64(7))
	c.Assert(rd.Skipped(), qt.Equals, uint64(0))
	c.Assert(rd.Swapchain().Generation(), qt.Equals, 1)
}

func TestDrawFrameAcquireOutOfDate(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)
	rd := newRenderer(c, r, 2, nil)
	fence := fakegpu.Name(rd.Frames().Slot(0).InFlight)

	r.fake.AcquireScript = []fakegpu.Result{{Status: core.PresentOutOfDate}}
	ok, err := rd.DrawFrame()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	c.Assert(rd.Skipped(), qt.Equals, uint64(1))
	c.Assert(rd.Frame(), qt.Equals, uint64(0))
	c.Assert(r.log.Matching("reset fence#"), qt.HasLen, 0)
	c.Assert(r.log.Matching("submit "), qt.HasLen, 0)
	c.Assert(rd.Swapchain().State(), qt.Equals, renderer.StateReady)
	c.Assert(rd.Swapchain().Generation(), qt.Equals, 2)
	c.Assert(rd.Frames().Index(), qt.Equals, 0)

	r.log.Clear()
	ok, err = rd.DrawFrame()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(r.log.Events()[0], qt.Equals, "wait "+fence)
	c.Assert(r.log.Matching("present "), qt.DeepEquals, []string{
		fmt.Sprintf("present %s image=0 wait=%s queue=0 -> ok",
			fakegpu.Name(r.fake.Chains[1]), fakegpu.Name(rd.Frames().Slot(0).RenderComplete)),
	})
}

func TestDrawFrameSuboptimalPresent(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)
	rd := newRenderer(c, r, 2, nil)

	r.fake.PresentScript = []fakegpu.Result{{Status: core.PresentSuboptimal}}
	ok, err := rd.DrawFrame()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(rd.Swapchain().State(), qt.Equals, renderer.StateStale)

	r.log.Clear()
	r.window.Sizes = []core.Extent{{Width: 1280, Height: 720}}
	ok, err = rd.DrawFrame()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	idle := r.log.Index("wait idle", 0)
	create := r.log.Index("create chain#", 0)
	wait := r.log.Index("wait fence#", 0)
	c.Assert(idle < create, qt.IsTrue)
	c.Assert(create < wait, qt.IsTrue)
	c.Assert(rd.Swapchain().Generation(), qt.Equals, 2)
	c.Assert(rd.Swapchain().Extent(), qt.Equals, core.Extent{Width: 1280, Height: 720})
	c.Assert(rd.Skipped(), qt.Equals, uint64(0))
}

func TestDrawFrameAcquireSuboptimal(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)
	rd := newRenderer(c, r, 2, nil)

	r.fake.AcquireScript = []fakegpu.Result{{Status: core.PresentSuboptimal}}
	ok, err := rd.DrawFrame()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(r.log.Matching("present "), qt.HasLen, 1)
	c.Assert(rd.Swapchain().State(), qt.Equals, renderer.StateStale)
}

func TestDrawFrameErrors(t *testing.T) {
	c := qt.New(t)

	r := newRig(c)
	rd := newRenderer(c, r, 2, nil)
	r.fake.PresentScript = []fakegpu.Result{{Err: errors.New("device lost")}}
	ok, err := rd.DrawFrame()
	c.Assert(ok, qt.IsFalse)
	c.Assert(errors.Is(err, core.ErrPresentationEngine), qt.IsTrue)

	r = newRig(c)
	rd = newRenderer(c, r, 2, nil)
	r.fake.AcquireScript = []fakegpu.Result{{Err: errors.New("device lost")}}
	_, err = rd.DrawFrame()
	c.Assert(errors.Is(err, core.ErrPresentationEngine), qt.IsTrue)
	c.Assert(r.log.Matching("reset fence#"), qt.HasLen, 0)

	r = newRig(c)
	rd = newRenderer(c, r, 2, renderer.RecorderFunc(func(core.CommandBuffer, renderer.Target) error {
		return errors.New("boom")
	}))
	_, err = rd.DrawFrame()
	c.Assert(err, qt.ErrorMatches, "record frame: boom")
	c.Assert(r.log.Matching("submit "), qt.HasLen, 0)
	c.Assert(r.log.Matching("reset fence#"), qt.HasLen, 0)
}

func TestDrawFrameAfterRecordFailure(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)

	fail := true
	rd := newRenderer(c, r, 1, renderer.RecorderFunc(func(core.CommandBuffer, renderer.Target) error {
		if fail {
			fail = false
			return errors.New("boom")
		}
		return nil
	}))

	_, err := rd.DrawFrame()
	c.Assert(err, qt.ErrorMatches, "record frame: boom")

	ok, err := rd.DrawFrame()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(rd.Frame(), qt.Equals, uint64(1))
}

func TestResize(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)
	rd := newRenderer(c, r, 2, nil)

	r.window.Sizes = []core.Extent{{Width: 1920, Height: 1080}}
	rd.Resize()
	c.Assert(rd.Swapchain().State(), qt.Equals, renderer.StateStale)

	ok, err := rd.DrawFrame()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(rd.Swapchain().Extent(), qt.Equals, core.Extent{Width: 1920, Height: 1080})
	c.Assert(rd.Swapchain().Generation(), qt.Equals, 2)
}

func TestResizeWindowClosed(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)
	rd := newRenderer(c, r, 2, nil)

	r.window.Sizes = []core.Extent{{}}
	r.window.Quit = true
	rd.Resize()

	ok, err := rd.DrawFrame()
	c.Assert(ok, qt.IsFalse)
	c.Assert(errors.Is(err, core.ErrWindowClosed), qt.IsTrue)
	c.Assert(r.window.Waits, qt.Equals, 0)
	c.Assert(r.log.Matching("wait fence#"), qt.HasLen, 0)
}

func TestNewRendererFrames(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)

	_, err := renderer.New(r.dev, r.surface, r.window, r.recorder(), core.RendererConfiguration{}, nil)
	c.Assert(err, qt.ErrorMatches, "frame set needs at least one slot, got 0")
	c.Assert(r.fake.Live("chain"), qt.Equals, 0)
	c.Assert(r.fake.Live("view"), qt.Equals, 0)
}

func TestRendererDestroy(t *testing.T) {
	c := qt.New(t)
	r := newRig(c)
	rd := newRenderer(c, r, 2, nil)

	for i := 0; i < 3; i++ {
		_, err := rd.DrawFrame()
		c.Assert(err, qt.IsNil)
	}

	r.log.Clear()
	c.Assert(rd.Destroy(), qt.IsNil)
	c.Assert(r.log.Events()[0], qt.Equals, "wait idle")
	c.Assert(r.live(), qt.DeepEquals, map[string]int{"chain": 0, "view": 0, "fence": 0, "sem": 0, "pool": 0, "cmd": 0})
	c.Assert(r.fake.Destroyed, qt.IsFalse)
}
