package core_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/vkchain/core"
)

func TestSafeStrings(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.SafeString("VK_KHR_swapchain"), qt.Equals, "VK_KHR_swapchain\x00")
	c.Assert(core.SafeString("VK_KHR_swapchain\x00"), qt.Equals, "VK_KHR_swapchain\x00")
	c.Assert(core.SafeStrings([]string{"a", "b\x00"}), qt.DeepEquals, []string{"a\x00", "b\x00"})
	c.Assert(core.SafeStrings(nil), qt.HasLen, 0)
}

func TestMissingNames(t *testing.T) {
	c := qt.New(t)

	available := []string{"VK_KHR_swapchain", "VK_KHR_maintenance1\x00"}
	c.Assert(core.MissingNames([]string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}, available), qt.IsNil)
	c.Assert(core.MissingNames([]string{"vk_khr_swapchain"}, available), qt.DeepEquals, []string{"vk_khr_swapchain"})
	c.Assert(core.MissingNames([]string{"VK_KHR_swap"}, available), qt.DeepEquals, []string{"VK_KHR_swap"})
}

func TestExtent(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.Extent{Width: 0, Height: 10}.Zero(), qt.IsTrue)
	c.Assert(core.Extent{Width: 10, Height: 10}.Zero(), qt.IsFalse)
	c.Assert(core.Extent{Width: 800, Height: 600}.String(), qt.Equals, "800x600")
}

func TestTime(t *testing.T) {
	c := qt.New(t)

	tm := core.NewTime(core.TimeConfiguration{FramesPerSecond: 50, EventPollDelay: 20})
	defer tm.Stop()

	c.Assert(tm.Fps(), qt.Equals, 50)
	c.Assert(tm.FrameDelay(), qt.Equals, 20*time.Millisecond)
	c.Assert(tm.EventDelay(), qt.Equals, 20*time.Millisecond)

	select {
	case <-tm.FpsTicker().C:
	case <-time.After(time.Second):
		c.Fatal("fps ticker did not tick")
	}
}

func TestTimeUnlimited(t *testing.T) {
	c := qt.New(t)

	tm := core.NewTime(core.TimeConfiguration{})
	defer tm.Stop()

	c.Assert(tm.FrameDelay(), qt.Equals, time.Nanosecond)
	c.Assert(tm.EventDelay(), qt.Equals, time.Millisecond)
}

func TestPresentStatusString(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.PresentOutOfDate.String(), qt.Equals, "out of date")
	c.Assert(core.PresentStatus(42).String(), qt.Equals, "unknown")
}
