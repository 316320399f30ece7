package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"

	"github.com/devblok/vkchain/core"
)

func mapLookup(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestDefaults(t *testing.T) {
	c := qt.New(t)

	defaults, err := core.Defaults()
	c.Assert(err, qt.IsNil)
	c.Assert(defaults[core.KeyFramesInFlight], qt.Equals, "2")
	c.Assert(defaults[core.KeyDeviceExtensions], qt.Equals, "VK_KHR_swapchain")

	cfg, err := core.ParseConfiguration(mapLookup(defaults))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Renderer.FramesInFlight, qt.Equals, 2)
	c.Assert(cfg.Device.MinAPIVersion, qt.Equals, core.MakeVersion(1, 3, 0))
	c.Assert(cfg.Device.Extensions, qt.DeepEquals, []string{"VK_KHR_swapchain"})
	c.Assert(cfg.Instance.Extensions, qt.IsNil)
	c.Assert(cfg.Window.Backend, qt.Equals, "sdl")
}

func TestParseConfiguration(t *testing.T) {
	c := qt.New(t)

	cfg, err := core.ParseConfiguration(mapLookup(map[string]string{
		core.KeyFramesPerSecond:  "144",
		core.KeyEventPollDelay:   "5",
		core.KeyDebugMode:        "true",
		core.KeyInstanceLayers:   " VK_LAYER_A , VK_LAYER_B,",
		core.KeyDeviceExtensions: "VK_KHR_swapchain,VK_KHR_maintenance1",
		core.KeyMinAPIVersion:    "1.2.131",
		core.KeyPreferredAdapter: "Radeon",
		core.KeyFramesInFlight:   "3",
		core.KeyScreenWidth:      "1280",
		core.KeyScreenHeight:     "720",
	}))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Time, qt.Equals, core.TimeConfiguration{FramesPerSecond: 144, EventPollDelay: 5})
	c.Assert(cfg.Instance.DebugMode, qt.IsTrue)
	c.Assert(cfg.Instance.Layers, qt.DeepEquals, []string{"VK_LAYER_A", "VK_LAYER_B"})
	c.Assert(cfg.Device.Extensions, qt.HasLen, 2)
	c.Assert(cfg.Device.MinAPIVersion, qt.Equals, core.MakeVersion(1, 2, 131))
	c.Assert(cfg.Device.PreferredAdapter, qt.Equals, "Radeon")
	c.Assert(cfg.Renderer, qt.DeepEquals, core.RendererConfiguration{
		FramesInFlight: 3,
		ScreenWidth:    1280,
		ScreenHeight:   720,
	})
}

func TestParseConfigurationErrors(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name   string
		values map[string]string
		err    string
	}{
		{"bad int", map[string]string{core.KeyFramesInFlight: "two"}, `config KORU_FRAMES_IN_FLIGHT: .*`},
		{"bad bool", map[string]string{core.KeyFramesInFlight: "2", core.KeyDebugMode: "maybe"}, `config KORU_DEBUG: .*`},
		{"bad version", map[string]string{core.KeyFramesInFlight: "2", core.KeyMinAPIVersion: "1"}, `config KORU_MIN_API_VERSION: malformed version "1"`},
		{"no frames", map[string]string{core.KeyFramesInFlight: "0"}, `KORU_FRAMES_IN_FLIGHT must be at least 1, got 0`},
		{"negative width", map[string]string{core.KeyFramesInFlight: "1", core.KeyScreenWidth: "-1", core.KeyScreenHeight: "600"}, `config KORU_SCREEN_WIDTH: must not be negative, got -1`},
		{"zero height", map[string]string{core.KeyFramesInFlight: "1", core.KeyScreenWidth: "800"}, `KORU_SCREEN_WIDTH and KORU_SCREEN_HEIGHT must be at least 1, got 800x0`},
		{"negative fps", map[string]string{core.KeyFramesInFlight: "1", core.KeyScreenWidth: "800", core.KeyScreenHeight: "600", core.KeyFramesPerSecond: "-1"}, `KORU_FPS must not be negative`},
	}
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			_, err := core.ParseConfiguration(mapLookup(test.values))
			c.Assert(err, qt.ErrorMatches, test.err)
		})
	}
}

func TestLoadConfigurationEnvironmentWins(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		envy.Set(core.KeyFramesInFlight, "4")
		envy.Set(core.KeyWindowBackend, "glfw")

		cfg, err := core.LoadConfiguration()
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Renderer.FramesInFlight, qt.Equals, 4)
		c.Assert(cfg.Window.Backend, qt.Equals, "glfw")
		c.Assert(cfg.Renderer.ScreenWidth, qt.Equals, uint32(800))
	})
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	c := qt.New(t)

	_, err := core.LoadConfiguration("testdata/does-not-exist.env")
	c.Assert(err, qt.ErrorMatches, `envy.Load\(\): .*`)
}

func TestParseVersion(t *testing.T) {
	c := qt.New(t)

	v, err := core.ParseVersion("1.3")
	c.Assert(err, qt.IsNil)
	c.Assert(core.VersionString(v), qt.Equals, "1.3.0")

	_, err = core.ParseVersion("1.x")
	c.Assert(err, qt.ErrorMatches, `malformed version "1.x": .*`)
}
