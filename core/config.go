package core

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/gobuffalo/packd"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Instance InstanceConfiguration
	Device   DeviceConfiguration
	Renderer RendererConfiguration
	Window   WindowConfiguration
	Log      LogConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the window event polling interval in milliseconds
	EventPollDelay int
}

// InstanceConfiguration is used to configure the API instance
type InstanceConfiguration struct {
	// DebugMode enables validation layers and the debug report callback
	DebugMode  bool
	Extensions []string
	Layers     []string
}

// DeviceConfiguration is used to configure device selection
type DeviceConfiguration struct {
	// Extensions every eligible adapter must support, enabled on the logical device
	Extensions []string

	// MinAPIVersion is the lowest packed API version accepted
	MinAPIVersion uint32

	// PreferredAdapter selects the first eligible adapter with a name
	// containing it, ignoring scores
	PreferredAdapter string
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	FramesInFlight int

	ScreenWidth  uint32
	ScreenHeight uint32
}

// WindowConfiguration selects the window backend
type WindowConfiguration struct {
	Backend string
	Title   string
}

// LogConfiguration is used to configure logging
type LogConfiguration struct {
	Level  string
	Format string
}

// Configuration keys
const (
	KeyFramesPerSecond    = "KORU_FPS"
	KeyEventPollDelay     = "KORU_EVENT_POLL_MS"
	KeyDebugMode          = "KORU_DEBUG"
	KeyInstanceExtensions = "KORU_INSTANCE_EXTENSIONS"
	KeyInstanceLayers     = "KORU_INSTANCE_LAYERS"
	KeyDeviceExtensions   = "KORU_DEVICE_EXTENSIONS"
	KeyMinAPIVersion      = "KORU_MIN_API_VERSION"
	KeyPreferredAdapter   = "KORU_PREFERRED_ADAPTER"
	KeyFramesInFlight     = "KORU_FRAMES_IN_FLIGHT"
	KeyScreenWidth        = "KORU_SCREEN_WIDTH"
	KeyScreenHeight       = "KORU_SCREEN_HEIGHT"
	KeyWindowBackend      = "KORU_WINDOW_BACKEND"
	KeyWindowTitle        = "KORU_WINDOW_TITLE"
	KeyLogLevel           = "KORU_LOG_LEVEL"
	KeyLogFormat          = "KORU_LOG_FORMAT"
)

var defaultsBox = packr.NewBox("./defaults")

// Defaults returns the bundled default values, keyed by configuration key
func Defaults() (map[string]string, error) {
	defaults := map[string]string{}
	err := defaultsBox.Walk(func(name string, f packd.File) error {
		if filepath.Ext(name) != ".env" {
			return nil
		}
		values, err := godotenv.Unmarshal(f.String())
		if err != nil {
			return errors.Wrapf(err, "defaults %s", name)
		}
		for k, v := range values {
			defaults[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defaults, nil
}

// LoadConfiguration loads the configuration from the bundled defaults,
// the given .env files and the environment, later sources win.
func LoadConfiguration(files ...string) (Configuration, error) {
	defaults, err := Defaults()
	if err != nil {
		return Configuration{}, err
	}

	if len(files) > 0 {
		if err := envy.Load(files...); err != nil {
			return Configuration{}, errors.Wrap(err, "envy.Load()")
		}
	}

	return ParseConfiguration(func(key string) string {
		return envy.Get(key, defaults[key])
	})
}

// ParseConfiguration builds a Configuration from a key lookup
func ParseConfiguration(lookup func(key string) string) (Configuration, error) {
	p := parser{lookup: lookup}

	cfg := Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: p.int(KeyFramesPerSecond),
			EventPollDelay:  p.int(KeyEventPollDelay),
		},
		Instance: InstanceConfiguration{
			DebugMode:  p.bool(KeyDebugMode),
			Extensions: p.list(KeyInstanceExtensions),
			Layers:     p.list(KeyInstanceLayers),
		},
		Device: DeviceConfiguration{
			Extensions:       p.list(KeyDeviceExtensions),
			MinAPIVersion:    p.version(KeyMinAPIVersion),
			PreferredAdapter: lookup(KeyPreferredAdapter),
		},
		Renderer: RendererConfiguration{
			FramesInFlight: p.int(KeyFramesInFlight),
			ScreenWidth:    p.size(KeyScreenWidth),
			ScreenHeight:   p.size(KeyScreenHeight),
		},
		Window: WindowConfiguration{
			Backend: lookup(KeyWindowBackend),
			Title:   lookup(KeyWindowTitle),
		},
		Log: LogConfiguration{
			Level:  lookup(KeyLogLevel),
			Format: lookup(KeyLogFormat),
		},
	}
	if p.err != nil {
		return Configuration{}, p.err
	}

	if cfg.Renderer.FramesInFlight < 1 {
		return Configuration{}, errors.Newf("%s must be at least 1, got %d", KeyFramesInFlight, cfg.Renderer.FramesInFlight)
	}
	if cfg.Renderer.ScreenWidth < 1 || cfg.Renderer.ScreenHeight < 1 {
		return Configuration{}, errors.Newf("%s and %s must be at least 1, got %dx%d",
			KeyScreenWidth, KeyScreenHeight, cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight)
	}
	if cfg.Time.FramesPerSecond < 0 {
		return Configuration{}, errors.Newf("%s must not be negative", KeyFramesPerSecond)
	}
	return cfg, nil
}

// parser keeps the first parse error
type parser struct {
	lookup func(string) string
	err    error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = errors.Wrapf(err, "config %s", key)
	}
}

func (p *parser) int(key string) int {
	raw := strings.TrimSpace(p.lookup(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
	}
	return v
}

// size parses a window dimension, unset means zero
func (p *parser) size(key string) uint32 {
	v := p.int(key)
	if v < 0 {
		p.fail(key, errors.Newf("must not be negative, got %d", v))
		return 0
	}
	return uint32(v)
}

func (p *parser) bool(key string) bool {
	raw := strings.TrimSpace(p.lookup(key))
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) list(key string) []string {
	var out []string
	for _, item := range strings.Split(p.lookup(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p *parser) version(key string) uint32 {
	raw := strings.TrimSpace(p.lookup(key))
	if raw == "" {
		return 0
	}
	v, err := ParseVersion(raw)
	if err != nil {
		p.fail(key, err)
	}
	return v
}

// ParseVersion parses "major.minor" or "major.minor.patch" into a packed version
func ParseVersion(s string) (uint32, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Newf("malformed version %q", s)
	}
	var nums [3]uint32
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return 0, errors.Wrapf(err, "malformed version %q", s)
		}
		nums[i] = uint32(n)
	}
	return MakeVersion(nums[0], nums[1], nums[2]), nil
}
