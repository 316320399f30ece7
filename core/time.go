package core

import (
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	var interval time.Duration
	if cfg.FramesPerSecond == 0 {
		interval = time.Nanosecond
	} else {
		interval = time.Second / (time.Duration)(cfg.FramesPerSecond)
	}

	pollDelay := time.Duration(cfg.EventPollDelay) * time.Millisecond
	if pollDelay <= 0 {
		pollDelay = time.Millisecond
	}

	return &Time{
		fps:         cfg.FramesPerSecond,
		frameDelay:  interval,
		fpsTicker:   time.NewTicker(interval),
		eventDelay:  pollDelay,
		eventTicker: time.NewTicker(pollDelay),
	}
}

// Time contains all the time services and tickers
type Time struct {
	fps        int
	frameDelay time.Duration
	fpsTicker  *time.Ticker

	eventDelay  time.Duration
	eventTicker *time.Ticker
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FrameDelay is the interval between two frame ticks
func (t *Time) FrameDelay() time.Duration {
	return t.frameDelay
}

// EventDelay is the interval between two event ticks
func (t *Time) EventDelay() time.Duration {
	return t.eventDelay
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// EventTicker gets the initialized event ticker for the event loop
func (t *Time) EventTicker() *time.Ticker {
	return t.eventTicker
}

// Stop stops both tickers
func (t *Time) Stop() {
	t.fpsTicker.Stop()
	t.eventTicker.Stop()
}
