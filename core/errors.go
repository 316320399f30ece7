package core

import (
	"github.com/cockroachdb/errors"
)

// Error categories. Failures are marked with one of these,
// test for them with errors.Is.
var (
	ErrNoAdapters                = errors.New("driver reported no adapters")
	ErrNoSuitableDevice          = errors.New("no suitable device")
	ErrIncompleteQueueAssignment = errors.New("incomplete queue assignment")
	ErrDeviceCreation            = errors.New("logical device creation failed")
	ErrSwapchainCreation         = errors.New("swapchain creation failed")
	ErrPresentationEngine        = errors.New("presentation engine failure")
	ErrValidationLayerMissing    = errors.New("validation layer not available")
	ErrReplayOnly                = errors.New("adapter is a recorded capture and cannot create devices")
	ErrWindowClosed              = errors.New("window closed")
)

// Mark wraps err with the operation name and marks it with kind.
// Returns nil when err is nil.
func Mark(err error, kind error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, op), kind)
}
