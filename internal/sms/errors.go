package sms

import (
	"errors"
	"fmt"

	"go.smsbridge.org/internal/bridge"
	"go.smsbridge.org/internal/errorbehavior"
)

var (
	// ErrInvalidArgument means the request itself is malformed. A caller bug;
	// retrying the same request cannot help.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoDevice means no entry in the directory matched the requested (or
	// any ready) device. Retryable once a device is connected or paired.
	ErrNoDevice = errors.New("no authorized device found")
)

// DeviceUnavailableError means the target device is present but not ready:
// it needs user action on the device (authorize, reboot), not a retry.
type DeviceUnavailableError struct {
	DeviceID string
	Status   bridge.Status
}

func (e *DeviceUnavailableError) Error() string {
	return fmt.Sprintf("device %s unavailable: status %s", e.DeviceID, e.Status)
}

func errInvalidArgument(field string) error {
	return errorbehavior.WrapNonRetryable(fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, field))
}
