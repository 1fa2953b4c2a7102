// Package sms encodes and issues the service call that makes an Android
// device transmit an SMS, and interprets the raw parcel it answers with.
package sms

import (
	"context"
	"fmt"
	"io"
	"log"

	"go.smsbridge.org/internal/bridge"
	"go.smsbridge.org/internal/errorbehavior"
)

// deviceBridge is the slice of *bridge.Bridge the injector needs.
type deviceBridge interface {
	Devices(ctx context.Context) ([]bridge.Device, error)
	Execute(ctx context.Context, args ...string) (bridge.Result, error)
}

// recorder is the external collaborator that persists sent messages.
type recorder interface {
	Record(deviceID, phoneNumber, body string, success bool) error
}

// Outcome is the result of one send request. It is produced once and not
// persisted here; recording is the collaborator's job.
type Outcome struct {
	Success  bool   `json:"success"`
	DeviceID string `json:"device_id"`
}

type Injector struct {
	bridge      deviceBridge
	recorder    recorder
	loggerDebug *log.Logger
}

type injectorConfig struct {
	recorder    recorder
	loggerDebug *log.Logger
}

func Recorder(r recorder) func(c *injectorConfig) error {
	return func(c *injectorConfig) error {
		c.recorder = r
		return nil
	}
}

func LoggerDebug(l *log.Logger) func(c *injectorConfig) error {
	return func(c *injectorConfig) error {
		c.loggerDebug = l
		return nil
	}
}

func NewInjector(b deviceBridge, options ...func(*injectorConfig) error) (*Injector, error) {
	config := injectorConfig{
		loggerDebug: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		if err := option(&config); err != nil {
			return nil, fmt.Errorf("config error: %s", err)
		}
	}
	return &Injector{bridge: b, recorder: config.recorder, loggerDebug: config.loggerDebug}, nil
}

// SendText sends message to phoneNumber through the device deviceID. An empty
// deviceID selects the first device in listing order whose status is ready.
// The send never executes unless the target's status equals "device" at the
// moment of the query.
func (inj *Injector) SendText(ctx context.Context, phoneNumber, message, deviceID string) (Outcome, error) {
	if phoneNumber == "" {
		return Outcome{}, errInvalidArgument("phone number")
	}
	if message == "" {
		return Outcome{}, errInvalidArgument("message")
	}

	devices, err := inj.bridge.Devices(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("device lookup failed: %w", err)
	}
	resolved, err := resolveDevice(devices, deviceID)
	if err != nil {
		return Outcome{}, err
	}
	inj.loggerDebug.Printf("sending SMS through device %s", resolved)

	result, err := inj.bridge.Execute(ctx, serviceCallArgs(resolved, phoneNumber, message)...)
	if err != nil {
		return Outcome{DeviceID: resolved}, fmt.Errorf("service call failed: %w", err)
	}
	outcome := Outcome{Success: parcelIndicatesSuccess(result.Stdout), DeviceID: resolved}
	if outcome.Success && inj.recorder != nil {
		if err := inj.recorder.Record(resolved, phoneNumber, message, true); err != nil {
			// The SMS left the device; a journal failure must not turn the
			// send into an error.
			inj.loggerDebug.Printf("journal record failed: %s", err)
		}
	}
	return outcome, nil
}

// resolveDevice applies the selection rules: explicit ID wins, otherwise the
// first ready device in listing order.
func resolveDevice(devices []bridge.Device, deviceID string) (string, error) {
	if deviceID == "" {
		for _, d := range devices {
			if d.Status.Ready() {
				return d.ID, nil
			}
		}
		return "", errorbehavior.WrapRetryable(ErrNoDevice)
	}
	for _, d := range devices {
		if d.ID == deviceID {
			if !d.Status.Ready() {
				return "", errorbehavior.WrapNonRetryable(&DeviceUnavailableError{DeviceID: d.ID, Status: d.Status})
			}
			return d.ID, nil
		}
	}
	return "", errorbehavior.WrapRetryable(ErrNoDevice)
}
