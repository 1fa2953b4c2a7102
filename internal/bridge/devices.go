package bridge

import (
	"context"
	"fmt"
	"strings"
)

// Status is the adb classification of a device's authorization/readiness
// state. The set below matches what current adb versions emit, but unknown
// strings pass through unchanged so a newer adb does not break the listing.
type Status string

const (
	StatusDevice       Status = "device"
	StatusUnauthorized Status = "unauthorized"
	StatusOffline      Status = "offline"
	StatusRecovery     Status = "recovery"
	StatusBootloader   Status = "bootloader"
	StatusSideload     Status = "sideload"
	StatusAuthorizing  Status = "authorizing"
	StatusConnecting   Status = "connecting"
)

var knownStatuses = map[Status]struct{}{
	StatusDevice:       {},
	StatusUnauthorized: {},
	StatusOffline:      {},
	StatusRecovery:     {},
	StatusBootloader:   {},
	StatusSideload:     {},
	StatusAuthorizing:  {},
	StatusConnecting:   {},
}

// Known reports whether s is one of the statuses adb is documented to emit.
func (s Status) Known() bool {
	_, ok := knownStatuses[s]
	return ok
}

// Ready reports whether a device with this status is authorized and ready to
// accept shell commands.
func (s Status) Ready() bool {
	return s == StatusDevice
}

// Device is one row of the adb listing. It is a snapshot: the status is
// authoritative only for the instant it was queried and is never cached.
type Device struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// Devices queries adb for attached and connected devices, in listing order.
func (b *Bridge) Devices(ctx context.Context) ([]Device, error) {
	result, err := b.Execute(ctx, "devices")
	if err != nil {
		return nil, fmt.Errorf("device listing failed: %w", err)
	}
	return parseDevices(result.Stdout), nil
}

// parseDevices decodes the "adb devices" wire format: a header line followed
// by one "<id>\t<status>" line per device. Blank lines and lines with fewer
// than two tokens are skipped.
func parseDevices(out string) []Device {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	devices := make([]Device, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		devices = append(devices, Device{ID: parts[0], Status: Status(parts[1])})
	}
	return devices
}
