// Package inspect reads per-device details over the adb server socket. It
// supplements the process-based directory with data the listing does not
// carry (model, Android release, android_id, hostname); the directory stays
// authoritative for readiness.
package inspect

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/electricbubble/gadb"
)

// Info describes one attached device.
type Info struct {
	Serial         string `json:"serial"`
	Model          string `json:"model"`
	AndroidVersion string `json:"android_version"`
	AndroidID      string `json:"android_id"`
	Hostname       string `json:"hostname"`
}

type Inspector struct {
	loggerDebug *log.Logger
}

func NewInspector(loggerDebug *log.Logger) *Inspector {
	if loggerDebug == nil {
		loggerDebug = log.New(io.Discard, "", 0)
	}
	return &Inspector{loggerDebug: loggerDebug}
}

// Inspect looks up the device with the given serial and probes its
// properties through the adb server.
func (ins *Inspector) Inspect(serial string) (Info, error) {
	adbClient, err := gadb.NewClient()
	if err != nil {
		return Info{}, fmt.Errorf("failed to create ADB client: %w", err)
	}
	deviceList, err := adbClient.DeviceList()
	if err != nil {
		return Info{}, fmt.Errorf("DeviceList failed: %w", err)
	}
	for _, adbDevice := range deviceList {
		if adbDevice.Serial() != serial {
			continue
		}
		return ins.probe(adbDevice)
	}
	return Info{}, fmt.Errorf("device %s not found", serial)
}

func (ins *Inspector) probe(adbDevice gadb.Device) (Info, error) {
	info := Info{Serial: adbDevice.Serial()}
	for _, p := range []struct {
		dst  *string
		name string
		args []string
	}{
		{&info.Model, "getprop", []string{"ro.product.model"}},
		{&info.AndroidVersion, "getprop", []string{"ro.build.version.release"}},
		{&info.AndroidID, "settings", []string{"get", "secure", "android_id"}},
		{&info.Hostname, "getprop", []string{"net.hostname"}},
	} {
		out, err := adbDevice.RunShellCommand(p.name, p.args...)
		if err != nil {
			return Info{}, fmt.Errorf("runAdbCommand failed: %w", err)
		}
		*p.dst = strings.TrimSpace(out)
	}
	ins.loggerDebug.Printf("inspected %s: model=%s android=%s", info.Serial, info.Model, info.AndroidVersion)
	return info, nil
}
