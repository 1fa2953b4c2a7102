package bridge

import (
	"strings"
)

// adb reports connect/pair outcomes as free-form text on stdout. The
// substrings below are an informal protocol with the adb binary; they are kept
// in one place so a future adb output change touches only this file.
const (
	signalConnected        = "connected"
	signalAlreadyConnected = "already"
	signalPaired           = "Successfully paired"
)

// Connected reports whether a connect Result indicates an established (or
// already established) connection. Connecting twice to the same address is
// success both times.
func Connected(r Result) bool {
	return strings.Contains(r.Stdout, signalConnected) || strings.Contains(r.Stdout, signalAlreadyConnected)
}

// Paired reports whether a pair Result indicates a completed pairing.
func Paired(r Result) bool {
	return r.ExitCode == 0 && strings.Contains(r.Stdout, signalPaired)
}
