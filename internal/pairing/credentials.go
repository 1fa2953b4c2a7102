package pairing

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	serviceNamePrefix = "adb-pairing-"
	serviceNameSuffix = 10
	passwordDigits    = 6

	nameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// newServiceName generates the mDNS instance name the phone will advertise
// back after scanning the QR code. Unique per session, never reused.
func newServiceName() string {
	var sb strings.Builder
	sb.WriteString(serviceNamePrefix)
	for i := 0; i < serviceNameSuffix; i++ {
		sb.WriteByte(nameAlphabet[rand.Intn(len(nameAlphabet))])
	}
	return sb.String()
}

// newPassword generates the one-time numeric pairing password.
func newPassword() string {
	var sb strings.Builder
	for i := 0; i < passwordDigits; i++ {
		sb.WriteByte(byte('0' + rand.Intn(10)))
	}
	return sb.String()
}

// Payload encodes pairing credentials following the Wi-Fi pairing URI
// convention understood by the Android "pair device with QR code" screen.
func Payload(serviceName, password string) string {
	return fmt.Sprintf("WIFI:T:ADB;S:%s;P:%s;;", serviceName, password)
}

// ParsePayload recovers (serviceName, password) from a QR payload.
func ParsePayload(payload string) (string, string, error) {
	rest, ok := strings.CutPrefix(payload, "WIFI:T:ADB;")
	if !ok {
		return "", "", fmt.Errorf("payload %q: missing WIFI:T:ADB prefix", payload)
	}
	rest, ok = strings.CutSuffix(rest, ";;")
	if !ok {
		return "", "", fmt.Errorf("payload %q: missing terminator", payload)
	}
	var serviceName, password string
	for _, field := range strings.Split(rest, ";") {
		switch {
		case strings.HasPrefix(field, "S:"):
			serviceName = field[2:]
		case strings.HasPrefix(field, "P:"):
			password = field[2:]
		}
	}
	if serviceName == "" || password == "" {
		return "", "", fmt.Errorf("payload %q: missing service name or password", payload)
	}
	return serviceName, password, nil
}
