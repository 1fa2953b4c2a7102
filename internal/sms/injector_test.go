package sms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.smsbridge.org/internal/bridge"
	"go.smsbridge.org/internal/errorbehavior"
)

type fakeBridge struct {
	devices  []bridge.Device
	stdout   string
	executed [][]string
}

func (f *fakeBridge) Devices(ctx context.Context) ([]bridge.Device, error) {
	return f.devices, nil
}

func (f *fakeBridge) Execute(ctx context.Context, args ...string) (bridge.Result, error) {
	f.executed = append(f.executed, args)
	return bridge.Result{Args: args, Stdout: f.stdout}, nil
}

const successParcel = "Result: Parcel(00000000 00000001   '........')\n"

func newTestInjector(t *testing.T, f *fakeBridge, options ...func(*injectorConfig) error) *Injector {
	t.Helper()
	inj, err := NewInjector(f, options...)
	if err != nil {
		t.Fatal(err)
	}
	return inj
}

func TestSendTextValidatesArguments(t *testing.T) {
	inj := newTestInjector(t, &fakeBridge{})
	if _, err := inj.SendText(context.Background(), "", "hi", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty phone: got %v", err)
	}
	if _, err := inj.SendText(context.Background(), "+3069", "", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty message: got %v", err)
	}
}

func TestSendTextNoReadyDevice(t *testing.T) {
	f := &fakeBridge{devices: []bridge.Device{
		{ID: "A", Status: bridge.StatusOffline},
		{ID: "B", Status: bridge.StatusUnauthorized},
	}}
	inj := newTestInjector(t, f)
	_, err := inj.SendText(context.Background(), "+3069", "hi", "")
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
	if !errorbehavior.IsRetryable(err) {
		t.Error("no-device must be retryable")
	}
	if len(f.executed) != 0 {
		t.Error("service call must not run without a ready device")
	}
}

func TestSendTextPicksFirstReadyDevice(t *testing.T) {
	f := &fakeBridge{
		devices: []bridge.Device{
			{ID: "A", Status: bridge.StatusUnauthorized},
			{ID: "B", Status: bridge.StatusDevice},
			{ID: "C", Status: bridge.StatusDevice},
		},
		stdout: successParcel,
	}
	inj := newTestInjector(t, f)
	outcome, err := inj.SendText(context.Background(), "+3069", "hi", "")
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Success || outcome.DeviceID != "B" {
		t.Errorf("got %+v, want success on B", outcome)
	}
}

func TestSendTextDeviceUnavailable(t *testing.T) {
	f := &fakeBridge{devices: []bridge.Device{{ID: "X", Status: bridge.StatusUnauthorized}}}
	inj := newTestInjector(t, f)
	_, err := inj.SendText(context.Background(), "+3069", "hi", "X")
	var unavailable *DeviceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected DeviceUnavailableError, got %v", err)
	}
	if unavailable.Status != bridge.StatusUnauthorized {
		t.Errorf("error must name the actual status, got %s", unavailable.Status)
	}
	if errorbehavior.IsRetryable(err) {
		t.Error("unauthorized device must not be retryable")
	}
}

func TestSendTextUnknownDeviceID(t *testing.T) {
	f := &fakeBridge{devices: []bridge.Device{{ID: "A", Status: bridge.StatusDevice}}}
	inj := newTestInjector(t, f)
	if _, err := inj.SendText(context.Background(), "+3069", "hi", "Z"); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestSendTextEmptyParcelIsFailureNotError(t *testing.T) {
	f := &fakeBridge{
		devices: []bridge.Device{{ID: "A", Status: bridge.StatusDevice}},
		stdout:  "Result: Parcel(00000000    '....')\n",
	}
	inj := newTestInjector(t, f)
	outcome, err := inj.SendText(context.Background(), "+3069", "hi", "A")
	if err != nil {
		t.Fatalf("empty parcel must not be an error: %v", err)
	}
	if outcome.Success {
		t.Error("empty parcel must be classified as failure")
	}
	if outcome.DeviceID != "A" {
		t.Errorf("outcome must carry the resolved device, got %+v", outcome)
	}
}

func TestSendTextServiceCallShape(t *testing.T) {
	f := &fakeBridge{
		devices: []bridge.Device{{ID: "A", Status: bridge.StatusDevice}},
		stdout:  successParcel,
	}
	inj := newTestInjector(t, f)
	if _, err := inj.SendText(context.Background(), "+306912345678", "hello world", "A"); err != nil {
		t.Fatal(err)
	}
	if len(f.executed) != 1 {
		t.Fatalf("expected one service call, got %d", len(f.executed))
	}
	got := strings.Join(f.executed[0], " ")
	want := `-s A shell service call isms 5 i32 0 s16 com.android.mms.service s16 null ` +
		`s16 +306912345678 s16 null s16 "hello world" s16 null s16 null i32 0 i64 0`
	if got != want {
		t.Errorf("service call argv:\n got %s\nwant %s", got, want)
	}
	// the message travels as one combined token
	if f.executed[0][17] != `s16 "hello world"` {
		t.Errorf("message token: got %q", f.executed[0][17])
	}
}

type countingRecorder struct {
	records int
}

func (r *countingRecorder) Record(deviceID, phoneNumber, body string, success bool) error {
	r.records++
	return nil
}

func TestSendTextRecordsOnSuccessOnly(t *testing.T) {
	rec := &countingRecorder{}
	f := &fakeBridge{
		devices: []bridge.Device{{ID: "A", Status: bridge.StatusDevice}},
		stdout:  successParcel,
	}
	inj := newTestInjector(t, f, Recorder(rec))
	if _, err := inj.SendText(context.Background(), "+3069", "hi", "A"); err != nil {
		t.Fatal(err)
	}
	if rec.records != 1 {
		t.Errorf("expected 1 record, got %d", rec.records)
	}
	f.stdout = "Result: Parcel(00000000    '....')\n"
	if _, err := inj.SendText(context.Background(), "+3069", "hi", "A"); err != nil {
		t.Fatal(err)
	}
	if rec.records != 1 {
		t.Errorf("failed send must not be recorded, got %d records", rec.records)
	}
}
