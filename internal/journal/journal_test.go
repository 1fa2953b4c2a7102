package journal

import (
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func openTestDB(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Error(err)
		}
	})
	return db
}

func TestRecordAndRecent(t *testing.T) {
	j := New(openTestDB(t))
	for i, phone := range []string{"+3069000001", "+3069000002", "+3069000003"} {
		if err := j.Record("emulator-5554", phone, "hello", i != 1); err != nil {
			t.Fatal(err)
		}
	}
	messages, err := j.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	// newest first
	if messages[0].PhoneNumber != "+3069000003" || messages[1].PhoneNumber != "+3069000002" {
		t.Errorf("wrong order: %v", messages)
	}
	if !messages[0].Success || messages[1].Success {
		t.Errorf("success flags lost: %v", messages)
	}
	if messages[0].DeviceID != "emulator-5554" {
		t.Errorf("device id lost: %v", messages[0])
	}
}

func TestRecentEmpty(t *testing.T) {
	j := New(openTestDB(t))
	messages, err := j.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 0 {
		t.Errorf("expected no messages, got %v", messages)
	}
}
