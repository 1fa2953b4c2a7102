// Package journal records sent messages. It is the persistence collaborator
// behind the injector's "record that a message was sent" call; nothing in the
// bridge core reads it back except the history endpoint.
package journal

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	bolt "go.etcd.io/bbolt"

	"go.smsbridge.org/internal/dbutil"
)

// Message is one sent-message record. The ULID key makes bucket order equal
// send order.
type Message struct {
	ID          ulid.ULID `json:"id"`
	DeviceID    string    `json:"device_id"`
	PhoneNumber string    `json:"phone_number"`
	Body        string    `json:"body"`
	SentAt      time.Time `json:"sent_at"`
	Success     bool      `json:"success"`
}

func (m Message) DBTable() string {
	return "journal.message"
}

func (m Message) DBKey() []byte {
	return m.ID[:]
}

type Journal struct {
	db *bolt.DB
}

func New(db *bolt.DB) *Journal {
	return &Journal{db: db}
}

// Record persists the outcome of one send request.
func (j *Journal) Record(deviceID, phoneNumber, body string, success bool) error {
	m := Message{
		ID:          ulid.Make(),
		DeviceID:    deviceID,
		PhoneNumber: phoneNumber,
		Body:        body,
		SentAt:      time.Now().UTC(),
		Success:     success,
	}
	if err := dbutil.Insert(j.db, m); err != nil {
		return fmt.Errorf("journal insert failed: %w", err)
	}
	return nil
}

// Recent returns up to limit messages, newest first.
func (j *Journal) Recent(limit int) ([]Message, error) {
	messages := make([]Message, 0, limit)
	err := dbutil.ForEachReverse(j.db, &Message{}, func(k []byte, v interface{}) error {
		messages = append(messages, v.(Message))
		if len(messages) >= limit {
			return dbutil.ErrStopIteration
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("journal scan failed: %w", err)
	}
	return messages, nil
}
