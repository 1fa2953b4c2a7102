// Package dbutil provides cbor-encoded bbolt persistence for types that know
// their own bucket and key.
package dbutil

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrKeyExists = errors.New("key already exists")
)

// Saveable is a value that can be persisted under a stable bucket and key.
type Saveable interface {
	DBTable() string
	DBKey() []byte
}

// Upsert writes item, overwriting any existing value under its key.
func Upsert(db *bolt.DB, item Saveable) error {
	return put(db, item, false)
}

// Insert writes item, failing with ErrKeyExists if the key is taken.
func Insert(db *bolt.DB, item Saveable) error {
	return put(db, item, true)
}

func put(db *bolt.DB, item Saveable, mustNotExist bool) error {
	enc, err := cbor.Marshal(item)
	if err != nil {
		return fmt.Errorf("cbor.Marshal failed: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(item.DBTable()))
		if err != nil {
			return fmt.Errorf("tx.CreateBucketIfNotExists failed: %w", err)
		}
		if mustNotExist && b.Get(item.DBKey()) != nil {
			return ErrKeyExists
		}
		if err := b.Put(item.DBKey(), enc); err != nil {
			return fmt.Errorf("cannot save item with key %x: %w", item.DBKey(), err)
		}
		return nil
	}); err != nil {
		if errors.Is(err, ErrKeyExists) {
			return ErrKeyExists
		}
		return fmt.Errorf("transaction (Update) failed: %w", err)
	}
	return nil
}

// Get reads the value stored under pointer's key into pointer.
func Get(db *bolt.DB, key []byte, pointer Saveable) error {
	if err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pointer.DBTable()))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(key)
		if v == nil {
			return ErrNotFound
		}
		if err := cbor.Unmarshal(v, pointer); err != nil {
			return fmt.Errorf("cbor.Unmarshal failed: %w", err)
		}
		return nil
	}); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("transaction (View) failed: %w", err)
	}
	return nil
}

// ErrStopIteration ends a ForEachReverse scan early without error.
var ErrStopIteration = errors.New("stop iteration")

// ForEachReverse iterates the bucket of the given type from the newest key to
// the oldest, decoding each value into a fresh copy of pointer's type.
func ForEachReverse(db *bolt.DB, pointer Saveable, f func(k []byte, v interface{}) error) error {
	if err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pointer.DBTable()))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			value := reflect.New(reflect.TypeOf(pointer).Elem()).Interface()
			if err := cbor.Unmarshal(v, value); err != nil {
				return fmt.Errorf("cbor.Unmarshal failed: %w", err)
			}
			if err := f(k, reflect.ValueOf(value).Elem().Interface()); err != nil {
				if errors.Is(err, ErrStopIteration) {
					return nil
				}
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("transaction (View) failed: %w", err)
	}
	return nil
}
