// Package kv is a small key-value store with hierarchical keys, used for
// the bootstrap journal. Keys are segment slices such as
// Key{"boot", "20260101T000000Z", "<uuid>", "0001"} and are stored joined
// by '/', so a listing in key order is also a listing in segment order as
// long as segments have a fixed width.
//
// Two backends are provided: Badger, for a journal that survives restarts,
// and Memory.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("kv: not found")

	// ErrInvalidKey is returned for empty keys and for segments that are
	// empty or contain the separator.
	ErrInvalidKey = errors.New("kv: invalid key")
)

// Separator joins key segments in storage.
const Separator = '/'

// Key is a hierarchical path.
type Key []string

func (k Key) String() string {
	return strings.Join(k, string(Separator))
}

// Entry is a key and its value.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is implemented by Memory and Badger.
type Store interface {
	// Get returns the value of key or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// List yields the entries below prefix in key order. An empty prefix
	// lists everything.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchDelete removes keys in one step. Missing keys are ignored.
	BatchDelete(ctx context.Context, keys []Key) error

	Close() error
}

// Open returns a Badger store in dir, or a Memory store when dir is empty.
func Open(dir string, logger *slog.Logger) (Store, error) {
	if dir == "" {
		return NewMemory(), nil
	}
	return NewBadger(BadgerOptions{Dir: dir, Logger: logger})
}

func encode(k Key) ([]byte, error) {
	if len(k) == 0 {
		return nil, ErrInvalidKey
	}
	return appendKey(nil, k)
}

// encodePrefix returns the storage prefix matching every key below k,
// including the trailing separator so that "a" does not match "ab/x".
func encodePrefix(k Key) ([]byte, error) {
	if len(k) == 0 {
		return nil, nil
	}
	b, err := appendKey(nil, k)
	if err != nil {
		return nil, err
	}
	return append(b, Separator), nil
}

func appendKey(b []byte, k Key) ([]byte, error) {
	for i, seg := range k {
		if seg == "" || strings.IndexByte(seg, Separator) >= 0 {
			return nil, fmt.Errorf("%w: segment %d %q", ErrInvalidKey, i, seg)
		}
		if i > 0 {
			b = append(b, Separator)
		}
		b = append(b, seg...)
	}
	return b, nil
}

func decode(b []byte) Key {
	return Key(strings.Split(string(b), string(Separator)))
}
