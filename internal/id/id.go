// Package id generates ULIDs for published snapshots and journal rows.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	once    sync.Once
	entropy io.Reader
)

func source() io.Reader {
	once.Do(func() {
		var seed int64
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		// Monotonic keeps ids minted in the same millisecond increasing.
		entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
	})
	return entropy
}

// New returns a ULID stamped with the current time.
func New() string { return NewAt(time.Now()) }

// NewAt returns a ULID stamped with t.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	v, err := ulid.New(ulid.Timestamp(t.UTC()), source())
	if err != nil {
		panic(err)
	}
	return v.String()
}

// Time extracts the millisecond timestamp from an id produced by New.
func Time(s string) (time.Time, error) {
	v, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(v.Time()), nil
}
