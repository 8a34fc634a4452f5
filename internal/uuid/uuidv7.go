package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	googleuuid "github.com/google/uuid"
)

var (
	mu      sync.Mutex
	lastMs  uint64
	counter uint16
)

// New generates a new UUIDv7 based on the current timestamp.
// IDs are strictly increasing within the process: when two IDs share a
// millisecond the 12-bit rand_a field is used as a sequence counter, so the
// string form sorts in creation order.
//
// Format (RFC 9562):
// - 48 bits: Unix timestamp in milliseconds
// - 4 bits: version (0111 = 7)
// - 12 bits: sequence
// - 2 bits: variant (10)
// - 62 bits: random data
func New() string {
	return newAt(time.Now())
}

func newAt(now time.Time) string {
	var id [16]byte

	ms, seq := next(uint64(now.UnixMilli()))

	binary.BigEndian.PutUint64(id[0:8], ms<<16)
	binary.BigEndian.PutUint16(id[6:8], seq&0x0fff)

	if _, err := rand.Read(id[8:]); err != nil {
		return googleuuid.New().String()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return formatUUID(id)
}

// next returns the timestamp and sequence for the next ID. A clock that moves
// backwards or a sequence overflow borrows the following millisecond.
func next(ms uint64) (uint64, uint16) {
	mu.Lock()
	defer mu.Unlock()

	if ms > lastMs {
		lastMs = ms
		counter = 0
		return lastMs, counter
	}

	counter++
	if counter > 0x0fff {
		lastMs++
		counter = 0
	}
	return lastMs, counter
}

// formatUUID formats a 16-byte array as a UUID string
func formatUUID(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// Parse validates and parses a UUID string
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
