package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewAt generates a ULID whose time component is t.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// LowerBound returns the smallest ULID for instant t, usable as an
// inclusive range-key bound for "created at or after t".
func LowerBound(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), nil).String()
}
