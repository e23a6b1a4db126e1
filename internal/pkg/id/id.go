package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a time-ordered ULID used as a run identifier.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
