package lib

import (
	"github.com/google/uuid"
)

// NewID generates a UUID version 4 string (RFC 4122). Every spawned child
// gets one so that log lines from concurrent captures can be told apart.
func NewID() string {
	return uuid.NewString()
}
