package codenvy

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	projectIDLength = 8
	statusIDLength  = 7
)

// shortID derives a stable prefix-comparable identifier from the entity's
// identity on its remote.
func shortID(length int, parts ...string) string {
	sum := blake3.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])[:length]
}
