package random

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRandomString returns a hex string of the given length built from
// crypto/rand. Used for server seeds, so it must be unpredictable.
func NewRandomString(length int) string {
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic("random: failed to read entropy: " + err.Error())
	}

	return hex.EncodeToString(buf)[:length]
}
