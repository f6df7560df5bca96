package helpers

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashPhone returns a short stable fingerprint of a phone number so log
// lines can be correlated without carrying the number itself.
func HashPhone(phone string) string {
	if phone == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(phone))
	return hex.EncodeToString(sum[:6])
}
