package utils

import (
    "encoding/hex"
    "strings"

    gonanoid "github.com/matoous/go-nanoid/v2"
    "golang.org/x/crypto/blake2b"
)

const profileAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ProfileIDLength is the length of generated profile identifiers.
const ProfileIDLength = 21

// NewProfileID returns a random identifier for a browser profile.
func NewProfileID() (string, error) {
    return gonanoid.Generate(profileAlphabet, ProfileIDLength)
}

// ValidProfileID reports whether id could have come from NewProfileID.
func ValidProfileID(id string) bool {
    if len(id) != ProfileIDLength {
        return false
    }
    for _, r := range id {
        if !strings.ContainsRune(profileAlphabet, r) {
            return false
        }
    }
    return true
}

// EmailFingerprint is a stable, non-reversible handle for a guest email,
// used where the address itself should not leave the service.  The email is
// normalized first.
func EmailFingerprint(email string) string {
    sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
    return hex.EncodeToString(sum[:16])
}
