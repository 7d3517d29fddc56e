// go-utils/hash.go

package utils

import (
	"crypto/sha256"
	"crypto/subtle"
)

// TokenMatches reports whether presented equals secret exactly. Both sides are
// hashed first so the comparison runs over equal-length inputs. An empty
// secret or an empty presented token never matches.
func TokenMatches(presented, secret string) bool {
	if presented == "" || secret == "" {
		return false
	}
	a := sha256.Sum256([]byte(presented))
	b := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
