package shortid

import "github.com/google/uuid"

// Length of every generated identifier.
const Length = 6

// Generate returns a short random identifier: the leading hex characters of
// a fresh random UUID. The identifier space (16^6) is large enough that
// collisions are rare, but not impossible; the registry is the uniqueness
// authority and retries on conflict.
func Generate() string {
	return uuid.NewString()[:Length]
}
