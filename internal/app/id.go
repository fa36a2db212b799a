package app

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

// generateID produces a random hex identifier.
// Isolated here so the ID strategy can evolve independently.
func generateID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, 32)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return string(out), nil
}

// newBillNumber derives a bill number from a v4 uuid. Uniqueness is enforced
// by the repository; a collision surfaces as AlreadyExists and the caller
// retries with a fresh number.
func newBillNumber() string {
	return "BILL-" + strings.ToUpper(uuid.NewString()[:8])
}
