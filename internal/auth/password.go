package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a fixed cost. Hash output embeds its own salt, so
// storage needs nothing beyond the hash string itself.
type Hasher struct {
	cost  int
	dummy string
}

func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	// The dummy hash is compared against when a login targets a username that
	// does not exist, so the absent-user path costs the same as a real
	// verification and response timing cannot enumerate accounts.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, err
	}

	return &Hasher{cost: cost, dummy: string(dummy)}, nil
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. It never errors: a malformed
// hash and a wrong password are both just false, so callers cannot leak which
// condition occurred.
func (h *Hasher) Verify(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// VerifyDummy burns a full bcrypt comparison without ever matching.
func (h *Hasher) VerifyDummy(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(h.dummy), []byte(plaintext))
}
