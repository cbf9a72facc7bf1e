package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/taskmanager-server/internal/model"
)

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt hashes and verifies passwords with bcrypt at a fixed cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a Bcrypt hasher. Costs outside bcrypt's range fall back
// to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare returns nil when password matches hash.
func (b *Bcrypt) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
