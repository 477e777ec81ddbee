package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher turns a plaintext password into a storable digest and
// checks candidates against it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, digest string) bool
}

// BcryptPasswordHasher implements PasswordHasher with bcrypt. The digest
// embeds its own salt and cost, so the work factor can be raised later
// without invalidating stored hashes.
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptPasswordHasher) Verify(plain string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
