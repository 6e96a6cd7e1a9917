package auth

import "golang.org/x/crypto/bcrypt"

// Passwords hashes and checks passwords with bcrypt.
type Passwords struct {
	cost int
}

// NewPasswords returns a hasher using cost; a non-positive cost means
// bcrypt.DefaultCost.
func NewPasswords(cost int) *Passwords {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Passwords{cost: cost}
}

func (p *Passwords) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), p.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare returns nil only when plain matches hash.
func (p *Passwords) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
