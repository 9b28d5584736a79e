package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"filevault-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier checks email/password pairs against stored bcrypt digests
type Verifier struct {
	users     repository.UserStore
	cost      int
	dummyHash []byte
}

// NewVerifier creates a verifier. cost is the bcrypt cost used for new digests;
// values outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewVerifier(users repository.UserStore, cost int) (*Verifier, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	// Unknown emails are compared against this digest so they take as long
	// as a wrong password.
	dummy, err := bcrypt.GenerateFromPassword(prehash("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare verifier: %w", err)
	}

	return &Verifier{
		users:     users,
		cost:      cost,
		dummyHash: dummy,
	}, nil
}

// HashPassword returns the digest stored at signup
func (v *Verifier) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify returns the id of the user owning email when password matches
func (v *Verifier) Verify(ctx context.Context, email, password string) (uuid.UUID, error) {
	user, err := v.users.GetUserByEmail(ctx, email)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(v.dummyHash, prehash(password))
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), prehash(password)); err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}

	return user.ID, nil
}

// prehash digests password to a fixed 44 bytes so bcrypt's 72 byte input
// limit never rejects or truncates it.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
