package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"expensetracker/internal/apperr"
)

const resetSecretBytes = 32

// TokenGenerator produces reset secrets and the digest stored in their place.
type TokenGenerator interface {
	RandomSecret() (string, error)
	Digest(secret string) string
}

type randomTokens struct{}

func NewTokenGenerator() TokenGenerator {
	return randomTokens{}
}

func (randomTokens) RandomSecret() (string, error) {
	b := make([]byte, resetSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", apperr.Internal(err, "generate reset secret")
	}
	return hex.EncodeToString(b), nil
}

func (randomTokens) Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
