// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the number of input bytes bcrypt actually consumes.
const MaxPasswordBytes = 72

// PasswordHasher hashes and verifies credentials with bcrypt.
//
// It holds no mutable state and is safe for concurrent use.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
// Out-of-range costs fall back to [bcrypt.DefaultCost].
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func (hasher *PasswordHasher) HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword(preparePassword(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func (hasher *PasswordHasher) CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), preparePassword(plainTextPassword))
	return err == nil
}

// preparePassword cuts the UTF-8 encoding to [MaxPasswordBytes].
//
// The bytes are used as given, so differently normalized spellings of the
// same text are different passwords. A rune split by the cut is dropped
// entirely. Both the hash and the verify path must go through here,
// otherwise long multi-byte passwords stop matching.
func preparePassword(plainTextPassword string) []byte {
	encoded := []byte(plainTextPassword)
	if len(encoded) <= MaxPasswordBytes {
		return encoded
	}

	encoded = encoded[:MaxPasswordBytes]
	for len(encoded) > 0 && !utf8.Valid(encoded) {
		encoded = encoded[:len(encoded)-1]
	}
	return encoded
}
