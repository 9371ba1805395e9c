// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/wanderly/internal/platform/sec"
)

/*
TestPasswordHasher_RoundTrip covers ASCII, multi-byte and boundary-length passwords.
*/
func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{"minimum_length", "longpass"},
		{"maximum_length", strings.Repeat("x", 128)},
		{"multibyte", "mật-khẩu-rất-dài"},
		{"split_rune_at_boundary", strings.Repeat("a", 71) + "é-suffix"},
		{"emoji_across_boundary", strings.Repeat("b", 70) + "🙂🙂🙂"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.HashPassword(tt.password)
			require.NoError(t, err)

			assert.True(t, hasher.CheckPasswordHash(tt.password, hash))
			assert.False(t, hasher.CheckPasswordHash("a-different-pass", hash))
		})
	}
}

/*
TestPasswordHasher_SaltedHashesDiffer ensures each hash carries its own salt.
*/
func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.HashPassword("longpass1")
	require.NoError(t, err)
	second, err := hasher.HashPassword("longpass1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestPasswordHasher_Truncation documents that only the first 72 bytes count.
*/
func TestPasswordHasher_Truncation(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)
	prefix := strings.Repeat("a", 71)

	// "é" is two bytes, so the cut at 72 splits it and the whole rune is dropped.
	hash, err := hasher.HashPassword(prefix + "é")
	require.NoError(t, err)

	assert.True(t, hasher.CheckPasswordHash(prefix, hash))
	assert.True(t, hasher.CheckPasswordHash(prefix+"é and more", hash))
	assert.False(t, hasher.CheckPasswordHash(strings.Repeat("a", 70), hash))
}

/*
TestPasswordHasher_ComposedAndDecomposedDiffer keeps NFC and NFD spellings apart.
*/
func TestPasswordHasher_ComposedAndDecomposedDiffer(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)
	composed := "caf\u00e9-latte"
	decomposed := "cafe\u0301-latte"
	require.NotEqual(t, composed, decomposed)

	composedHash, err := hasher.HashPassword(composed)
	require.NoError(t, err)
	decomposedHash, err := hasher.HashPassword(decomposed)
	require.NoError(t, err)

	assert.True(t, hasher.CheckPasswordHash(composed, composedHash))
	assert.False(t, hasher.CheckPasswordHash(decomposed, composedHash))
	assert.False(t, hasher.CheckPasswordHash(composed, decomposedHash))
}
