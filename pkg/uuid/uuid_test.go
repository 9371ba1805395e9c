// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wanderly/pkg/uuid"
)

func TestNew_IsVersion7(t *testing.T) {
	parsed, err := googleuuid.Parse(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, googleuuid.Version(7), parsed.Version())
}

func TestNew_Sortable(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	assert.NotEqual(t, first, second)
	assert.LessOrEqual(t, first[:13], second[:13])
}

func TestIsValid(t *testing.T) {
	assert.True(t, uuid.IsValid(uuid.New()))
	assert.True(t, uuid.IsValid("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, uuid.IsValid("not-a-uuid"))
	assert.False(t, uuid.IsValid("{6ba7b810-9dad-11d1-80b4-00c04fd430c8}"))
	assert.False(t, uuid.IsValid(""))
}
