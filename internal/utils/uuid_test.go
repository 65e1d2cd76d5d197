package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ReturnsValidUUID(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.Generate()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestGenerateLocalID_PrefixedAndDetectable(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.GenerateLocalID()
	assert.True(t, IsLocalID(id))

	_, err := uuid.Parse(strings.TrimPrefix(id, LocalIDPrefix))
	require.NoError(t, err)
}

func TestIsLocalID_ServerID(t *testing.T) {
	assert.False(t, IsLocalID("42"))
	assert.False(t, IsLocalID(uuid.NewString()))
}
