// Package utils provides small helpers shared across the client:
// identifier generation for rows created offline and context plumbing.
package utils

import (
	"strings"

	"github.com/google/uuid"
)

// LocalIDPrefix marks client-generated identifiers. Rows carrying one have
// not been assigned a permanent id by the server yet.
const LocalIDPrefix = "local-"

type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// GenerateLocalID returns a new client-local identifier for an entity
// created while offline.
func (g *UUIDGenerator) GenerateLocalID() string {
	return LocalIDPrefix + g.Generate()
}

// IsLocalID reports whether id was generated on this client rather than
// assigned by the server.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}
