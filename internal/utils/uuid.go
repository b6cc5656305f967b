package utils

import (
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/google/uuid"
)

// UUIDGenerator produces time-ordered identifiers for queued operations,
// temporary records and server-side records.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7, falling back to a random v4 if the clock source
// fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// TempID returns a client-side provisional record id.
func (g *UUIDGenerator) TempID() string {
	return models.TempIDPrefix + g.Generate()
}
