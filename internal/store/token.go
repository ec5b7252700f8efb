package store

import "github.com/google/uuid"

// TokenGenerator generates unique store tokens for trace correlation.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 store tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making tokens
// sortable by creation time, which is helpful when scanning trace logs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns the same token every time.
//
// This enables deterministic test execution and golden trace comparison:
// the same scenario with the same FixedGenerator produces byte-identical
// traces.
type FixedGenerator struct {
	token string
}

// NewFixedGenerator creates a generator that always returns token.
// If token is empty, Generate returns "store-default".
func NewFixedGenerator(token string) *FixedGenerator {
	if token == "" {
		token = "store-default"
	}
	return &FixedGenerator{token: token}
}

// Generate returns the fixed store token.
func (g *FixedGenerator) Generate() string {
	return g.token
}
