package llm

import (
	"context"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

// UnconfiguredGenerator stands in for the generation backend when no API key
// is available, so every conversation degrades to an apology.
type UnconfiguredGenerator struct{}

// NewUnconfiguredGenerator creates the stand-in generator
func NewUnconfiguredGenerator() repositories.Generator {
	return UnconfiguredGenerator{}
}

// Generate implements repositories.Generator
func (UnconfiguredGenerator) Generate(ctx context.Context, parts []repositories.Part, systemInstruction string) (string, error) {
	return "", domain.ErrNotConfigured
}
