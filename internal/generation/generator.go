package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/keikaku/internal/domain"
)

// VocabularyRequest describes the word to explain and the learner it is for.
type VocabularyRequest struct {
	Word           string
	NativeLanguage domain.NativeLanguage
	Level          domain.JapaneseLevel

	// Model and Temperature come from the user's LLM settings. An empty
	// model means the generator's configured default.
	Model       string
	Temperature float32
}

// Validate checks that the request names a word and a supported language.
func (r VocabularyRequest) Validate() error {
	if strings.TrimSpace(r.Word) == "" {
		return fmt.Errorf("%w: word cannot be empty", domain.ErrInvalidQuestion)
	}
	if !r.NativeLanguage.IsValid() {
		return fmt.Errorf("%w: unsupported native language %q", domain.ErrInvalidValues, r.NativeLanguage)
	}
	return nil
}

// VocabularyContent is the authored answer side of a vocabulary card.
type VocabularyContent struct {
	Meaning  string
	Examples []domain.ExamplePhrase
}

// Card builds the vocabulary card for word from generated content.
func (c *VocabularyContent) Card(word string) (*domain.VocabularyCard, error) {
	return domain.NewVocabularyCard(word, c.Meaning, c.Examples)
}

// Generator authors vocabulary card content with a language model.
type Generator interface {
	GenerateVocabulary(ctx context.Context, req VocabularyRequest) (*VocabularyContent, error)
}

// None is the generator for users whose LLM provider is "none".
type None struct{}

// GenerateVocabulary always fails with ErrNotConfigured.
func (None) GenerateVocabulary(context.Context, VocabularyRequest) (*VocabularyContent, error) {
	return nil, ErrNotConfigured
}

// Providers selects a generator by the user's configured provider.
type Providers map[domain.LlmProvider]Generator

// For returns the generator for settings.Provider, or None when the
// provider is "none" or has no generator registered.
func (p Providers) For(settings domain.LlmSettings) Generator {
	if g, ok := p[settings.Provider]; ok && g != nil {
		return g
	}
	return None{}
}
