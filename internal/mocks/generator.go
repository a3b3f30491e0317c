package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateVocabularyFn allows test cases to mock the GenerateVocabulary behavior
	GenerateVocabularyFn func(ctx context.Context, req generation.VocabularyRequest) (*generation.VocabularyContent, error)

	// Default response values
	Content *generation.VocabularyContent
	Err     error

	// Call tracking for verification
	GenerateVocabularyCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Requests contains all requests passed to GenerateVocabulary calls
		Requests []generation.VocabularyRequest
	}
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateVocabulary implements the generation.Generator interface
func (m *MockGenerator) GenerateVocabulary(
	ctx context.Context,
	req generation.VocabularyRequest,
) (*generation.VocabularyContent, error) {
	m.GenerateVocabularyCalls.mu.Lock()
	m.GenerateVocabularyCalls.Requests = append(m.GenerateVocabularyCalls.Requests, req)
	m.GenerateVocabularyCalls.mu.Unlock()

	if m.GenerateVocabularyFn != nil {
		return m.GenerateVocabularyFn(ctx, req)
	}
	return m.Content, m.Err
}

// Calls returns how many times GenerateVocabulary was called.
func (m *MockGenerator) Calls() int {
	m.GenerateVocabularyCalls.mu.Lock()
	defer m.GenerateVocabularyCalls.mu.Unlock()
	return len(m.GenerateVocabularyCalls.Requests)
}

// Requests returns a copy of the recorded requests.
func (m *MockGenerator) Requests() []generation.VocabularyRequest {
	m.GenerateVocabularyCalls.mu.Lock()
	defer m.GenerateVocabularyCalls.mu.Unlock()
	return append([]generation.VocabularyRequest(nil), m.GenerateVocabularyCalls.Requests...)
}

// NewMockGeneratorWithMeaning creates a MockGenerator that explains every
// word as "meaning of <word>" with one example phrase.
func NewMockGeneratorWithMeaning() *MockGenerator {
	return &MockGenerator{
		GenerateVocabularyFn: func(_ context.Context, req generation.VocabularyRequest) (*generation.VocabularyContent, error) {
			return &generation.VocabularyContent{
				Meaning: "meaning of " + req.Word,
				Examples: []domain.ExamplePhrase{
					{Text: req.Word + "です。", Translation: "It is " + req.Word + "."},
				},
			}, nil
		},
	}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{
		Err: err,
	}
}
