package gemini

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/phrazzld/keikaku/internal/generation"
)

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("vocabulary").Parse(promptSource))

// createPrompt renders the vocabulary prompt for req.
func createPrompt(req generation.VocabularyRequest) (string, error) {
	language, ok := languageNames[string(req.NativeLanguage)]
	if !ok {
		return "", fmt.Errorf("%w: no prompt language for %q", generation.ErrInvalidConfig, req.NativeLanguage)
	}
	level := string(req.Level)
	if level == "" {
		level = "N5"
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, promptData{
		Word:     req.Word,
		Language: language,
		Level:    level,
	}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
