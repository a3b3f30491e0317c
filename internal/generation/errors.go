package generation

import (
	"fmt"

	"github.com/phrazzld/keikaku/internal/domain"
)

// Errors returned by generators. Each wraps domain.ErrLlm or
// domain.ErrTranslation so callers can tell content failures from
// scheduling and storage failures.
var (
	// ErrNotConfigured is returned when the user has not selected a model.
	ErrNotConfigured = fmt.Errorf("%w: Please set LLM settings in your profile", domain.ErrLlm)

	// ErrGenerationFailed is returned when generation fails for any general reason.
	ErrGenerationFailed = fmt.Errorf("%w: failed to generate content", domain.ErrLlm)

	// ErrInvalidResponse is returned when the model response cannot be parsed or is malformed.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response from language model", domain.ErrLlm)

	// ErrContentBlocked is returned when the model blocks the content due to safety filters.
	ErrContentBlocked = fmt.Errorf("%w: content blocked by language model safety filters", domain.ErrLlm)

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = fmt.Errorf("%w: transient error during generation", domain.ErrLlm)

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = fmt.Errorf("%w: invalid generator configuration", domain.ErrLlm)

	// ErrMissingTranslation is returned when an example phrase comes back
	// without a translation into the learner's language.
	ErrMissingTranslation = fmt.Errorf("%w: example phrase has no translation", domain.ErrTranslation)
)
