package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/phrazzld/keikaku/internal/config"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/generation"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"google.golang.org/genai"
)

// contentModel is the subset of *genai.Models the generator calls.
type contentModel interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	models     contentModel
	model      string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini client from cfg. The API key and model name
// are required.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %w", generation.ErrInvalidConfig, err)
	}

	return newGenerator(client.Models, cfg, logger), nil
}

func newGenerator(models contentModel, cfg config.LLMConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	delay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Generator{
		models:     models,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  delay,
		logger:     logger.With(slog.String("component", "gemini_generator")),
	}
}

// GenerateVocabulary implements generation.Generator.
func (g *Generator) GenerateVocabulary(
	ctx context.Context,
	req generation.VocabularyRequest,
) (*generation.VocabularyContent, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt, err := createPrompt(req)
	if err != nil {
		return nil, err
	}

	model := g.model
	if req.Model != "" {
		model = req.Model
	}
	temperature := req.Temperature
	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}
	if temperature > 0 {
		genConfig.Temperature = &temperature
	}

	log.Debug("generating vocabulary content",
		slog.String("model", model),
		slog.Int("prompt_length", len(prompt)))

	resp, err := g.callWithRetry(ctx, log, model, prompt, genConfig)
	if err != nil {
		return nil, err
	}

	content, err := parseResponse(resp)
	if err != nil {
		log.Warn("unusable model response", slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("generated vocabulary content",
		slog.String("model", model),
		slog.Int("examples", len(content.Examples)))
	return content, nil
}

// callWithRetry calls the API up to maxRetries+1 times. The delay before
// retry n is baseDelay * 2^n scaled by a jitter factor in [0.5, 1).
func (g *Generator) callWithRetry(
	ctx context.Context,
	log *slog.Logger,
	model, prompt string,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	for attempt := 0; ; attempt++ {
		text, err := g.call(ctx, model, prompt, genConfig)
		if err == nil {
			return text, nil
		}

		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			log.Warn("permanent generation error, not retrying",
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()))
			return "", err
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctx.Err())
		}

		log.Error("Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", g.maxRetries+1),
			slog.String("error", err.Error()))

		if attempt >= g.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %w",
				generation.ErrTransientFailure, g.maxRetries, err)
		}

		backoff := float64(g.baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			log.Warn("generation cancelled during retry delay", slog.Int("attempt", attempt+1))
			return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

func (g *Generator) call(
	ctx context.Context,
	model, prompt string,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	resp, err := g.models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	switch {
	case err != nil:
		return "", err
	case resp == nil || len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, resp.Candidates[0].FinishReason)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

// parseResponse validates the model's JSON and converts it to content.
// An example without a translation fails the whole response.
func parseResponse(text string) (*generation.VocabularyContent, error) {
	var parsed vocabularyResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %w", generation.ErrInvalidResponse, err)
	}

	meaning := strings.TrimSpace(parsed.Meaning)
	if meaning == "" {
		return nil, fmt.Errorf("%w: response has no meaning", generation.ErrInvalidResponse)
	}

	examples := make([]domain.ExamplePhrase, 0, len(parsed.Examples))
	for i, ex := range parsed.Examples {
		phrase := strings.TrimSpace(ex.Text)
		if phrase == "" {
			return nil, fmt.Errorf("%w: example %d has no text", generation.ErrInvalidResponse, i)
		}
		translation := strings.TrimSpace(ex.Translation)
		if translation == "" {
			return nil, fmt.Errorf("%w: example %d", generation.ErrMissingTranslation, i)
		}
		examples = append(examples, domain.ExamplePhrase{Text: phrase, Translation: translation})
	}

	return &generation.VocabularyContent{Meaning: meaning, Examples: examples}, nil
}
