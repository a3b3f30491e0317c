package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/dictionary"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/generation"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/store"
)

// VocabularyCardParams describes a vocabulary card to add. When Meaning is
// empty the meaning and examples are authored by the user's LLM provider.
type VocabularyCardParams struct {
	Word     string
	Meaning  string
	Examples []domain.ExamplePhrase
}

// CardService provides operations on the cards of a user's knowledge set.
type CardService interface {
	// CreateVocabularyCard adds a vocabulary card, generating its content when needed.
	CreateVocabularyCard(ctx context.Context, userID uuid.UUID, params VocabularyCardParams) (*domain.StudyCard, error)

	// CreateKanjiCard adds a card for a kanji from the kanji dictionary.
	CreateKanjiCard(ctx context.Context, userID uuid.UUID, kanji string) (*domain.StudyCard, error)

	// CreateGrammarCard adds a card for a rule from the grammar reference.
	CreateGrammarCard(ctx context.Context, userID uuid.UUID, ruleID string) (*domain.StudyCard, error)

	// DeleteCard removes a card and its review history.
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error

	// GetCard returns one card of the user's knowledge set.
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.StudyCard, error)

	// ListCards returns the user's cards in creation order.
	ListCards(ctx context.Context, userID uuid.UUID) ([]*domain.StudyCard, error)
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	users      store.UserStore
	generators generation.Providers
	clock      func() time.Time
	logger     *slog.Logger
}

var _ CardService = (*cardServiceImpl)(nil)

// NewCardService creates a new CardService. generators maps LLM providers
// to generators; providers without an entry report that the LLM is not configured.
func NewCardService(
	users store.UserStore,
	generators generation.Providers,
	logger *slog.Logger,
) (CardService, error) {
	if users == nil {
		return nil, NewCardServiceError("new", "users cannot be nil", domain.ErrInvalidValues)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cardServiceImpl{
		users:      users,
		generators: generators,
		clock:      utcNow,
		logger:     logger.With(slog.String("component", "card_service")),
	}, nil
}

// CreateVocabularyCard implements CardService.CreateVocabularyCard.
func (s *cardServiceImpl) CreateVocabularyCard(
	ctx context.Context,
	userID uuid.UUID,
	params VocabularyCardParams,
) (*domain.StudyCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.ContainsJapanese(params.Word) {
		return nil, fmt.Errorf("%w: word %q has no Japanese text", domain.ErrInvalidQuestion, params.Word)
	}

	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	// Fail fast on duplicates before spending a model call.
	if _, exists := user.KnowledgeSet().FindByQuestion(params.Word); exists {
		return nil, &domain.DuplicateCardError{Question: strings.TrimSpace(params.Word)}
	}

	meaning, examples := params.Meaning, params.Examples
	if strings.TrimSpace(meaning) == "" {
		content, err := generateVocabulary(ctx, s.generators, user, params.Word)
		if err != nil {
			log.Warn("vocabulary generation failed",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, err
		}
		meaning, examples = content.Meaning, content.Examples
	}

	card, err := domain.NewVocabularyCard(params.Word, meaning, examples)
	if err != nil {
		return nil, err
	}
	return s.addCard(ctx, userID, card)
}

// CreateKanjiCard implements CardService.CreateKanjiCard.
func (s *cardServiceImpl) CreateKanjiCard(ctx context.Context, userID uuid.UUID, kanji string) (*domain.StudyCard, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	info, err := dictionary.Kanji(strings.TrimSpace(kanji))
	if err != nil {
		return nil, err
	}
	card, err := info.Card(user.NativeLanguage())
	if err != nil {
		return nil, NewCardServiceError("create_kanji_card", "failed to build card", err)
	}
	return s.addCard(ctx, userID, card)
}

// CreateGrammarCard implements CardService.CreateGrammarCard.
func (s *cardServiceImpl) CreateGrammarCard(ctx context.Context, userID uuid.UUID, ruleID string) (*domain.StudyCard, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	rule, err := dictionary.Grammar(ruleID)
	if err != nil {
		return nil, err
	}
	card, err := rule.Card(user.NativeLanguage())
	if err != nil {
		return nil, NewCardServiceError("create_grammar_card", "failed to build card", err)
	}
	return s.addCard(ctx, userID, card)
}

func (s *cardServiceImpl) addCard(ctx context.Context, userID uuid.UUID, card domain.Card) (*domain.StudyCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var created *domain.StudyCard
	_, err := UpdateUser(ctx, s.users, userID, func(u *domain.User) error {
		sc, err := u.CreateCard(card, s.clock())
		if err != nil {
			return err
		}
		created = sc
		return nil
	})
	if err != nil {
		log.Debug("card not created",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("kind", string(card.Kind())))
		return nil, err
	}

	log.Info("card created",
		slog.String("user_id", userID.String()),
		slog.String("card_id", created.ID().String()),
		slog.String("kind", string(card.Kind())))
	return created, nil
}

// DeleteCard implements CardService.DeleteCard.
func (s *cardServiceImpl) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	_, err := UpdateUser(ctx, s.users, userID, func(u *domain.User) error {
		return u.DeleteCard(cardID, s.clock())
	})
	if err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card deleted",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))
	return nil
}

// GetCard implements CardService.GetCard.
func (s *cardServiceImpl) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.StudyCard, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return user.KnowledgeSet().Card(cardID)
}

// ListCards implements CardService.ListCards.
func (s *cardServiceImpl) ListCards(ctx context.Context, userID uuid.UUID) ([]*domain.StudyCard, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return user.KnowledgeSet().Cards(), nil
}

// generateVocabulary asks the user's configured provider for a word's meaning.
func generateVocabulary(
	ctx context.Context,
	generators generation.Providers,
	user *domain.User,
	word string,
) (*generation.VocabularyContent, error) {
	settings := user.Settings().LLM
	req := generation.VocabularyRequest{
		Word:           word,
		NativeLanguage: user.NativeLanguage(),
		Level:          user.CurrentLevel(),
		Model:          settings.Model,
		Temperature:    settings.Temperature,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return generators.For(settings).GenerateVocabulary(ctx, req)
}
