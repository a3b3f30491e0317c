package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/dictionary"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/generation"
	"github.com/phrazzld/keikaku/internal/mocks"
	"github.com/phrazzld/keikaku/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCardService(t *testing.T, gen generation.Generator) (*cardServiceImpl, store.UserStore) {
	t.Helper()
	users := newTestStore(t)
	providers := generation.Providers{}
	if gen != nil {
		providers[domain.LlmProviderGemini] = gen
	}
	svc, err := NewCardService(users, providers, nil)
	require.NoError(t, err)
	impl := svc.(*cardServiceImpl)
	impl.clock = fixedClock(testNow)
	return impl, users
}

func TestNewCardServiceRequiresStore(t *testing.T) {
	t.Parallel()
	_, err := NewCardService(nil, nil, nil)
	var svcErr *CardServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "new", svcErr.Operation)
}

func TestCreateVocabularyCardWithMeaning(t *testing.T) {
	t.Parallel()
	gen := mocks.NewMockGeneratorWithMeaning()
	svc, users := newTestCardService(t, gen)
	user := seedUser(t, users, domain.LanguageEnglish, true)
	ctx := context.Background()

	sc, err := svc.CreateVocabularyCard(ctx, user.ID(), VocabularyCardParams{Word: "猫", Meaning: "cat"})
	require.NoError(t, err)
	assert.Equal(t, "猫", sc.Card().Question().Text())
	assert.Equal(t, "cat", sc.Card().Answer().Text())
	assert.True(t, sc.IsNew())
	assert.Zero(t, gen.Calls(), "a supplied meaning needs no generation")

	stored, err := users.GetByID(ctx, user.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.KnowledgeSet().Len())
}

func TestCreateVocabularyCardGenerated(t *testing.T) {
	t.Parallel()
	gen := mocks.NewMockGeneratorWithMeaning()
	svc, users := newTestCardService(t, gen)
	user := seedUser(t, users, domain.LanguageRussian, true)

	sc, err := svc.CreateVocabularyCard(context.Background(), user.ID(), VocabularyCardParams{Word: "犬"})
	require.NoError(t, err)
	assert.Equal(t, "meaning of 犬", sc.Card().Answer().Text())

	vocab, ok := sc.Card().(*domain.VocabularyCard)
	require.True(t, ok)
	assert.Len(t, vocab.Examples(), 1)

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.LanguageRussian, reqs[0].NativeLanguage)
	assert.Equal(t, domain.LevelN5, reqs[0].Level)
	assert.Equal(t, "gemini-2.0-flash", reqs[0].Model)
	assert.InDelta(t, 0.7, reqs[0].Temperature, 1e-6)
}

func TestCreateVocabularyCardWithoutLLM(t *testing.T) {
	t.Parallel()
	svc, users := newTestCardService(t, mocks.NewMockGeneratorWithMeaning())
	user := seedUser(t, users, domain.LanguageEnglish, false)

	_, err := svc.CreateVocabularyCard(context.Background(), user.ID(), VocabularyCardParams{Word: "犬"})
	assert.ErrorIs(t, err, generation.ErrNotConfigured)
	assert.ErrorIs(t, err, domain.ErrLlm)
	assert.Contains(t, err.Error(), "Please set LLM settings in your profile")
}

func TestCreateVocabularyCardGenerationFailure(t *testing.T) {
	t.Parallel()
	svc, users := newTestCardService(t, mocks.NewMockGeneratorWithError(generation.ErrContentBlocked))
	user := seedUser(t, users, domain.LanguageEnglish, true)

	_, err := svc.CreateVocabularyCard(context.Background(), user.ID(), VocabularyCardParams{Word: "犬"})
	assert.ErrorIs(t, err, generation.ErrContentBlocked)

	stored, err := users.GetByID(context.Background(), user.ID())
	require.NoError(t, err)
	assert.Zero(t, stored.KnowledgeSet().Len())
}

func TestCreateVocabularyCardDuplicateSkipsGeneration(t *testing.T) {
	t.Parallel()
	gen := mocks.NewMockGeneratorWithMeaning()
	svc, users := newTestCardService(t, gen)
	user := seedUser(t, users, domain.LanguageEnglish, true)
	ctx := context.Background()

	_, err := svc.CreateVocabularyCard(ctx, user.ID(), VocabularyCardParams{Word: "猫", Meaning: "cat"})
	require.NoError(t, err)

	_, err = svc.CreateVocabularyCard(ctx, user.ID(), VocabularyCardParams{Word: " 猫 "})
	var dup *domain.DuplicateCardError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "猫", dup.Question)
	assert.Zero(t, gen.Calls())
}

func TestCreateVocabularyCardRequiresJapanese(t *testing.T) {
	t.Parallel()
	gen := mocks.NewMockGeneratorWithMeaning()
	svc, users := newTestCardService(t, gen)
	user := seedUser(t, users, domain.LanguageEnglish, true)

	for _, word := range []string{"", "cat", "  "} {
		_, err := svc.CreateVocabularyCard(context.Background(), user.ID(), VocabularyCardParams{Word: word})
		assert.ErrorIs(t, err, domain.ErrInvalidQuestion, word)
	}
	assert.Zero(t, gen.Calls())
}

func TestCreateVocabularyCardUnknownUser(t *testing.T) {
	t.Parallel()
	svc, _ := newTestCardService(t, nil)

	_, err := svc.CreateVocabularyCard(context.Background(), uuid.New(), VocabularyCardParams{Word: "猫", Meaning: "cat"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateKanjiCard(t *testing.T) {
	t.Parallel()
	svc, users := newTestCardService(t, nil)
	user := seedUser(t, users, domain.LanguageRussian, false)
	ctx := context.Background()

	sc, err := svc.CreateKanjiCard(ctx, user.ID(), "水")
	require.NoError(t, err)
	kanji, ok := sc.Card().(*domain.KanjiCard)
	require.True(t, ok)
	assert.Equal(t, "вода", kanji.Answer().Text())
	assert.Equal(t, []string{"スイ"}, kanji.Onyomi())
	assert.Equal(t, domain.LevelN5, kanji.Level())

	_, err = svc.CreateKanjiCard(ctx, user.ID(), "水")
	assert.ErrorIs(t, err, domain.ErrDuplicateCard)

	_, err = svc.CreateKanjiCard(ctx, user.ID(), "鬱")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestCreateGrammarCard(t *testing.T) {
	t.Parallel()
	svc, users := newTestCardService(t, nil)
	user := seedUser(t, users, domain.LanguageEnglish, false)
	ctx := context.Background()

	sc, err := svc.CreateGrammarCard(ctx, user.ID(), "n5-tai")
	require.NoError(t, err)
	rule, ok := sc.Card().(*domain.GrammarRuleCard)
	require.True(t, ok)
	assert.Equal(t, "n5-tai", rule.RuleID())

	_, err = svc.CreateGrammarCard(ctx, user.ID(), "missing")
	assert.ErrorIs(t, err, dictionary.ErrNotFound)
}

func TestDeleteCard(t *testing.T) {
	t.Parallel()
	svc, users := newTestCardService(t, nil)
	user := seedUser(t, users, domain.LanguageEnglish, false)
	ctx := context.Background()

	sc, err := svc.CreateVocabularyCard(ctx, user.ID(), VocabularyCardParams{Word: "猫", Meaning: "cat"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCard(ctx, user.ID(), sc.ID()))

	err = svc.DeleteCard(ctx, user.ID(), sc.ID())
	var notFound *domain.CardNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, sc.ID(), notFound.CardID)

	_, err = svc.GetCard(ctx, user.ID(), sc.ID())
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestListCardsInCreationOrder(t *testing.T) {
	t.Parallel()
	svc, users := newTestCardService(t, nil)
	user := seedUser(t, users, domain.LanguageEnglish, false)
	ctx := context.Background()

	words := []string{"猫", "犬", "鳥"}
	for _, w := range words {
		_, err := svc.CreateVocabularyCard(ctx, user.ID(), VocabularyCardParams{Word: w, Meaning: "animal"})
		require.NoError(t, err)
	}

	cards, err := svc.ListCards(ctx, user.ID())
	require.NoError(t, err)
	require.Len(t, cards, len(words))
	for i, w := range words {
		assert.Equal(t, w, cards[i].Card().Question().Text())
	}

	got, err := svc.GetCard(ctx, user.ID(), cards[1].ID())
	require.NoError(t, err)
	assert.Equal(t, "犬", got.Card().Question().Text())
}
