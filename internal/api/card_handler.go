package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/keikaku/internal/api/shared"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/service"
	"github.com/phrazzld/keikaku/internal/service/card_review"
)

// CardHandler handles the cards of a knowledge set and the study sessions
// run over them.
type CardHandler struct {
	cards   service.CardService
	reviews card_review.CardReviewService
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(
	cards service.CardService,
	reviews card_review.CardReviewService,
	logger *slog.Logger,
) *CardHandler {
	if cards == nil || reviews == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card and review services cannot be nil for CardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{
		cards:   cards,
		reviews: reviews,
		logger:  logger.With(slog.String("component", "card_handler")),
	}
}

// RegisterRoutes mounts card and study endpoints under r.
func (h *CardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users/{userID}/cards", h.ListCards)
	r.Post("/users/{userID}/cards", h.CreateCard)
	r.Get("/users/{userID}/cards/{cardID}", h.GetCard)
	r.Delete("/users/{userID}/cards/{cardID}", h.DeleteCard)
	r.Post("/users/{userID}/cards/{cardID}/rate", h.RateCard)

	r.Get("/users/{userID}/lesson", h.CardsToLesson)
	r.Get("/users/{userID}/fixation", h.CardsToFixation)
	r.Post("/users/{userID}/lessons/complete", h.CompleteLesson)
	r.Get("/users/{userID}/stats", h.Statistics)
}

// ListCards handles GET /api/users/{userID}/cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	cards, err := h.cards.ListCards(r.Context(), ids[0])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// CreateCard handles POST /api/users/{userID}/cards
// Vocabulary cards without a meaning are authored by the user's LLM
// provider, so this request can take as long as one model call.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	userID := ids[0]

	var req CreateCardRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	var (
		card *domain.StudyCard
		err  error
	)
	switch domain.CardKind(req.Kind) {
	case domain.CardKindVocabulary:
		card, err = h.cards.CreateVocabularyCard(r.Context(), userID, service.VocabularyCardParams{
			Word:     req.Word,
			Meaning:  req.Meaning,
			Examples: examplePhrases(req.Examples),
		})
	case domain.CardKindKanji:
		card, err = h.cards.CreateKanjiCard(r.Context(), userID, req.Kanji)
	case domain.CardKindGrammar:
		card, err = h.cards.CreateGrammarCard(r.Context(), userID, req.RuleID)
	default:
		err = fmt.Errorf("%w: unknown card kind %q", domain.ErrInvalidValues, req.Kind)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	log.Debug("card created",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID().String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// GetCard handles GET /api/users/{userID}/cards/{cardID}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam, cardIDParam)
	if !ok {
		return
	}
	card, err := h.cards.GetCard(r.Context(), ids[0], ids[1])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// DeleteCard handles DELETE /api/users/{userID}/cards/{cardID}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam, cardIDParam)
	if !ok {
		return
	}
	if err := h.cards.DeleteCard(r.Context(), ids[0], ids[1]); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RateCard handles POST /api/users/{userID}/cards/{cardID}/rate
// It records a review and returns the rescheduled card.
func (h *CardHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam, cardIDParam)
	if !ok {
		return
	}
	var req RateCardRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	rated, err := h.reviews.RateCard(r.Context(), ids[0], ids[1], req.Rating)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rate card")
		return
	}

	log.Debug("card rated",
		slog.String("user_id", ids[0].String()),
		slog.String("card_id", ids[1].String()),
		slog.String("rating", req.Rating.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, RatedCardResponse{
		Card:           cardToResponse(rated.Card),
		Retrievability: rated.Retrievability,
	})
}

// CardsToLesson handles GET /api/users/{userID}/lesson
func (h *CardHandler) CardsToLesson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	cards, err := h.reviews.CardsToLesson(r.Context(), ids[0])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to select lesson cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// CardsToFixation handles GET /api/users/{userID}/fixation
func (h *CardHandler) CardsToFixation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	cards, err := h.reviews.CardsToFixation(r.Context(), ids[0])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to select fixation cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// CompleteLesson handles POST /api/users/{userID}/lessons/complete
func (h *CardHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	var req CompleteLessonRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	stats, err := h.reviews.CompleteLesson(r.Context(), ids[0], time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete lesson")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, statisticsToResponse(stats))
}

// Statistics handles GET /api/users/{userID}/stats
func (h *CardHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	stats, err := h.reviews.Statistics(r.Context(), ids[0])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, statisticsToResponse(stats))
}
