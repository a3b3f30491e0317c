package card_review

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/domain/srs"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/service"
	"github.com/phrazzld/keikaku/internal/store"
)

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	users      store.UserStore
	srsService srs.Service
	clock      func() time.Time
	logger     *slog.Logger
}

// NewCardReviewService creates a new CardReviewService implementation.
func NewCardReviewService(
	users store.UserStore,
	srsService srs.Service,
	logger *slog.Logger,
) CardReviewService {
	if users == nil {
		panic("users cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardReviewServiceImpl{
		users:      users,
		srsService: srsService,
		clock:      func() time.Time { return time.Now().UTC() },
		logger:     logger.With(slog.String("component", "card_review_service")),
	}
}

func (s *cardReviewServiceImpl) load(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, service.MapStoreError(err, userID)
	}
	return user, nil
}

// CardsToLesson implements CardReviewService.CardsToLesson.
func (s *cardReviewServiceImpl) CardsToLesson(ctx context.Context, userID uuid.UUID) ([]*domain.StudyCard, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cards := user.KnowledgeSet().NewCards(user.Settings().NewCardsPerLesson)

	logger.FromContextOrDefault(ctx, s.logger).Debug("selected lesson cards",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// CardsToFixation implements CardReviewService.CardsToFixation.
func (s *cardReviewServiceImpl) CardsToFixation(ctx context.Context, userID uuid.UUID) ([]*domain.StudyCard, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cards := user.KnowledgeSet().CardsToFixation(s.clock())

	logger.FromContextOrDefault(ctx, s.logger).Debug("selected fixation cards",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// RateCard implements CardReviewService.RateCard.
func (s *cardReviewServiceImpl) RateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	rating domain.Rating,
) (*RatedCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	if err := rating.Validate(); err != nil {
		log.Warn("invalid rating", slog.Int("rating", int(rating)))
		return nil, err
	}

	var result RatedCard
	_, err := service.UpdateUser(ctx, s.users, userID, func(u *domain.User) error {
		now := s.clock()

		sc, err := u.KnowledgeSet().Card(cardID)
		if err != nil {
			return err
		}
		history := sc.Memory()

		if r, ok := s.srsService.Retrievability(history, now); ok {
			result.Retrievability = &r
		}

		schedule, err := s.srsService.CalculateNextReview(history, rating, now)
		if err != nil {
			log.Error("failed to calculate next review", slog.String("error", err.Error()))
			return NewRateCardError("failed to calculate next review", err)
		}

		if err := u.RateCard(cardID, rating, schedule.Interval, schedule.State, now); err != nil {
			return NewRateCardError("failed to record review", err)
		}
		result.Card = sc
		return nil
	})
	if err != nil {
		return nil, err
	}

	state, _ := result.Card.Memory().Current()
	log.Debug("card rated",
		slog.String("rating", rating.String()),
		slog.Float64("stability", state.Stability().Value()),
		slog.Float64("difficulty", state.Difficulty().Value()),
		slog.Time("due_at", state.DueAt()))
	return &result, nil
}

// CompleteLesson implements CardReviewService.CompleteLesson.
func (s *cardReviewServiceImpl) CompleteLesson(
	ctx context.Context,
	userID uuid.UUID,
	duration time.Duration,
) (*Statistics, error) {
	now := s.clock()
	user, err := service.UpdateUser(ctx, s.users, userID, func(u *domain.User) error {
		if err := u.CompleteLesson(duration, now); err != nil {
			return NewCompleteLessonError("failed to record lesson", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := statisticsOf(user, now)
	logger.FromContextOrDefault(ctx, s.logger).Info("lesson completed",
		slog.String("user_id", userID.String()),
		slog.Duration("duration", duration),
		slog.Int("lessons_today", stats.Today.LessonsCompleted()))
	return stats, nil
}

// Statistics implements CardReviewService.Statistics.
func (s *cardReviewServiceImpl) Statistics(ctx context.Context, userID uuid.UUID) (*Statistics, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return statisticsOf(user, s.clock()), nil
}

func statisticsOf(user *domain.User, now time.Time) *Statistics {
	ks := user.KnowledgeSet()
	current := ks.Rollup()
	return &Statistics{
		Current:       current,
		Today:         ks.Today(),
		History:       ks.History(),
		TotalDuration: ks.TotalDuration(),
		DueNow:        len(ks.CardsToFixation(now)) - current.NewWords,
	}
}
