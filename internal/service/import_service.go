package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/generation"
	"github.com/phrazzld/keikaku/internal/lock"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/store"
	"github.com/phrazzld/keikaku/internal/wellknown"
)

// ImportResult counts what happened to each word of an imported set.
type ImportResult struct {
	SetID   wellknown.SetID `json:"set_id"`
	Created int             `json:"created"`
	Skipped int             `json:"skipped"`
	Failed  int             `json:"failed"`
}

// ImportService adds well-known word sets to a user's knowledge set.
type ImportService interface {
	// ImportWellKnownSet creates a vocabulary card for every word of the set.
	// Words already in the knowledge set are skipped; a word whose content
	// cannot be generated is logged and counted as failed without aborting
	// the import.
	ImportWellKnownSet(ctx context.Context, userID uuid.UUID, setID wellknown.SetID) (*ImportResult, error)
}

type importServiceImpl struct {
	users      store.UserStore
	generators generation.Providers
	locker     lock.Locker
	clock      func() time.Time
	logger     *slog.Logger
}

var _ ImportService = (*importServiceImpl)(nil)

// NewImportService creates an ImportService. Imports for one user are
// serialized through locker, since they run too long to hold a row lock.
func NewImportService(
	users store.UserStore,
	generators generation.Providers,
	locker lock.Locker,
	logger *slog.Logger,
) ImportService {
	if users == nil {
		panic("users cannot be nil")
	}
	if locker == nil {
		panic("locker cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &importServiceImpl{
		users:      users,
		generators: generators,
		locker:     locker,
		clock:      utcNow,
		logger:     logger.With(slog.String("component", "import_service")),
	}
}

// ImportWellKnownSet implements ImportService.ImportWellKnownSet.
func (s *importServiceImpl) ImportWellKnownSet(
	ctx context.Context,
	userID uuid.UUID,
	setID wellknown.SetID,
) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("set_id", string(setID)))

	set, err := wellknown.Load(setID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.UserKey(userID.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to lock user for import: %w", err)
	}
	defer func() {
		// The import may have been cancelled; release with a fresh context.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			log.Warn("failed to release import lock", slog.String("error", err.Error()))
		}
	}()

	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{SetID: setID}
	log.Info("import started", slog.Int("words", len(set.Words)))

	for _, word := range set.Words {
		if err := ctx.Err(); err != nil {
			log.Warn("import cancelled",
				slog.Int("created", result.Created),
				slog.Int("skipped", result.Skipped))
			return result, err
		}

		if _, exists := user.KnowledgeSet().FindByQuestion(word); exists {
			result.Skipped++
			continue
		}

		content, err := generateVocabulary(ctx, s.generators, user, word)
		if err != nil {
			if errors.Is(err, generation.ErrNotConfigured) {
				return result, err
			}
			log.Warn("skipping word after generation failure",
				slog.String("word", word),
				slog.String("error", err.Error()))
			result.Failed++
			continue
		}

		card, err := content.Card(word)
		if err != nil {
			log.Warn("skipping word with invalid content",
				slog.String("word", word),
				slog.String("error", err.Error()))
			result.Failed++
			continue
		}

		updated, err := UpdateUser(ctx, s.users, userID, func(u *domain.User) error {
			_, err := u.CreateCard(card, s.clock())
			return err
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateCard):
			result.Skipped++
		case errors.Is(err, domain.ErrUserNotFound):
			return result, err
		case err != nil:
			log.Error("failed to save imported card",
				slog.String("word", word),
				slog.String("error", err.Error()))
			result.Failed++
		default:
			user = updated
			result.Created++
		}
	}

	log.Info("import finished",
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return result, nil
}
