package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/store"
)

// CreateUserParams describes a new learner.
type CreateUserParams struct {
	Username       string
	NativeLanguage domain.NativeLanguage
	CurrentLevel   domain.JapaneseLevel
}

// UserService provides user-related operations.
type UserService interface {
	// CreateUser registers a learner with default settings and an empty knowledge set.
	CreateUser(ctx context.Context, params CreateUserParams) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers returns every user in creation order.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// DeleteUser deletes a user and their knowledge set.
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	// UpdateSettings replaces the user's study and LLM settings.
	UpdateSettings(ctx context.Context, userID uuid.UUID, settings domain.UserSettings) (*domain.User, error)

	// SetCurrentLevel changes the user's target JLPT level.
	SetCurrentLevel(ctx context.Context, userID uuid.UUID, level domain.JapaneseLevel) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	users    store.UserStore
	defaults domain.UserSettings
	clock    func() time.Time
	logger   *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
func NewUserService(users store.UserStore, logger *slog.Logger) *UserServiceImpl {
	if users == nil {
		panic("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:    users,
		defaults: domain.DefaultUserSettings(),
		clock:    utcNow,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

// WithNewCardsPerLesson changes the lesson size given to newly created users.
func (s *UserServiceImpl) WithNewCardsPerLesson(n int) (*UserServiceImpl, error) {
	defaults := s.defaults
	defaults.NewCardsPerLesson = n
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	s.defaults = defaults
	return s, nil
}

// CreateUser implements UserService.CreateUser.
func (s *UserServiceImpl) CreateUser(ctx context.Context, params CreateUserParams) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.clock()
	user, err := domain.NewUser(params.Username, params.NativeLanguage, params.CurrentLevel, now)
	if err != nil {
		log.Debug("rejected new user", slog.String("error", err.Error()))
		return nil, err
	}
	if err := user.UpdateSettings(s.defaults, now); err != nil {
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		log.Error("failed to save new user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID().String()))
		return nil, MapStoreError(err, user.ID())
	}

	log.Info("user created",
		slog.String("user_id", user.ID().String()),
		slog.String("native_language", string(user.NativeLanguage())),
		slog.String("level", string(user.CurrentLevel())))
	return user, nil
}

// GetUser implements UserService.GetUser.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("failed to retrieve user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	return user, nil
}

// ListUsers implements UserService.ListUsers.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", domain.ErrRepository, err)
	}
	return users, nil
}

// DeleteUser implements UserService.DeleteUser.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.users.Delete(ctx, userID); err != nil {
		err = MapStoreError(err, userID)
		log.Warn("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return err
	}

	log.Info("user deleted", slog.String("user_id", userID.String()))
	return nil
}

// UpdateSettings implements UserService.UpdateSettings.
func (s *UserServiceImpl) UpdateSettings(
	ctx context.Context,
	userID uuid.UUID,
	settings domain.UserSettings,
) (*domain.User, error) {
	user, err := UpdateUser(ctx, s.users, userID, func(u *domain.User) error {
		return u.UpdateSettings(settings, s.clock())
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user settings updated",
		slog.String("user_id", userID.String()),
		slog.String("llm_provider", string(settings.LLM.Provider)),
		slog.Int("new_cards_per_lesson", settings.NewCardsPerLesson))
	return user, nil
}

// SetCurrentLevel implements UserService.SetCurrentLevel.
func (s *UserServiceImpl) SetCurrentLevel(
	ctx context.Context,
	userID uuid.UUID,
	level domain.JapaneseLevel,
) (*domain.User, error) {
	return UpdateUser(ctx, s.users, userID, func(u *domain.User) error {
		return u.SetCurrentLevel(level, s.clock())
	})
}

func utcNow() time.Time {
	return time.Now().UTC()
}
