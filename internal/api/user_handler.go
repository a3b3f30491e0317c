package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/keikaku/internal/api/shared"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/service"
)

// UserHandler handles learner registration and settings.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for UserHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// RegisterRoutes mounts the user endpoints under r. Routes that address a
// single user use the {userID} path parameter.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.CreateUser)
	r.Get("/users", h.ListUsers)
	r.Get("/users/{userID}", h.GetUser)
	r.Delete("/users/{userID}", h.DeleteUser)
	r.Put("/users/{userID}/settings", h.UpdateSettings)
	r.Put("/users/{userID}/level", h.SetLevel)
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateUserRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	lang, err := domain.ParseNativeLanguage(req.NativeLanguage)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	level, err := domain.ParseJapaneseLevel(req.CurrentLevel)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.CreateUser(r.Context(), service.CreateUserParams{
		Username:       req.Username,
		NativeLanguage: lang,
		CurrentLevel:   level,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userToResponse(u))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetUser handles GET /api/users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), ids[0])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// DeleteUser handles DELETE /api/users/{userID}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), ids[0]); err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSettings handles PUT /api/users/{userID}/settings
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	var req UpdateSettingsRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	user, err := h.users.UpdateSettings(r.Context(), ids[0], req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update settings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// SetLevel handles PUT /api/users/{userID}/level
func (h *UserHandler) SetLevel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	var req SetLevelRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}
	level, err := domain.ParseJapaneseLevel(req.Level)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.SetCurrentLevel(r.Context(), ids[0], level)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set level")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
