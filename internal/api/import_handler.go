package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/api/shared"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/service"
	"github.com/phrazzld/keikaku/internal/task"
	"github.com/phrazzld/keikaku/internal/wellknown"
)

// TaskSubmitter queues background tasks and finds them again by id.
// *task.TaskRunner satisfies it.
type TaskSubmitter interface {
	Submit(t task.Task) error
	Get(id uuid.UUID) (task.Task, bool)
}

// ImportHandler queues well-known set imports and reports their progress.
type ImportHandler struct {
	users    service.UserService
	importer service.ImportService
	tasks    TaskSubmitter
	logger   *slog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(
	users service.UserService,
	importer service.ImportService,
	tasks TaskSubmitter,
	logger *slog.Logger,
) *ImportHandler {
	if users == nil || importer == nil || tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users, importer and tasks cannot be nil for ImportHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportHandler{
		users:    users,
		importer: importer,
		tasks:    tasks,
		logger:   logger.With(slog.String("component", "import_handler")),
	}
}

// RegisterRoutes mounts the import endpoints under r.
func (h *ImportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/well-known-sets", h.ListWellKnownSets)
	r.Post("/users/{userID}/imports", h.StartImport)
	r.Get("/users/{userID}/imports/{taskID}", h.GetImport)
}

// ListWellKnownSets handles GET /api/well-known-sets?lang=en
func (h *ImportHandler) ListWellKnownSets(w http.ResponseWriter, r *http.Request) {
	lang, ok := languageFromQuery(w, r)
	if !ok {
		return
	}
	infos, err := wellknown.List(lang)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list well-known sets")
		return
	}

	resp := make([]WellKnownSetResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, wellKnownSetToResponse(info))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// StartImport handles POST /api/users/{userID}/imports
// The import runs in the background; the response carries the task id to
// poll with GetImport.
func (h *ImportHandler) StartImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam)
	if !ok {
		return
	}
	userID := ids[0]

	var req StartImportRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	// Reject unknown users now rather than in a failed task.
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start import")
		return
	}

	setID := wellknown.SetID(req.SetID)
	if setID == "" {
		if setID, err = wellknown.ForLevel(user.CurrentLevel()); err != nil {
			HandleAPIError(w, r, err, "Failed to start import")
			return
		}
	}

	t, err := task.NewImportTask(userID, setID, h.importer, h.logger)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start import")
		return
	}
	if err := h.tasks.Submit(t); err != nil {
		HandleAPIError(w, r, err, "Failed to start import")
		return
	}

	log.Info("import queued",
		slog.String("user_id", userID.String()),
		slog.String("set_id", string(setID)),
		slog.String("task_id", t.ID().String()))
	w.Header().Set("Location", r.URL.Path+"/"+t.ID().String())
	shared.RespondWithJSON(w, r, http.StatusAccepted, importToResponse(t))
}

// GetImport handles GET /api/users/{userID}/imports/{taskID}
func (h *ImportHandler) GetImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := handlePathUUIDs(w, r, log, userIDParam, taskIDParam)
	if !ok {
		return
	}

	found, ok := h.tasks.Get(ids[1])
	imp, isImport := found.(*task.ImportTask)
	if !ok || !isImport || imp.UserID() != ids[0] {
		HandleAPIError(w, r, errTaskNotFound, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, importToResponse(imp))
}

// languageFromQuery reads the lang query parameter, defaulting to English.
func languageFromQuery(w http.ResponseWriter, r *http.Request) (domain.NativeLanguage, bool) {
	raw := r.URL.Query().Get("lang")
	if raw == "" {
		return domain.LanguageEnglish, true
	}
	lang, err := domain.ParseNativeLanguage(raw)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Unsupported language", err)
		return "", false
	}
	return lang, true
}
