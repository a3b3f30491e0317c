package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/keikaku/internal/api/shared"
	"github.com/phrazzld/keikaku/internal/dictionary"
	"github.com/phrazzld/keikaku/internal/domain"
)

// ReferenceHandler serves the bundled kanji and grammar reference.
type ReferenceHandler struct {
	logger *slog.Logger
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(logger *slog.Logger) *ReferenceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferenceHandler{logger: logger.With(slog.String("component", "reference_handler"))}
}

// RegisterRoutes mounts the reference endpoints under r.
func (h *ReferenceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/kanji", h.ListKanji)
	r.Get("/kanji/{kanji}", h.GetKanji)
	r.Get("/grammar", h.ListGrammar)
	r.Get("/grammar/{ruleID}", h.GetGrammar)
}

// levelFromQuery reads the required level query parameter.
func levelFromQuery(w http.ResponseWriter, r *http.Request) (domain.JapaneseLevel, bool) {
	raw := r.URL.Query().Get("level")
	if raw == "" {
		HandleAPIError(w, r, fmt.Errorf("%w: level is required", domain.ErrInvalidValues), "")
		return "", false
	}
	level, err := domain.ParseJapaneseLevel(raw)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return "", false
	}
	return level, true
}

// ListKanji handles GET /api/kanji?level=N5&lang=en
func (h *ReferenceHandler) ListKanji(w http.ResponseWriter, r *http.Request) {
	level, ok := levelFromQuery(w, r)
	if !ok {
		return
	}
	lang, ok := languageFromQuery(w, r)
	if !ok {
		return
	}

	entries, err := dictionary.KanjiByLevel(level)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load kanji")
		return
	}
	resp := make([]KanjiResponse, 0, len(entries))
	for _, k := range entries {
		resp = append(resp, kanjiToResponse(k, lang))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetKanji handles GET /api/kanji/{kanji}
func (h *ReferenceHandler) GetKanji(w http.ResponseWriter, r *http.Request) {
	lang, ok := languageFromQuery(w, r)
	if !ok {
		return
	}
	k, err := dictionary.Kanji(chi.URLParam(r, "kanji"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load kanji")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, kanjiToResponse(k, lang))
}

// ListGrammar handles GET /api/grammar?level=N5&lang=en
func (h *ReferenceHandler) ListGrammar(w http.ResponseWriter, r *http.Request) {
	level, ok := levelFromQuery(w, r)
	if !ok {
		return
	}
	lang, ok := languageFromQuery(w, r)
	if !ok {
		return
	}

	rules, err := dictionary.GrammarByLevel(level)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load grammar")
		return
	}
	resp := make([]GrammarResponse, 0, len(rules))
	for _, g := range rules {
		resp = append(resp, grammarToResponse(g, lang))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetGrammar handles GET /api/grammar/{ruleID}
func (h *ReferenceHandler) GetGrammar(w http.ResponseWriter, r *http.Request) {
	lang, ok := languageFromQuery(w, r)
	if !ok {
		return
	}
	g, err := dictionary.Grammar(chi.URLParam(r, "ruleID"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load grammar rule")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, grammarToResponse(g, lang))
}
