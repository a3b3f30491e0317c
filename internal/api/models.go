package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/dictionary"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/service"
	"github.com/phrazzld/keikaku/internal/service/card_review"
	"github.com/phrazzld/keikaku/internal/task"
	"github.com/phrazzld/keikaku/internal/wellknown"
)

// CreateUserRequest defines the payload for registering a learner.
type CreateUserRequest struct {
	Username       string `json:"username"        validate:"required,max=64"`
	NativeLanguage string `json:"native_language" validate:"required,oneof=en ru"`
	CurrentLevel   string `json:"current_level"   validate:"required,oneof=N5 N4 N3 N2 N1 n5 n4 n3 n2 n1"`
}

// LlmSettingsRequest is the LLM part of UpdateSettingsRequest.
type LlmSettingsRequest struct {
	Provider    string  `json:"provider"              validate:"required,oneof=none gemini"`
	Model       string  `json:"model,omitempty"       validate:"max=128"`
	Temperature float32 `json:"temperature,omitempty" validate:"gte=0,lte=2"`
}

// UpdateSettingsRequest replaces a user's settings.
type UpdateSettingsRequest struct {
	LLM               LlmSettingsRequest `json:"llm"`
	NewCardsPerLesson int                `json:"new_cards_per_lesson" validate:"gte=1,lte=100"`
}

func (r UpdateSettingsRequest) toDomain() domain.UserSettings {
	return domain.UserSettings{
		LLM: domain.LlmSettings{
			Provider:    domain.LlmProvider(r.LLM.Provider),
			Model:       r.LLM.Model,
			Temperature: r.LLM.Temperature,
		},
		NewCardsPerLesson: r.NewCardsPerLesson,
	}
}

// SetLevelRequest changes a user's target JLPT level.
type SetLevelRequest struct {
	Level string `json:"level" validate:"required,oneof=N5 N4 N3 N2 N1 n5 n4 n3 n2 n1"`
}

// UserResponse represents a learner without their cards.
type UserResponse struct {
	ID             uuid.UUID           `json:"id"`
	Username       string              `json:"username"`
	NativeLanguage string              `json:"native_language"`
	CurrentLevel   string              `json:"current_level"`
	Settings       domain.UserSettings `json:"settings"`
	CardCount      int                 `json:"card_count"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID(),
		Username:       u.Username(),
		NativeLanguage: string(u.NativeLanguage()),
		CurrentLevel:   string(u.CurrentLevel()),
		Settings:       u.Settings(),
		CardCount:      u.KnowledgeSet().Len(),
		CreatedAt:      u.CreatedAt(),
		UpdatedAt:      u.UpdatedAt(),
	}
}

// CreateCardRequest adds a card. Kind selects which fields are used:
// vocabulary takes word and an optional meaning and examples, kanji takes
// kanji, grammar takes rule_id.
type CreateCardRequest struct {
	Kind     string                 `json:"kind"               validate:"required,oneof=vocabulary kanji grammar"`
	Word     string                 `json:"word,omitempty"     validate:"required_if=Kind vocabulary,max=128"`
	Meaning  string                 `json:"meaning,omitempty"  validate:"max=1024"`
	Examples []ExamplePhraseRequest `json:"examples,omitempty" validate:"max=20,dive"`
	Kanji    string                 `json:"kanji,omitempty"    validate:"required_if=Kind kanji,max=8"`
	RuleID   string                 `json:"rule_id,omitempty"  validate:"required_if=Kind grammar,max=64"`
}

// ExamplePhraseRequest is a usage example supplied with a vocabulary card.
type ExamplePhraseRequest struct {
	Text        string `json:"text"        validate:"required,max=1024"`
	Translation string `json:"translation" validate:"max=1024"`
}

func examplePhrases(reqs []ExamplePhraseRequest) []domain.ExamplePhrase {
	if len(reqs) == 0 {
		return nil
	}
	phrases := make([]domain.ExamplePhrase, len(reqs))
	for i, r := range reqs {
		phrases[i] = domain.ExamplePhrase{Text: r.Text, Translation: r.Translation}
	}
	return phrases
}

// RateCardRequest records a review. Rating is a name or 1-4.
type RateCardRequest struct {
	Rating domain.Rating `json:"rating" validate:"required"`
}

// CompleteLessonRequest closes a lesson. A lesson lasts at most a day.
type CompleteLessonRequest struct {
	DurationSeconds int64 `json:"duration_seconds" validate:"gte=0,lte=86400"`
}

// MemoryStateResponse is a card's scheduled memory state.
type MemoryStateResponse struct {
	Stability  float64   `json:"stability"`
	Difficulty float64   `json:"difficulty"`
	DueAt      time.Time `json:"due_at"`
}

// ReviewResponse is one entry of a card's review history.
type ReviewResponse struct {
	Timestamp       time.Time           `json:"timestamp"`
	Rating          domain.Rating       `json:"rating"`
	IntervalSeconds int64               `json:"interval_seconds"`
	State           MemoryStateResponse `json:"state"`
}

// CardResponse represents a study card and its memory.
type CardResponse struct {
	ID       uuid.UUID `json:"id"`
	Kind     string    `json:"kind"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`

	Examples     []domain.ExamplePhrase `json:"examples,omitempty"`
	Onyomi       []string               `json:"onyomi,omitempty"`
	Kunyomi      []string               `json:"kunyomi,omitempty"`
	StrokeCount  int                    `json:"stroke_count,omitempty"`
	Level        string                 `json:"level,omitempty"`
	ExampleWords []domain.ExampleWord   `json:"example_words,omitempty"`
	RuleID       string                 `json:"rule_id,omitempty"`

	IsNew   bool                 `json:"is_new"`
	Current *MemoryStateResponse `json:"current,omitempty"`
	Reviews []ReviewResponse     `json:"reviews"`
}

func memoryStateToResponse(s domain.MemoryState) MemoryStateResponse {
	return MemoryStateResponse{
		Stability:  s.Stability().Value(),
		Difficulty: s.Difficulty().Value(),
		DueAt:      s.DueAt(),
	}
}

func cardToResponse(sc *domain.StudyCard) CardResponse {
	resp := CardResponse{
		ID:       sc.ID(),
		Kind:     string(sc.Card().Kind()),
		Question: sc.Card().Question().Text(),
		Answer:   sc.Card().Answer().Text(),
		IsNew:    sc.IsNew(),
		Reviews:  make([]ReviewResponse, 0, sc.Memory().Len()),
	}

	switch c := sc.Card().(type) {
	case *domain.VocabularyCard:
		resp.Examples = c.Examples()
	case *domain.KanjiCard:
		resp.Onyomi = c.Onyomi()
		resp.Kunyomi = c.Kunyomi()
		resp.StrokeCount = c.StrokeCount()
		resp.Level = string(c.Level())
		resp.ExampleWords = c.ExampleWords()
	case *domain.GrammarRuleCard:
		resp.RuleID = c.RuleID()
		resp.Examples = c.Examples()
	}

	memory := sc.Memory()
	if state, ok := memory.Current(); ok {
		current := memoryStateToResponse(state)
		resp.Current = &current
	}
	for _, log := range memory.All() {
		resp.Reviews = append(resp.Reviews, ReviewResponse{
			Timestamp:       log.Timestamp(),
			Rating:          log.Rating(),
			IntervalSeconds: int64(log.Interval() / time.Second),
			State:           memoryStateToResponse(log.State()),
		})
	}
	return resp
}

func cardsToResponse(cards []*domain.StudyCard) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, sc := range cards {
		out = append(out, cardToResponse(sc))
	}
	return out
}

// RatedCardResponse is a card after a review.
type RatedCardResponse struct {
	Card           CardResponse `json:"card"`
	Retrievability *float64     `json:"retrievability,omitempty"`
}

// DayStatsResponse holds the statistics of one day or of the current set.
type DayStatsResponse struct {
	Timestamp            *time.Time `json:"timestamp,omitempty"`
	TotalWords           int        `json:"total_words"`
	NewWords             int        `json:"new_words"`
	KnownWords           int        `json:"known_words"`
	InProgressWords      int        `json:"in_progress_words"`
	HighDifficultyWords  int        `json:"high_difficulty_words"`
	AvgStability         *float64   `json:"avg_stability,omitempty"`
	AvgDifficulty        *float64   `json:"avg_difficulty,omitempty"`
	LessonsCompleted     int        `json:"lessons_completed,omitempty"`
	TotalDurationSeconds int64      `json:"total_duration_seconds,omitempty"`
}

func rollupToResponse(r domain.Rollup) DayStatsResponse {
	return DayStatsResponse{
		TotalWords:          r.TotalWords,
		NewWords:            r.NewWords,
		KnownWords:          r.KnownWords,
		InProgressWords:     r.InProgressWords,
		HighDifficultyWords: r.HighDifficultyWords,
		AvgStability:        r.AvgStability,
		AvgDifficulty:       r.AvgDifficulty,
	}
}

func dayToResponse(d domain.DailyHistoryItem) DayStatsResponse {
	ts := d.Timestamp()
	resp := DayStatsResponse{
		Timestamp:            &ts,
		TotalWords:           d.TotalWords(),
		NewWords:             d.NewWords(),
		KnownWords:           d.KnownWords(),
		InProgressWords:      d.InProgressWords(),
		HighDifficultyWords:  d.HighDifficultyWords(),
		LessonsCompleted:     d.LessonsCompleted(),
		TotalDurationSeconds: int64(d.TotalDuration() / time.Second),
	}
	if v, ok := d.AvgStability(); ok {
		resp.AvgStability = &v
	}
	if v, ok := d.AvgDifficulty(); ok {
		resp.AvgDifficulty = &v
	}
	return resp
}

// StatisticsResponse represents a user's current and archived statistics.
type StatisticsResponse struct {
	Current              DayStatsResponse   `json:"current"`
	Today                DayStatsResponse   `json:"today"`
	History              []DayStatsResponse `json:"history"`
	TotalDurationSeconds int64              `json:"total_duration_seconds"`
	DueNow               int                `json:"due_now"`
}

func statisticsToResponse(s *card_review.Statistics) StatisticsResponse {
	history := make([]DayStatsResponse, 0, len(s.History))
	for _, d := range s.History {
		history = append(history, dayToResponse(d))
	}
	return StatisticsResponse{
		Current:              rollupToResponse(s.Current),
		Today:                dayToResponse(s.Today),
		History:              history,
		TotalDurationSeconds: int64(s.TotalDuration / time.Second),
		DueNow:               s.DueNow,
	}
}

// StartImportRequest queues a well-known set import. An empty SetID selects
// the set for the user's current level.
type StartImportRequest struct {
	SetID string `json:"set_id,omitempty" validate:"max=32"`
}

// ImportResponse represents a queued or finished import.
type ImportResponse struct {
	ID         uuid.UUID             `json:"id"`
	UserID     uuid.UUID             `json:"user_id"`
	SetID      string                `json:"set_id"`
	Kind       task.Kind             `json:"kind"`
	Status     task.Status           `json:"status"`
	Result     *service.ImportResult `json:"result,omitempty"`
	Error      string                `json:"error,omitempty"`
	StartedAt  *time.Time            `json:"started_at,omitempty"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
}

func importToResponse(t *task.ImportTask) ImportResponse {
	resp := ImportResponse{
		ID:     t.ID(),
		UserID: t.UserID(),
		SetID:  string(t.SetID()),
		Kind:   t.Kind(),
		Status: t.Status(),
	}
	if timing := t.Timing(); !timing.StartedAt.IsZero() {
		resp.StartedAt = &timing.StartedAt
		if !timing.FinishedAt.IsZero() {
			resp.FinishedAt = &timing.FinishedAt
		}
	}
	result, err := t.Result()
	resp.Result = result
	if err != nil {
		resp.Error = GetSafeErrorMessage(err)
	}
	return resp
}

// WellKnownSetResponse is one entry of the well-known set listing.
type WellKnownSetResponse struct {
	ID          string `json:"id"`
	Level       string `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
	WordCount   int    `json:"word_count"`
}

func wellKnownSetToResponse(info wellknown.Info) WellKnownSetResponse {
	return WellKnownSetResponse{
		ID:          string(info.ID),
		Level:       string(info.Level),
		Title:       info.Title,
		Description: info.Description,
		WordCount:   info.WordCount,
	}
}

// KanjiResponse is a kanji reference entry in one language.
type KanjiResponse struct {
	Kanji       string               `json:"kanji"`
	StrokeCount int                  `json:"stroke_count"`
	Level       string               `json:"level"`
	Meaning     string               `json:"meaning"`
	Onyomi      []string             `json:"onyomi"`
	Kunyomi     []string             `json:"kunyomi"`
	Examples    []domain.ExampleWord `json:"examples"`
}

func kanjiToResponse(k *dictionary.KanjiInfo, lang domain.NativeLanguage) KanjiResponse {
	examples := make([]domain.ExampleWord, 0, len(k.Examples))
	for _, ex := range k.Examples {
		examples = append(examples, domain.ExampleWord{
			Word:    ex.Word,
			Reading: ex.Reading,
			Meaning: ex.Meanings.In(lang),
		})
	}
	return KanjiResponse{
		Kanji:       k.Kanji,
		StrokeCount: k.StrokeCount,
		Level:       string(k.Level),
		Meaning:     k.Meanings.In(lang),
		Onyomi:      k.Onyomi,
		Kunyomi:     k.Kunyomi,
		Examples:    examples,
	}
}

// GrammarResponse is a grammar reference entry in one language.
type GrammarResponse struct {
	ID          string                 `json:"id"`
	Level       string                 `json:"level"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Examples    []domain.ExamplePhrase `json:"examples"`
}

func grammarToResponse(g *dictionary.GrammarRule, lang domain.NativeLanguage) GrammarResponse {
	examples := make([]domain.ExamplePhrase, 0, len(g.Examples))
	for _, ex := range g.Examples {
		examples = append(examples, domain.ExamplePhrase{Text: ex.Text, Translation: ex.Translations.In(lang)})
	}
	return GrammarResponse{
		ID:          g.ID,
		Level:       string(g.Level),
		Title:       g.Title,
		Description: g.Descriptions.In(lang),
		Examples:    examples,
	}
}
