package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LlmProvider selects the language model used to author a user's cards.
type LlmProvider string

const (
	LlmProviderNone   LlmProvider = "none"
	LlmProviderGemini LlmProvider = "gemini"
)

// LlmSettings holds a user's content-generation preferences.
type LlmSettings struct {
	Provider    LlmProvider `json:"provider"`
	Model       string      `json:"model,omitempty"`
	Temperature float32     `json:"temperature,omitempty"`
}

// UserSettings holds per-user study preferences.
type UserSettings struct {
	LLM               LlmSettings `json:"llm"`
	NewCardsPerLesson int         `json:"new_cards_per_lesson"`
}

// DefaultUserSettings returns settings for a freshly registered user.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		LLM:               LlmSettings{Provider: LlmProviderNone},
		NewCardsPerLesson: 10,
	}
}

// Validate checks provider, temperature and lesson size.
func (s UserSettings) Validate() error {
	switch s.LLM.Provider {
	case LlmProviderNone, LlmProviderGemini:
	default:
		return fmt.Errorf("%w: unknown llm provider %q", ErrSettings, s.LLM.Provider)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2]", ErrSettings)
	}
	if s.NewCardsPerLesson < 1 || s.NewCardsPerLesson > 100 {
		return fmt.Errorf("%w: new cards per lesson must be within [1, 100]", ErrSettings)
	}
	return nil
}

// User is the aggregate root. Every change to the knowledge set goes through
// User methods so the repository can persist the user as one unit.
type User struct {
	id             uuid.UUID
	username       string
	nativeLanguage NativeLanguage
	currentLevel   JapaneseLevel
	settings       UserSettings
	knowledgeSet   *KnowledgeSet
	createdAt      time.Time
	updatedAt      time.Time
}

// NewUser creates a user with default settings and an empty knowledge set.
func NewUser(username string, lang NativeLanguage, level JapaneseLevel, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", ErrInvalidValues)
	}
	if !lang.IsValid() {
		return nil, fmt.Errorf("%w: unsupported native language %q", ErrInvalidValues, lang)
	}
	if !level.IsValid() {
		return nil, fmt.Errorf("%w: unknown japanese level %q", ErrInvalidValues, level)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}
	now = now.UTC()
	return &User{
		id:             id,
		username:       username,
		nativeLanguage: lang,
		currentLevel:   level,
		settings:       DefaultUserSettings(),
		knowledgeSet:   NewKnowledgeSet(now),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func (u *User) ID() uuid.UUID                  { return u.id }
func (u *User) Username() string               { return u.username }
func (u *User) NativeLanguage() NativeLanguage { return u.nativeLanguage }
func (u *User) CurrentLevel() JapaneseLevel    { return u.currentLevel }
func (u *User) Settings() UserSettings         { return u.settings }
func (u *User) CreatedAt() time.Time           { return u.createdAt }
func (u *User) UpdatedAt() time.Time           { return u.updatedAt }

// KnowledgeSet exposes the set for read queries. Mutate through User methods.
func (u *User) KnowledgeSet() *KnowledgeSet { return u.knowledgeSet }

// UpdateSettings replaces the user's settings after validation.
func (u *User) UpdateSettings(settings UserSettings, now time.Time) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	u.settings = settings
	u.touch(now)
	return nil
}

// SetCurrentLevel changes the learner's target JLPT level.
func (u *User) SetCurrentLevel(level JapaneseLevel, now time.Time) error {
	if !level.IsValid() {
		return fmt.Errorf("%w: unknown japanese level %q", ErrInvalidValues, level)
	}
	u.currentLevel = level
	u.touch(now)
	return nil
}

// CreateCard adds a card to the user's knowledge set.
func (u *User) CreateCard(card Card, now time.Time) (*StudyCard, error) {
	sc, err := u.knowledgeSet.CreateCard(card)
	if err != nil {
		return nil, err
	}
	u.touch(now)
	return sc, nil
}

// DeleteCard removes a card from the user's knowledge set.
func (u *User) DeleteCard(id uuid.UUID, now time.Time) error {
	if err := u.knowledgeSet.DeleteCard(id); err != nil {
		return err
	}
	u.touch(now)
	return nil
}

// RateCard records an already computed review result.
func (u *User) RateCard(id uuid.UUID, rating Rating, interval time.Duration, state MemoryState, now time.Time) error {
	if err := u.knowledgeSet.RateCard(id, rating, interval, state, now); err != nil {
		return err
	}
	u.touch(now)
	return nil
}

// CompleteLesson adds the lesson's study time and records the day's rollup.
func (u *User) CompleteLesson(duration time.Duration, now time.Time) error {
	if duration < 0 {
		return fmt.Errorf("%w: negative lesson duration %s", ErrInvalidValues, duration)
	}
	u.knowledgeSet.RollOver(now)
	if err := u.knowledgeSet.AddLessonDuration(duration); err != nil {
		return err
	}
	u.knowledgeSet.CompleteLesson(now)
	u.touch(now)
	return nil
}

// RollOver archives the current day's statistics once now is on a later day.
func (u *User) RollOver(now time.Time) bool {
	if !u.knowledgeSet.RollOver(now) {
		return false
	}
	u.touch(now)
	return true
}

func (u *User) touch(now time.Time) {
	if now = now.UTC(); now.After(u.updatedAt) {
		u.updatedAt = now
	}
}
