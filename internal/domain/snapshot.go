package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// The snapshot types below are the persisted JSON form of a User. Restoring
// goes through the same constructors as live code, so a stored aggregate that
// violates an invariant is rejected rather than loaded.

type userSnapshot struct {
	ID             uuid.UUID            `json:"id"`
	Username       string               `json:"username"`
	NativeLanguage NativeLanguage       `json:"native_language"`
	CurrentLevel   JapaneseLevel        `json:"current_level"`
	Settings       UserSettings         `json:"settings"`
	KnowledgeSet   knowledgeSetSnapshot `json:"knowledge_set"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type knowledgeSetSnapshot struct {
	Cards         []studyCardSnapshot    `json:"cards"`
	Today         dailyHistorySnapshot   `json:"today"`
	History       []dailyHistorySnapshot `json:"history,omitempty"`
	TotalDuration time.Duration          `json:"total_duration_ns"`
}

type studyCardSnapshot struct {
	ID      uuid.UUID           `json:"id"`
	Card    cardEnvelope        `json:"card"`
	Reviews []reviewLogSnapshot `json:"reviews,omitempty"`
}

type cardEnvelope struct {
	Kind CardKind        `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type vocabularySnapshot struct {
	Word     string          `json:"word"`
	Meaning  string          `json:"meaning"`
	Examples []ExamplePhrase `json:"examples,omitempty"`
}

type kanjiSnapshot struct {
	Kanji        string        `json:"kanji"`
	Description  string        `json:"description"`
	Onyomi       []string      `json:"onyomi,omitempty"`
	Kunyomi      []string      `json:"kunyomi,omitempty"`
	StrokeCount  int           `json:"stroke_count,omitempty"`
	Level        JapaneseLevel `json:"level,omitempty"`
	ExampleWords []ExampleWord `json:"example_words,omitempty"`
}

type grammarSnapshot struct {
	RuleID      string          `json:"rule_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Examples    []ExamplePhrase `json:"examples,omitempty"`
}

type reviewLogSnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Rating    Rating              `json:"rating"`
	Interval  time.Duration       `json:"interval_ns"`
	State     memoryStateSnapshot `json:"state"`
}

type memoryStateSnapshot struct {
	Stability  float64   `json:"stability"`
	Difficulty float64   `json:"difficulty"`
	DueAt      time.Time `json:"due_at"`
}

type dailyHistorySnapshot struct {
	Timestamp           time.Time     `json:"timestamp"`
	AvgStability        *float64      `json:"avg_stability,omitempty"`
	AvgDifficulty       *float64      `json:"avg_difficulty,omitempty"`
	TotalWords          int           `json:"total_words"`
	NewWords            int           `json:"new_words"`
	KnownWords          int           `json:"known_words"`
	InProgressWords     int           `json:"in_progress_words"`
	HighDifficultyWords int           `json:"high_difficulty_words"`
	LessonsCompleted    int           `json:"lessons_completed"`
	TotalDuration       time.Duration `json:"total_duration_ns"`
}

// MarshalJSON encodes the whole aggregate, cards in creation order.
func (u *User) MarshalJSON() ([]byte, error) {
	ks := u.knowledgeSet
	snap := userSnapshot{
		ID:             u.id,
		Username:       u.username,
		NativeLanguage: u.nativeLanguage,
		CurrentLevel:   u.currentLevel,
		Settings:       u.settings,
		CreatedAt:      u.createdAt,
		UpdatedAt:      u.updatedAt,
		KnowledgeSet: knowledgeSetSnapshot{
			Cards:         make([]studyCardSnapshot, 0, ks.Len()),
			Today:         snapshotDay(ks.today),
			TotalDuration: ks.totalDuration,
		},
	}
	for _, d := range ks.history {
		snap.KnowledgeSet.History = append(snap.KnowledgeSet.History, snapshotDay(d))
	}
	for _, sc := range ks.Cards() {
		env, err := encodeCard(sc.card)
		if err != nil {
			return nil, err
		}
		cs := studyCardSnapshot{ID: sc.id, Card: env}
		for _, l := range sc.memory.All() {
			cs.Reviews = append(cs.Reviews, reviewLogSnapshot{
				Timestamp: l.timestamp,
				Rating:    l.rating,
				Interval:  l.interval,
				State: memoryStateSnapshot{
					Stability:  l.state.stability.value,
					Difficulty: l.state.difficulty.value,
					DueAt:      l.state.dueAt,
				},
			})
		}
		snap.KnowledgeSet.Cards = append(snap.KnowledgeSet.Cards, cs)
	}
	return json.Marshal(snap)
}

// UnmarshalJSON decodes and revalidates an aggregate written by MarshalJSON.
// On error u is left unchanged.
func (u *User) UnmarshalJSON(data []byte) error {
	var snap userSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: decode user: %w", ErrInvalidValues, err)
	}
	if snap.ID == uuid.Nil {
		return fmt.Errorf("%w: user id is empty", ErrInvalidValues)
	}
	if strings.TrimSpace(snap.Username) == "" {
		return fmt.Errorf("%w: user %s has an empty username", ErrInvalidValues, snap.ID)
	}
	if snap.KnowledgeSet.TotalDuration < 0 {
		return fmt.Errorf("%w: user %s has a negative study time", ErrInvalidValues, snap.ID)
	}
	if !snap.NativeLanguage.IsValid() || !snap.CurrentLevel.IsValid() {
		return fmt.Errorf("%w: user %s has invalid language or level", ErrInvalidValues, snap.ID)
	}
	if err := snap.Settings.Validate(); err != nil {
		return err
	}

	today, err := restoreDay(snap.KnowledgeSet.Today)
	if err != nil {
		return fmt.Errorf("today: %w", err)
	}
	ks := &KnowledgeSet{
		cards:         make(map[uuid.UUID]*StudyCard, len(snap.KnowledgeSet.Cards)),
		questions:     make(map[string]uuid.UUID, len(snap.KnowledgeSet.Cards)),
		today:         today,
		totalDuration: snap.KnowledgeSet.TotalDuration,
	}
	for i, d := range snap.KnowledgeSet.History {
		day, err := restoreDay(d)
		if err != nil {
			return fmt.Errorf("history %d: %w", i, err)
		}
		ks.history = append(ks.history, day)
	}
	for _, cs := range snap.KnowledgeSet.Cards {
		sc, err := restoreCard(cs)
		if err != nil {
			return fmt.Errorf("card %s: %w", cs.ID, err)
		}
		key := sc.card.Question().Normalized()
		if _, dup := ks.questions[key]; dup {
			return &DuplicateCardError{Question: sc.card.Question().Text()}
		}
		if _, dup := ks.cards[sc.id]; dup {
			return fmt.Errorf("%w: card id %s appears twice", ErrInvalidValues, sc.id)
		}
		ks.cards[sc.id] = sc
		ks.questions[key] = sc.id
	}

	*u = User{
		id:             snap.ID,
		username:       snap.Username,
		nativeLanguage: snap.NativeLanguage,
		currentLevel:   snap.CurrentLevel,
		settings:       snap.Settings,
		knowledgeSet:   ks,
		createdAt:      snap.CreatedAt,
		updatedAt:      snap.UpdatedAt,
	}
	return nil
}

func encodeCard(card Card) (cardEnvelope, error) {
	var payload any
	switch c := card.(type) {
	case *VocabularyCard:
		payload = vocabularySnapshot{Word: c.word.text, Meaning: c.meaning.text, Examples: c.examples}
	case *KanjiCard:
		payload = kanjiSnapshot{
			Kanji:        c.kanji.text,
			Description:  c.description.text,
			Onyomi:       c.onyomi,
			Kunyomi:      c.kunyomi,
			StrokeCount:  c.strokeCount,
			Level:        c.level,
			ExampleWords: c.exampleWords,
		}
	case *GrammarRuleCard:
		payload = grammarSnapshot{RuleID: c.ruleID, Title: c.title.text, Description: c.description.text, Examples: c.examples}
	default:
		return cardEnvelope{}, fmt.Errorf("%w: unknown card type %T", ErrInvalidValues, card)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return cardEnvelope{}, err
	}
	return cardEnvelope{Kind: card.Kind(), Data: data}, nil
}

func decodeCard(env cardEnvelope) (Card, error) {
	switch env.Kind {
	case CardKindVocabulary:
		var v vocabularySnapshot
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("%w: decode vocabulary card: %v", ErrInvalidValues, err)
		}
		return NewVocabularyCard(v.Word, v.Meaning, v.Examples)
	case CardKindKanji:
		var k kanjiSnapshot
		if err := json.Unmarshal(env.Data, &k); err != nil {
			return nil, fmt.Errorf("%w: decode kanji card: %v", ErrInvalidValues, err)
		}
		return NewKanjiCard(k.Kanji, k.Description, KanjiCardParams{
			Onyomi:       k.Onyomi,
			Kunyomi:      k.Kunyomi,
			StrokeCount:  k.StrokeCount,
			Level:        k.Level,
			ExampleWords: k.ExampleWords,
		})
	case CardKindGrammar:
		var g grammarSnapshot
		if err := json.Unmarshal(env.Data, &g); err != nil {
			return nil, fmt.Errorf("%w: decode grammar card: %v", ErrInvalidValues, err)
		}
		return NewGrammarRuleCard(g.RuleID, g.Title, g.Description, g.Examples)
	default:
		return nil, fmt.Errorf("%w: unknown card kind %q", ErrInvalidValues, env.Kind)
	}
}

func restoreCard(cs studyCardSnapshot) (*StudyCard, error) {
	card, err := decodeCard(cs.Card)
	if err != nil {
		return nil, err
	}
	logs := make([]ReviewLog, 0, len(cs.Reviews))
	for _, r := range cs.Reviews {
		s, err := NewStability(r.State.Stability)
		if err != nil {
			return nil, err
		}
		d, err := NewDifficulty(r.State.Difficulty)
		if err != nil {
			return nil, err
		}
		state, err := NewMemoryState(s, d, r.State.DueAt)
		if err != nil {
			return nil, err
		}
		l, err := NewReviewLog(r.Timestamp, r.Rating, r.Interval, state)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	memory, err := restoreMemoryHistory(logs)
	if err != nil {
		return nil, err
	}
	return restoreStudyCard(cs.ID, card, memory)
}

func snapshotDay(d DailyHistoryItem) dailyHistorySnapshot {
	return dailyHistorySnapshot{
		Timestamp:           d.timestamp,
		AvgStability:        cloneFloat(d.avgStability),
		AvgDifficulty:       cloneFloat(d.avgDifficulty),
		TotalWords:          d.totalWords,
		NewWords:            d.newWords,
		KnownWords:          d.knownWords,
		InProgressWords:     d.inProgressWords,
		HighDifficultyWords: d.highDifficultyWords,
		LessonsCompleted:    d.lessonsCompleted,
		TotalDuration:       d.totalDuration,
	}
}

func restoreDay(s dailyHistorySnapshot) (DailyHistoryItem, error) {
	if s.Timestamp.IsZero() {
		return DailyHistoryItem{}, fmt.Errorf("%w: day has no timestamp", ErrInvalidValues)
	}
	if s.TotalDuration < 0 || s.LessonsCompleted < 0 {
		return DailyHistoryItem{}, fmt.Errorf("%w: day %s has negative totals", ErrInvalidValues, s.Timestamp.Format(time.DateOnly))
	}
	return DailyHistoryItem{
		timestamp:           s.Timestamp.UTC(),
		avgStability:        cloneFloat(s.AvgStability),
		avgDifficulty:       cloneFloat(s.AvgDifficulty),
		totalWords:          s.TotalWords,
		newWords:            s.NewWords,
		knownWords:          s.KnownWords,
		inProgressWords:     s.InProgressWords,
		highDifficultyWords: s.HighDifficultyWords,
		lessonsCompleted:    s.LessonsCompleted,
		totalDuration:       s.TotalDuration,
	}, nil
}
