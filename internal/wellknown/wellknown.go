// Package wellknown ships the curated JLPT word lists that users can import
// into their knowledge set in one step.
package wellknown

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/phrazzld/keikaku/internal/domain"
)

//go:embed data/*.json
var files embed.FS

// SetID identifies a well-known set.
type SetID string

const (
	JlptN5 SetID = "jlpt_n5"
	JlptN4 SetID = "jlpt_n4"
	JlptN3 SetID = "jlpt_n3"
	JlptN2 SetID = "jlpt_n2"
	JlptN1 SetID = "jlpt_n1"
)

// All lists the sets from easiest to hardest.
var All = []SetID{JlptN5, JlptN4, JlptN3, JlptN2, JlptN1}

// ForLevel returns the JLPT set of level.
func ForLevel(level domain.JapaneseLevel) (SetID, error) {
	if !level.IsValid() {
		return "", fmt.Errorf("%w: unknown japanese level %q", domain.ErrWellKnownSet, level)
	}
	return SetID("jlpt_" + strings.ToLower(string(level))), nil
}

// Content is the localized title and description of a set.
type Content struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Set is a named word list for one JLPT level.
type Set struct {
	ID      SetID                             `json:"-"`
	Level   domain.JapaneseLevel              `json:"level"`
	Words   []string                          `json:"words"`
	Content map[domain.NativeLanguage]Content `json:"content"`
}

// ContentFor returns the set's text in lang, falling back to English.
func (s *Set) ContentFor(lang domain.NativeLanguage) Content {
	if c, ok := s.Content[lang]; ok {
		return c
	}
	return s.Content[domain.LanguageEnglish]
}

// Info is a set's listing entry in one language.
type Info struct {
	ID          SetID
	Level       domain.JapaneseLevel
	Title       string
	Description string
	WordCount   int
}

var loadAll = sync.OnceValues(func() (map[SetID]*Set, error) {
	sets := make(map[SetID]*Set, len(All))
	for _, id := range All {
		set, err := parse(id)
		if err != nil {
			return nil, err
		}
		sets[id] = set
	}
	return sets, nil
})

func parse(id SetID) (*Set, error) {
	raw, err := files.ReadFile("data/" + string(id) + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrWellKnownSet, id, err)
	}
	var set Set
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("%w: Error parse stored value: %w", domain.ErrWellKnownSet, err)
	}
	if !set.Level.IsValid() {
		return nil, fmt.Errorf("%w: %s has unknown level %q", domain.ErrWellKnownSet, id, set.Level)
	}
	if _, ok := set.Content[domain.LanguageEnglish]; !ok {
		return nil, fmt.Errorf("%w: %s has no english content", domain.ErrWellKnownSet, id)
	}
	set.ID = id
	return &set, nil
}

// Load returns the set with id. The returned set is shared; callers must
// not modify it.
func Load(id SetID) (*Set, error) {
	sets, err := loadAll()
	if err != nil {
		return nil, err
	}
	set, ok := sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown set %q", domain.ErrWellKnownSet, id)
	}
	return set, nil
}

// List returns every set's listing in lang.
func List(lang domain.NativeLanguage) ([]Info, error) {
	infos := make([]Info, 0, len(All))
	for _, id := range All {
		set, err := Load(id)
		if err != nil {
			return nil, err
		}
		c := set.ContentFor(lang)
		infos = append(infos, Info{
			ID:          id,
			Level:       set.Level,
			Title:       c.Title,
			Description: c.Description,
			WordCount:   len(set.Words),
		})
	}
	return infos, nil
}
