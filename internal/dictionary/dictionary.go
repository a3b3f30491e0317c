// Package dictionary is the embedded kanji and grammar reference used to
// author kanji and grammar rule cards.
package dictionary

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/phrazzld/keikaku/internal/domain"
)

//go:embed data/*.json
var files embed.FS

// ErrNotFound is returned for kanji or rules missing from the reference.
var ErrNotFound = errors.New("dictionary entry not found")

// Localized holds one text per native language.
type Localized map[domain.NativeLanguage]string

// In returns the text for lang, falling back to English.
func (l Localized) In(lang domain.NativeLanguage) string {
	if s, ok := l[lang]; ok && s != "" {
		return s
	}
	return l[domain.LanguageEnglish]
}

// KanjiExample is a word written with the kanji.
type KanjiExample struct {
	Word     string    `json:"word"`
	Reading  string    `json:"reading"`
	Meanings Localized `json:"meanings"`
}

// KanjiInfo is the reference entry for one kanji.
type KanjiInfo struct {
	Kanji       string               `json:"kanji"`
	StrokeCount int                  `json:"stroke_count"`
	Level       domain.JapaneseLevel `json:"level"`
	Meanings    Localized            `json:"meanings"`
	Onyomi      []string             `json:"onyomi"`
	Kunyomi     []string             `json:"kunyomi"`
	Examples    []KanjiExample       `json:"examples"`
}

// Card builds a kanji card with text in lang.
func (k *KanjiInfo) Card(lang domain.NativeLanguage) (*domain.KanjiCard, error) {
	words := make([]domain.ExampleWord, 0, len(k.Examples))
	for _, ex := range k.Examples {
		words = append(words, domain.ExampleWord{
			Word:    ex.Word,
			Reading: ex.Reading,
			Meaning: ex.Meanings.In(lang),
		})
	}
	return domain.NewKanjiCard(k.Kanji, k.Meanings.In(lang), domain.KanjiCardParams{
		Onyomi:       k.Onyomi,
		Kunyomi:      k.Kunyomi,
		StrokeCount:  k.StrokeCount,
		Level:        k.Level,
		ExampleWords: words,
	})
}

// GrammarExample is an example sentence for a rule.
type GrammarExample struct {
	Text         string    `json:"text"`
	Translations Localized `json:"translations"`
}

// GrammarRule is the reference entry for one grammar point.
type GrammarRule struct {
	ID           string               `json:"id"`
	Level        domain.JapaneseLevel `json:"level"`
	Title        string               `json:"title"`
	Descriptions Localized            `json:"descriptions"`
	Examples     []GrammarExample     `json:"examples"`
}

// Card builds a grammar rule card with text in lang.
func (g *GrammarRule) Card(lang domain.NativeLanguage) (*domain.GrammarRuleCard, error) {
	examples := make([]domain.ExamplePhrase, 0, len(g.Examples))
	for _, ex := range g.Examples {
		examples = append(examples, domain.ExamplePhrase{Text: ex.Text, Translation: ex.Translations.In(lang)})
	}
	return domain.NewGrammarRuleCard(g.ID, g.Title, g.Descriptions.In(lang), examples)
}

type reference struct {
	kanji        []*KanjiInfo
	kanjiIndex   map[string]*KanjiInfo
	grammar      []*GrammarRule
	grammarIndex map[string]*GrammarRule
}

var load = sync.OnceValues(func() (*reference, error) {
	ref := &reference{
		kanjiIndex:   make(map[string]*KanjiInfo),
		grammarIndex: make(map[string]*GrammarRule),
	}
	if err := decode("data/kanji.json", &ref.kanji); err != nil {
		return nil, err
	}
	for _, k := range ref.kanji {
		if !k.Level.IsValid() {
			return nil, fmt.Errorf("%w: kanji %s has unknown level %q", domain.ErrInvalidValues, k.Kanji, k.Level)
		}
		ref.kanjiIndex[k.Kanji] = k
	}
	if err := decode("data/grammar.json", &ref.grammar); err != nil {
		return nil, err
	}
	for _, g := range ref.grammar {
		if !g.Level.IsValid() {
			return nil, fmt.Errorf("%w: rule %s has unknown level %q", domain.ErrInvalidValues, g.ID, g.Level)
		}
		ref.grammarIndex[g.ID] = g
	}
	return ref, nil
})

func decode(name string, v any) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidValues, name, err)
	}
	return nil
}

// Kanji returns the entry for kanji.
func Kanji(kanji string) (*KanjiInfo, error) {
	ref, err := load()
	if err != nil {
		return nil, err
	}
	k, ok := ref.kanjiIndex[kanji]
	if !ok {
		return nil, fmt.Errorf("%w: kanji %q", ErrNotFound, kanji)
	}
	return k, nil
}

// KanjiByLevel returns the level's kanji in reference order.
func KanjiByLevel(level domain.JapaneseLevel) ([]*KanjiInfo, error) {
	ref, err := load()
	if err != nil {
		return nil, err
	}
	var out []*KanjiInfo
	for _, k := range ref.kanji {
		if k.Level == level {
			out = append(out, k)
		}
	}
	return out, nil
}

// Grammar returns the rule with id.
func Grammar(id string) (*GrammarRule, error) {
	ref, err := load()
	if err != nil {
		return nil, err
	}
	g, ok := ref.grammarIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: grammar rule %q", ErrNotFound, id)
	}
	return g, nil
}

// GrammarByLevel returns the level's rules in reference order.
func GrammarByLevel(level domain.JapaneseLevel) ([]*GrammarRule, error) {
	ref, err := load()
	if err != nil {
		return nil, err
	}
	var out []*GrammarRule
	for _, g := range ref.grammar {
		if g.Level == level {
			out = append(out, g)
		}
	}
	return out, nil
}
