package domain

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// CardKind names a card variant in persisted and transported form.
type CardKind string

const (
	CardKindVocabulary CardKind = "vocabulary"
	CardKindKanji      CardKind = "kanji"
	CardKindGrammar    CardKind = "grammar"
)

// Card is study content of one of three kinds. The set of implementations is
// closed: only VocabularyCard, KanjiCard and GrammarRuleCard satisfy it.
type Card interface {
	Kind() CardKind
	Question() Question
	Answer() Answer
	sealed()
}

// ExamplePhrase is a sentence illustrating a word or rule, with its translation.
type ExamplePhrase struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// ExampleWord is a vocabulary item that uses a kanji.
type ExampleWord struct {
	Word    string `json:"word"`
	Reading string `json:"reading,omitempty"`
	Meaning string `json:"meaning"`
}

// VocabularyCard asks for the meaning of a word.
type VocabularyCard struct {
	word     Question
	meaning  Answer
	examples []ExamplePhrase
}

// NewVocabularyCard validates word and meaning.
func NewVocabularyCard(word, meaning string, examples []ExamplePhrase) (*VocabularyCard, error) {
	q, err := NewQuestion(word)
	if err != nil {
		return nil, err
	}
	a, err := NewAnswer(meaning)
	if err != nil {
		return nil, err
	}
	return &VocabularyCard{word: q, meaning: a, examples: slices.Clone(examples)}, nil
}

func (c *VocabularyCard) Kind() CardKind     { return CardKindVocabulary }
func (c *VocabularyCard) Question() Question { return c.word }
func (c *VocabularyCard) Answer() Answer     { return c.meaning }
func (c *VocabularyCard) sealed()            {}

// Examples returns a copy of the example phrases.
func (c *VocabularyCard) Examples() []ExamplePhrase { return slices.Clone(c.examples) }

// KanjiCard asks for the meaning and readings of a single kanji.
type KanjiCard struct {
	kanji        Question
	description  Answer
	onyomi       []string
	kunyomi      []string
	strokeCount  int
	level        JapaneseLevel
	exampleWords []ExampleWord
}

// KanjiCardParams collects the optional reference data of a kanji card.
type KanjiCardParams struct {
	Onyomi       []string
	Kunyomi      []string
	StrokeCount  int
	Level        JapaneseLevel
	ExampleWords []ExampleWord
}

// NewKanjiCard validates that kanji is exactly one kanji character.
func NewKanjiCard(kanji, description string, params KanjiCardParams) (*KanjiCard, error) {
	q, err := NewQuestion(kanji)
	if err != nil {
		return nil, err
	}
	r, size := utf8.DecodeRuneInString(q.Text())
	if size != len(q.Text()) || !IsKanji(r) {
		return nil, fmt.Errorf("%w: %q is not a single kanji", ErrInvalidQuestion, kanji)
	}
	a, err := NewAnswer(description)
	if err != nil {
		return nil, err
	}
	if params.StrokeCount < 0 {
		return nil, fmt.Errorf("%w: negative stroke count", ErrInvalidValues)
	}
	if params.Level != "" && !params.Level.IsValid() {
		return nil, fmt.Errorf("%w: unknown japanese level %q", ErrInvalidValues, params.Level)
	}
	return &KanjiCard{
		kanji:        q,
		description:  a,
		onyomi:       slices.Clone(params.Onyomi),
		kunyomi:      slices.Clone(params.Kunyomi),
		strokeCount:  params.StrokeCount,
		level:        params.Level,
		exampleWords: slices.Clone(params.ExampleWords),
	}, nil
}

func (c *KanjiCard) Kind() CardKind     { return CardKindKanji }
func (c *KanjiCard) Question() Question { return c.kanji }
func (c *KanjiCard) Answer() Answer     { return c.description }
func (c *KanjiCard) sealed()            {}

func (c *KanjiCard) Onyomi() []string            { return slices.Clone(c.onyomi) }
func (c *KanjiCard) Kunyomi() []string           { return slices.Clone(c.kunyomi) }
func (c *KanjiCard) StrokeCount() int            { return c.strokeCount }
func (c *KanjiCard) Level() JapaneseLevel        { return c.level }
func (c *KanjiCard) ExampleWords() []ExampleWord { return slices.Clone(c.exampleWords) }

// GrammarRuleCard asks for the meaning and use of a grammar rule.
type GrammarRuleCard struct {
	ruleID      string
	title       Question
	description Answer
	examples    []ExamplePhrase
}

// NewGrammarRuleCard validates title and description. ruleID may be empty
// for rules not taken from the grammar reference.
func NewGrammarRuleCard(ruleID, title, description string, examples []ExamplePhrase) (*GrammarRuleCard, error) {
	q, err := NewQuestion(title)
	if err != nil {
		return nil, err
	}
	a, err := NewAnswer(description)
	if err != nil {
		return nil, err
	}
	return &GrammarRuleCard{ruleID: ruleID, title: q, description: a, examples: slices.Clone(examples)}, nil
}

func (c *GrammarRuleCard) Kind() CardKind     { return CardKindGrammar }
func (c *GrammarRuleCard) Question() Question { return c.title }
func (c *GrammarRuleCard) Answer() Answer     { return c.description }
func (c *GrammarRuleCard) sealed()            {}

// RuleID returns the grammar reference id, empty for custom rules.
func (c *GrammarRuleCard) RuleID() string { return c.ruleID }

// Examples returns a copy of the example phrases.
func (c *GrammarRuleCard) Examples() []ExamplePhrase { return slices.Clone(c.examples) }
