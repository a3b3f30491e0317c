package domain

import (
	"fmt"
	"strings"
)

// Question is the prompt side of a card. It is never blank.
type Question struct {
	text string
}

// NewQuestion trims text and rejects blank input.
func NewQuestion(text string) (Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Question{}, fmt.Errorf("%w: question text is empty", ErrInvalidQuestion)
	}
	return Question{text: text}, nil
}

// Text returns the question as entered.
func (q Question) Text() string { return q.text }

// Normalized returns the comparison key used for duplicate detection.
func (q Question) Normalized() string { return NormalizeQuestion(q.text) }

func (q Question) String() string { return q.text }

// Answer is the revealed side of a card. It is never blank.
type Answer struct {
	text string
}

// NewAnswer trims text and rejects blank input.
func NewAnswer(text string) (Answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Answer{}, fmt.Errorf("%w: answer text is empty", ErrInvalidAnswer)
	}
	return Answer{text: text}, nil
}

// Text returns the answer text.
func (a Answer) Text() string { return a.text }

func (a Answer) String() string { return a.text }

// JapaneseLevel is a JLPT level, N5 being the easiest.
type JapaneseLevel string

const (
	LevelN5 JapaneseLevel = "N5"
	LevelN4 JapaneseLevel = "N4"
	LevelN3 JapaneseLevel = "N3"
	LevelN2 JapaneseLevel = "N2"
	LevelN1 JapaneseLevel = "N1"
)

// JapaneseLevels lists every level from easiest to hardest.
var JapaneseLevels = []JapaneseLevel{LevelN5, LevelN4, LevelN3, LevelN2, LevelN1}

// ParseJapaneseLevel accepts "N5".."N1" in any case.
func ParseJapaneseLevel(s string) (JapaneseLevel, error) {
	level := JapaneseLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", fmt.Errorf("%w: unknown japanese level %q", ErrInvalidValues, s)
	}
	return level, nil
}

// IsValid reports whether l is one of the JLPT levels.
func (l JapaneseLevel) IsValid() bool {
	switch l {
	case LevelN5, LevelN4, LevelN3, LevelN2, LevelN1:
		return true
	default:
		return false
	}
}

// NativeLanguage is the learner's own language, used for meanings and set titles.
type NativeLanguage string

const (
	LanguageEnglish NativeLanguage = "en"
	LanguageRussian NativeLanguage = "ru"
)

// ParseNativeLanguage accepts a supported ISO 639-1 code.
func ParseNativeLanguage(s string) (NativeLanguage, error) {
	lang := NativeLanguage(strings.ToLower(strings.TrimSpace(s)))
	if !lang.IsValid() {
		return "", fmt.Errorf("%w: unsupported native language %q", ErrInvalidValues, s)
	}
	return lang, nil
}

// IsValid reports whether l is supported.
func (l NativeLanguage) IsValid() bool {
	return l == LanguageEnglish || l == LanguageRussian
}
