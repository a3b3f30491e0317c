package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeQuestion produces the key under which questions are compared for
// duplicates: NFKC (so full-width and half-width forms collide), case folded,
// with surrounding and repeated inner whitespace collapsed.
func NormalizeQuestion(text string) string {
	// Casers are stateful and must not be shared between goroutines.
	folded := cases.Fold().String(norm.NFKC.String(text))
	return strings.Join(strings.Fields(folded), " ")
}

// IsHiragana reports whether r is in the Hiragana block.
func IsHiragana(r rune) bool {
	return r >= 0x3040 && r <= 0x309F
}

// IsKatakana reports whether r is in the Katakana block.
func IsKatakana(r rune) bool {
	return r >= 0x30A0 && r <= 0x30FF
}

// IsKana reports whether r is hiragana or katakana.
func IsKana(r rune) bool {
	return IsHiragana(r) || IsKatakana(r)
}

// IsKanji reports whether r is a CJK ideograph.
func IsKanji(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// ContainsJapanese reports whether s has at least one kana or kanji.
func ContainsJapanese(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return IsKana(r) || IsKanji(r) }) >= 0
}
