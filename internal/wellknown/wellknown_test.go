package wellknown_test

import (
	"testing"

	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/wellknown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEverySet(t *testing.T) {
	t.Parallel()

	for i, id := range wellknown.All {
		set, err := wellknown.Load(id)
		require.NoError(t, err, id)
		assert.Equal(t, id, set.ID)
		assert.Equal(t, domain.JapaneseLevels[i], set.Level)
		assert.NotEmpty(t, set.Words)

		seen := make(map[string]bool)
		for _, w := range set.Words {
			key := domain.NormalizeQuestion(w)
			assert.False(t, seen[key], "duplicate word %q in %s", w, id)
			seen[key] = true
		}
	}
}

func TestForLevel(t *testing.T) {
	t.Parallel()

	id, err := wellknown.ForLevel(domain.LevelN3)
	require.NoError(t, err)
	assert.Equal(t, wellknown.JlptN3, id)

	_, err = wellknown.ForLevel("N6")
	assert.ErrorIs(t, err, domain.ErrWellKnownSet)
}

func TestLoadUnknownSet(t *testing.T) {
	t.Parallel()

	_, err := wellknown.Load("migii_n5_1")
	assert.ErrorIs(t, err, domain.ErrWellKnownSet)
}

func TestListLocalized(t *testing.T) {
	t.Parallel()

	english, err := wellknown.List(domain.LanguageEnglish)
	require.NoError(t, err)
	require.Len(t, english, 5)
	assert.Equal(t, wellknown.JlptN5, english[0].ID)
	assert.Equal(t, "JLPT N5 vocabulary", english[0].Title)
	assert.Positive(t, english[0].WordCount)

	russian, err := wellknown.List(domain.LanguageRussian)
	require.NoError(t, err)
	assert.Equal(t, "Словарь JLPT N5", russian[0].Title)
	assert.Equal(t, english[0].WordCount, russian[0].WordCount)
}

func TestContentForFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	set, err := wellknown.Load(wellknown.JlptN1)
	require.NoError(t, err)
	assert.Equal(t, set.Content[domain.LanguageEnglish], set.ContentFor("fr"))
}
