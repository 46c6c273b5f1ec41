package words

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestRandomSecretLengths(t *testing.T) {
	for _, lang := range Languages() {
		for _, n := range []int{5, 6, 7} {
			w, err := RandomSecret(lang, n)
			require.NoError(t, err, "lang=%s n=%d", lang, n)
			assert.Equal(t, n, utf8.RuneCountInString(w))
			assert.True(t, IsWord(lang, w))
		}
	}
}

func TestRandomSecretUnknownLength(t *testing.T) {
	_, err := RandomSecret("en", 42)
	assert.ErrorIs(t, err, ErrNoWords)
}

func TestLangFallback(t *testing.T) {
	assert.Equal(t, "de", Lang(" DE "))
	assert.Equal(t, "en", Lang("fr"))
	assert.Equal(t, "en", Lang(""))
}

func TestIsWord(t *testing.T) {
	assert.True(t, IsWord("en", "Crane"))
	assert.True(t, IsWord("de", "flöte"))
	assert.False(t, IsWord("en", "qqqqq"))
	assert.False(t, IsWord("en", "# English"))
}

func TestCandidates(t *testing.T) {
	c := Candidates("en", 'Z')
	require.NotEmpty(t, c)
	for _, w := range c {
		assert.True(t, strings.HasPrefix(w, "z"), w)
	}
	assert.IsIncreasing(t, c)
}

func TestLengthsAndStats(t *testing.T) {
	assert.Subset(t, Lengths("en"), []int{5, 6, 7})
	stats := Stats()
	assert.Greater(t, stats["en"], 100)
	assert.Greater(t, stats["de"], 50)
}

func TestBuildSkipsNonAlpha(t *testing.T) {
	p := build([]string{"abc", "a-b", "abc", "x1", ""})
	assert.Len(t, p.set, 1)
	assert.Equal(t, []string{"abc"}, p.byLen[3])
}
