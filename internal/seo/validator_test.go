package seo_test

import (
	"strings"
	"testing"

	"github.com/fyrsmithlabs/contentd/internal/seo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textWithDensity builds simple, highly readable text containing the keyword
// exactly n times among total words.
func textWithDensity(keyword string, n, total int) string {
	filler := []string{"we", "like", "to", "make", "good", "things", "for", "you"}
	words := make([]string, 0, total)
	for i := 0; i < n; i++ {
		words = append(words, keyword)
	}
	for len(words) < total {
		words = append(words, filler[len(words)%len(filler)])
	}
	// Short sentences keep the Flesch score comfortably high.
	var b strings.Builder
	for i, w := range words {
		b.WriteString(w)
		if (i+1)%5 == 0 || i == len(words)-1 {
			b.WriteString(". ")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func TestValidate_Passes(t *testing.T) {
	text := textWithDensity("seo", 1, 60)
	res := seo.Validate(text, seo.UseCaseContent)

	assert.True(t, res.Passed)
	assert.Contains(t, res.Diagnostics.KeywordsPresent, "seo")
	assert.Equal(t, "seo", res.Diagnostics.DensityKeyword)
	assert.True(t, res.Diagnostics.DensityOK)
	assert.True(t, res.Diagnostics.ReadabilityOK)
	assert.GreaterOrEqual(t, res.Diagnostics.FleschScore, seo.MinReadingScore)
}

func TestValidate_NoKeywordFails(t *testing.T) {
	text := textWithDensity("cake", 1, 60)
	res := seo.Validate(text, seo.UseCaseContent)

	assert.False(t, res.Passed)
	assert.Empty(t, res.Diagnostics.KeywordsPresent)
	// Fallback density keyword is the first primary keyword, with density 0.
	assert.Equal(t, "seo", res.Diagnostics.DensityKeyword)
	assert.Zero(t, res.Diagnostics.Density)
	assert.False(t, res.Diagnostics.DensityOK)
}

func TestValidate_SubstringIsNotAMatch(t *testing.T) {
	// "builders" contains "builder" but not as a whole word.
	res := seo.Validate(textWithDensity("builders", 2, 60), seo.UseCaseContent)
	assert.False(t, res.Passed)
	assert.Empty(t, res.Diagnostics.KeywordsPresent)
}

func TestValidate_DensityIsExact(t *testing.T) {
	tests := []struct {
		n, total int
		want     float64
	}{
		{1, 50, 0.02},
		{3, 100, 0.03},
		{2, 10, 0.2},
		{1, 1000, 0.001},
	}
	for _, tt := range tests {
		res := seo.Validate(textWithDensity("seo", tt.n, tt.total), seo.UseCaseContent)
		assert.InDelta(t, tt.want, res.Diagnostics.Density, 1e-9,
			"n=%d total=%d", tt.n, tt.total)
	}
}

func TestValidate_AccentedWordsCountOnce(t *testing.T) {
	// Each accented word must be a single token in the density denominator,
	// not split at the non-ASCII rune.
	text := "seo " + strings.TrimSpace(strings.Repeat("naïve ", 49))
	res := seo.Validate(text, seo.UseCaseContent)

	assert.InDelta(t, 0.02, res.Diagnostics.Density, 1e-9)
	assert.True(t, res.Diagnostics.DensityOK)
}

func TestValidate_CalendarCeilingIsLooser(t *testing.T) {
	// Density 0.03 sits between the 2% default ceiling and the 5%
	// calendar ceiling.
	text := textWithDensity("seo", 3, 100)

	asCalendar := seo.Validate(text, seo.UseCaseCalendar)
	asContent := seo.Validate(text, seo.UseCaseContent)

	assert.True(t, asCalendar.Passed)
	assert.True(t, asCalendar.Diagnostics.DensityOK)
	assert.False(t, asContent.Passed)
	assert.False(t, asContent.Diagnostics.DensityOK)
}

func TestValidate_SpamDensityFailsEverywhere(t *testing.T) {
	text := textWithDensity("seo", 10, 100) // 10%
	assert.False(t, seo.Validate(text, seo.UseCaseContent).Passed)
	assert.False(t, seo.Validate(text, seo.UseCaseCalendar).Passed)
}

func TestValidate_PhraseKeyword(t *testing.T) {
	text := "Our content strategy is simple. We write for you. We keep it short and clear. " +
		strings.Repeat("We post and we share and we learn. ", 5)
	res := seo.Validate(text, seo.UseCaseStrategy)

	require.Contains(t, res.Diagnostics.KeywordsPresent, "content strategy")
	assert.Equal(t, "content strategy", res.Diagnostics.DensityKeyword)
	assert.Greater(t, res.Diagnostics.Density, 0.0)
}

func TestValidate_Deterministic(t *testing.T) {
	text := textWithDensity("website", 2, 80) + " Visit https://example.com #seo 🚀"
	first := seo.Validate(text, seo.UseCaseContent)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, seo.Validate(text, seo.UseCaseContent))
	}
}

func TestValidate_DiagnosticsReturnedOnPass(t *testing.T) {
	res := seo.Validate(textWithDensity("conversions", 1, 60), seo.UseCaseContent)
	require.True(t, res.Passed)
	assert.NotEmpty(t, res.Diagnostics.KeywordsPresent)
	assert.NotEmpty(t, res.Message())
}

func TestResult_ScoreRange(t *testing.T) {
	pass := seo.Validate(textWithDensity("seo", 1, 60), seo.UseCaseContent)
	fail := seo.Validate("zzz qqq xxx", seo.UseCaseContent)

	assert.Greater(t, pass.Score(), fail.Score())
	assert.LessOrEqual(t, pass.Score(), 1.0)
	assert.GreaterOrEqual(t, fail.Score(), 0.0)
}

func TestFleschReadingEase(t *testing.T) {
	simple := "The cat sat on the mat. The dog ran to the park. We like it."
	dense := "Multidimensional organizational restructuring necessitates comprehensive " +
		"interdepartmental collaboration methodologies alongside quantitative " +
		"performance measurement infrastructures."

	assert.Greater(t, seo.FleschReadingEase(simple), 80.0)
	assert.Less(t, seo.FleschReadingEase(dense), seo.FleschReadingEase(simple))
	assert.Zero(t, seo.FleschReadingEase(""))
}
