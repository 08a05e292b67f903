// Package seo scores generated copy against keyword and readability
// heuristics before it is accepted into the output store.
package seo

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// UseCase identifies what kind of artifact is being validated. Calendars are
// short and table-like, so they get a looser density ceiling.
type UseCase string

const (
	UseCaseContent  UseCase = "content"
	UseCaseStrategy UseCase = "strategy"
	UseCaseCalendar UseCase = "calendar"
)

// PrimaryKeywords are the domain terms at least one of which must appear in
// every accepted piece of copy.
var PrimaryKeywords = []string{
	"seo", "search engine", "rank", "conversions", "website", "site speed",
	"structured data", "backlinks", "content strategy", "builder",
}

const (
	// MaxDensity is the keyword density ceiling for regular copy.
	MaxDensity = 0.02
	// MaxCalendarDensity is the looser ceiling for calendar tables.
	MaxCalendarDensity = 0.05
	// MinReadingScore is the minimum Flesch Reading Ease. 40 is "fairly
	// difficult" but acceptable for marketing copy.
	MinReadingScore = 40.0
)

var (
	wordRe    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	urlRe     = regexp.MustCompile(`http\S+`)
	hashtagRe = regexp.MustCompile(`#\w+`)
)

// Diagnostics records what each check computed. It is returned on pass and
// fail alike so callers can log or display it.
type Diagnostics struct {
	KeywordsPresent []string `json:"keywords_present"`
	DensityKeyword  string   `json:"density_kw"`
	Density         float64  `json:"density"`
	DensityOK       bool     `json:"density_ok"`
	FleschScore     float64  `json:"flesch_score"`
	ReadabilityOK   bool     `json:"readability_ok"`
}

// Result is the outcome of validating one text.
type Result struct {
	Passed      bool        `json:"passed"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Score folds the check outcomes into a single number in [0,1] suitable for
// storing alongside the output: keyword presence and density contribute 0 or
// 1 each, readability contributes the clamped Flesch score scaled to [0,1].
func (r Result) Score() float64 {
	var presence, density float64
	if len(r.Diagnostics.KeywordsPresent) > 0 {
		presence = 1
	}
	if r.Diagnostics.DensityOK {
		density = 1
	}
	readability := math.Min(math.Max(r.Diagnostics.FleschScore, 0), 100) / 100
	return (presence + density + readability) / 3
}

// Message renders the diagnostics as a single line for API responses.
func (r Result) Message() string {
	d := r.Diagnostics
	return fmt.Sprintf(
		"keywords_present=%v density_kw=%q density=%.4f density_ok=%t flesch_score=%.2f readability_ok=%t",
		d.KeywordsPresent, d.DensityKeyword, d.Density, d.DensityOK, d.FleschScore, d.ReadabilityOK,
	)
}

// Validate runs all checks on the text. The result is the AND of keyword
// presence, density bound, and readability; it is deterministic for
// identical input.
func Validate(text string, useCase UseCase) Result {
	lower := strings.ToLower(text)

	var present []string
	for _, kw := range PrimaryKeywords {
		if containsWholeWord(lower, kw) {
			present = append(present, kw)
		}
	}

	// The density check uses the first present keyword; when none is
	// present it falls back to the first primary keyword, which then
	// yields density 0.
	densityKW := PrimaryKeywords[0]
	if len(present) > 0 {
		densityKW = present[0]
	}
	density := keywordDensity(lower, densityKW)

	var densityOK bool
	if useCase == UseCaseCalendar {
		densityOK = density <= MaxCalendarDensity
	} else {
		// density > 0 keeps this partially redundant with the presence
		// check on purpose.
		densityOK = density <= MaxDensity && density > 0
	}

	flesch := FleschReadingEase(prepareReadabilityText(text))
	readabilityOK := flesch >= MinReadingScore

	return Result{
		Passed: len(present) > 0 && densityOK && readabilityOK,
		Diagnostics: Diagnostics{
			KeywordsPresent: present,
			DensityKeyword:  densityKW,
			Density:         round(density, 4),
			DensityOK:       densityOK,
			FleschScore:     round(flesch, 2),
			ReadabilityOK:   readabilityOK,
		},
	}
}

// keywordDensity returns occurrences of keyword (whole word or phrase)
// divided by the total word count of the text. Both inputs must already be
// lowercase.
func keywordDensity(lower, keyword string) float64 {
	tokens := wordRe.FindAllString(lower, -1)
	if len(tokens) == 0 {
		return 0
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
	occurrences := len(re.FindAllString(lower, -1))
	return float64(occurrences) / float64(len(tokens))
}

// containsWholeWord reports whether keyword appears in lower as a whole word
// or phrase.
func containsWholeWord(lower, keyword string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
	return re.MatchString(lower)
}

// prepareReadabilityText strips URLs, hashtags, and non-ASCII runes (emoji)
// that skew sentence and syllable statistics.
func prepareReadabilityText(text string) string {
	text = urlRe.ReplaceAllString(text, "")
	text = hashtagRe.ReplaceAllString(text, "")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
