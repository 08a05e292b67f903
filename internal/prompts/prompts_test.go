package prompts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contentd/internal/outputstore"
	"github.com/fyrsmithlabs/contentd/internal/prompts"
)

func TestContent_LinkedIn(t *testing.T) {
	out, err := prompts.Content(outputstore.PlatformLinkedIn, prompts.ContentInput{
		Context:         "brand context here",
		FeedbackContext: "past winner",
		Topic:           "site speed",
		Tone:            "professional",
		Insight:         "Core Web Vitals matter",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "LinkedIn post")
	assert.Contains(t, out, "Content Topic: site speed")
	assert.Contains(t, out, "Professional Insight: Core Web Vitals matter")
	assert.Contains(t, out, "High-performing examples: past winner")
	assert.Contains(t, out, "Length: medium") // default when unset
	assert.Contains(t, out, "Include the exact word 'SEO'")
}

func TestContent_PlatformFields(t *testing.T) {
	insta, err := prompts.Content(outputstore.PlatformInstagram, prompts.ContentInput{
		Topic: "reels", Persona: "startup founder", Length: "short",
	})
	require.NoError(t, err)
	assert.Contains(t, insta, "Instagram caption")
	assert.Contains(t, insta, "Persona: startup founder")
	assert.Contains(t, insta, "Length: short")

	fb, err := prompts.Content(outputstore.PlatformFacebook, prompts.ContentInput{
		Topic: "promo", Audience: "small business owners",
	})
	require.NoError(t, err)
	assert.Contains(t, fb, "Facebook post")
	assert.Contains(t, fb, "Audience: small business owners")
}

func TestContent_UnknownPlatform(t *testing.T) {
	_, err := prompts.Content(outputstore.PlatformAll, prompts.ContentInput{Topic: "x"})
	assert.Error(t, err)
}

func TestStrategy(t *testing.T) {
	out, err := prompts.Strategy(prompts.StrategyInput{
		Platforms:       "linkedin, instagram",
		ContentGoals:    "grow inbound leads",
		Context:         "ctx",
		FeedbackContext: "examples",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "content marketing strategy")
	assert.Contains(t, out, "linkedin, instagram")
	assert.Contains(t, out, "grow inbound leads")
	assert.Contains(t, out, "Context: ctx")
}

func TestCalendar(t *testing.T) {
	out, err := prompts.Calendar(prompts.CalendarInput{
		BrandSummary: "Productimate builds SEO-friendly sites",
		Topics:       "speed, schema, CTAs",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "7-day content plan")
	assert.Contains(t, out, "Day | Platform | Content Type | Topic | Caption Summary | CTA")
	assert.Contains(t, out, "Brand Summary: Productimate builds SEO-friendly sites")
}

func TestContentQuery(t *testing.T) {
	q := prompts.ContentQuery(outputstore.PlatformInstagram, prompts.ContentInput{
		Topic: "site speed", Tone: "playful", Persona: "founder",
	})
	assert.Equal(t, "Provide context for a content post about site speed with a playful tone for founder on Instagram.", q)

	q = prompts.ContentQuery(outputstore.PlatformLinkedIn, prompts.ContentInput{})
	assert.Contains(t, q, "general topic")
	assert.Contains(t, q, "neutral tone")
}

func TestStrategyAndCalendarQueries(t *testing.T) {
	assert.Equal(t, "Provide context for a strategy about more leads.", prompts.StrategyQuery("more leads"))
	assert.Equal(t, "Provide context for a calendar about our brand.", prompts.CalendarQuery("our brand"))
	assert.Contains(t, prompts.StrategyQuery(""), "general topic")
}
