// Package prompts renders the generation prompts sent to the language
// model. Every prompt carries two retrieval blocks: Context (brand corpus
// passages) and high-performing examples (past outputs with positive
// feedback).
package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/fyrsmithlabs/contentd/internal/outputstore"
)

// ContentInput parameterizes a platform content prompt. Persona, Audience,
// and ProfessionalInsight are each only meaningful for one platform.
type ContentInput struct {
	Context         string
	FeedbackContext string
	Topic           string
	Tone            string
	Persona         string
	Audience        string
	Insight         string
	Length          string
}

// StrategyInput parameterizes the cross-platform strategy prompt.
type StrategyInput struct {
	Context         string
	FeedbackContext string
	Platforms       string
	ContentGoals    string
}

// CalendarInput parameterizes the 7-day calendar prompt.
type CalendarInput struct {
	Context         string
	FeedbackContext string
	BrandSummary    string
	Topics          string
}

const linkedinTmpl = `Use the following context to generate a LinkedIn post. The response should be engaging, professional, and optimized for SEO and conversions.

Context: {{.Context}}
Content Topic: {{.Topic}}
Tone: {{.Tone}}
Professional Insight: {{.Insight}}
Length: {{.Length}}
High-performing examples: {{.FeedbackContext}}

Generate a LinkedIn post based on the above details. IMPORTANT: Include the exact word 'SEO' (uppercase) at least once to ensure SEO keyword presence.`

const instagramTmpl = `Use the following context to generate an Instagram caption. The response should be engaging, trendy, and optimized for SEO and conversions.

Context: {{.Context}}
Content Topic: {{.Topic}}
Tone: {{.Tone}}
Persona: {{.Persona}}
Length: {{.Length}}
High-performing examples: {{.FeedbackContext}}

Generate an Instagram caption based on the above details. IMPORTANT: Include the exact word 'SEO' (uppercase) at least once to ensure SEO keyword presence.`

const facebookTmpl = `Use the following context to generate a Facebook post. The response should be engaging, friendly, and optimized for SEO and conversions.

Context: {{.Context}}
Content Topic: {{.Topic}}
Tone: {{.Tone}}
Audience: {{.Audience}}
Length: {{.Length}}
High-performing examples: {{.FeedbackContext}}

Generate a Facebook post based on the above details. IMPORTANT: Include the exact word 'SEO' (uppercase) at least once to ensure SEO keyword presence.`

const strategyTmpl = `Develop a comprehensive **content marketing strategy** for the next 3 months targeting the following platforms: {{.Platforms}}.

Format your answer in **Markdown** using the sections below. Use bullet lists or tables where appropriate.

1. **Objectives** - what we aim to achieve (aligned with {{.ContentGoals}})
2. **Target Audience** - key personas & pain-points
3. **Key Messages & Content Pillars** - 3-5 pillars with examples
4. **Channel-Specific Approach** - for each platform outline best formats, tone, CTAs
5. **Posting Cadence & Formats** - weekly frequency, content types
6. **SEO & Conversion Tactics** - keyword strategy, internal linking, CTAs
7. **Measurement & KPIs** - how success will be tracked
8. **Timeline / Next Steps** - high-level roadmap

Leverage the following information when crafting the strategy:
High-performing examples: {{.FeedbackContext}}
Context: {{.Context}}`

const calendarTmpl = `Based on the brand summary and topics below, create a 7-day content plan focusing on SEO, conversions, and our SEO-friendly website product.
Return exactly 7 rows in this format:
Day | Platform | Content Type | Topic | Caption Summary | CTA
Guidelines:
- Use the exact word "SEO" ONLY ONCE in the full 7-row table (preferably in Day 1).
- Do NOT use the words "conversions" or "website" more than ONCE each in the entire table; use synonyms like "sales" or "site" elsewhere.
- Keep each caption summary concise (at most 12 words) and avoid keyword stuffing.
Use these high-performing examples for inspiration: {{.FeedbackContext}}
Brand Summary: {{.BrandSummary}}
Topics: {{.Topics}}
Context: {{.Context}}`

var templates = template.Must(template.New("linkedin").Parse(linkedinTmpl))

func init() {
	template.Must(templates.New("instagram").Parse(instagramTmpl))
	template.Must(templates.New("facebook").Parse(facebookTmpl))
	template.Must(templates.New("strategy").Parse(strategyTmpl))
	template.Must(templates.New("calendar").Parse(calendarTmpl))
}

func render(name string, data interface{}) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", name, err)
	}
	return b.String(), nil
}

// Content renders the content prompt for the platform.
func Content(platform outputstore.Platform, in ContentInput) (string, error) {
	if in.Length == "" {
		in.Length = "medium"
	}
	switch platform {
	case outputstore.PlatformLinkedIn, outputstore.PlatformInstagram, outputstore.PlatformFacebook:
		return render(string(platform), in)
	default:
		return "", fmt.Errorf("no content prompt for platform %q", platform)
	}
}

// Strategy renders the cross-platform strategy prompt.
func Strategy(in StrategyInput) (string, error) {
	return render("strategy", in)
}

// Calendar renders the 7-day calendar prompt.
func Calendar(in CalendarInput) (string, error) {
	return render("calendar", in)
}

// ContentQuery builds the corpus retrieval query for a content request. The
// phrasing mirrors the prompt so the retrieved passages stay on topic.
func ContentQuery(platform outputstore.Platform, in ContentInput) string {
	tone := in.Tone
	if tone == "" {
		tone = "neutral"
	}
	topic := in.Topic
	if topic == "" {
		topic = "general topic"
	}
	switch platform {
	case outputstore.PlatformLinkedIn:
		return fmt.Sprintf("Provide context for a content post about %s with a %s tone with insight: %s for LinkedIn audience.", topic, tone, in.Insight)
	case outputstore.PlatformInstagram:
		return fmt.Sprintf("Provide context for a content post about %s with a %s tone for %s on Instagram.", topic, tone, in.Persona)
	case outputstore.PlatformFacebook:
		return fmt.Sprintf("Provide context for a content post about %s with a %s tone for %s on Facebook.", topic, tone, in.Audience)
	default:
		return fmt.Sprintf("Provide context for a content post about %s with a %s tone.", topic, tone)
	}
}

// StrategyQuery builds the corpus retrieval query for a strategy request.
func StrategyQuery(goals string) string {
	if goals == "" {
		goals = "general topic"
	}
	return fmt.Sprintf("Provide context for a strategy about %s.", goals)
}

// CalendarQuery builds the corpus retrieval query for a calendar request.
func CalendarQuery(brandSummary string) string {
	if brandSummary == "" {
		brandSummary = "general topic"
	}
	return fmt.Sprintf("Provide context for a calendar about %s.", brandSummary)
}
