// Package outputstore persists generated outputs together with their
// metadata and user feedback, and keeps them similarity-searchable for
// few-shot retrieval.
package outputstore

import (
	"errors"
	"time"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when an output ID is absent from the store.
	ErrNotFound = errors.New("output not found")

	// ErrIndexInconsistency is returned for records the lookup table and
	// the similarity index disagree about. Such records are quarantined at
	// load instead of being served partially.
	ErrIndexInconsistency = errors.New("output table and similarity index disagree")
)

// Platform is the social network an output targets.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	// PlatformAll marks cross-platform artifacts (strategies, calendars).
	PlatformAll Platform = "all"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformFacebook, PlatformLinkedIn, PlatformAll:
		return true
	}
	return false
}

// Feedback label values.
const (
	LabelHighEngagement   = "high_engagement"
	LabelNeedsImprovement = "needs_improvement"
)

// Feedback is a user's verdict on one output. Written whole; a later
// submission for the same output overwrites it (last-write-wins).
type Feedback struct {
	Rating            *int           `json:"rating,omitempty"`
	Comment           string         `json:"comment,omitempty"`
	EngagementMetrics map[string]int `json:"engagement_metrics,omitempty"`
	Label             string         `json:"label"`
}

// DeriveLabel computes the engagement label: a rating of 4+ or more than 50
// likes marks the output high-engagement.
func DeriveLabel(rating *int, metrics map[string]int) string {
	if rating != nil && *rating >= 4 {
		return LabelHighEngagement
	}
	if metrics["likes"] > 50 {
		return LabelHighEngagement
	}
	return LabelNeedsImprovement
}

// Metadata describes how an output was generated. Only the request fields
// relevant to the use case are set.
type Metadata struct {
	OutputID string   `json:"output_id"`
	Platform Platform `json:"platform"`
	UseCase  string   `json:"use_case"`

	ContentTopic        string   `json:"content_topic,omitempty"`
	Tone                string   `json:"tone,omitempty"`
	Persona             string   `json:"persona,omitempty"`
	Audience            string   `json:"audience,omitempty"`
	ProfessionalInsight string   `json:"professional_insight,omitempty"`
	Length              string   `json:"length,omitempty"`
	ContentGoals        string   `json:"content_goals,omitempty"`
	Platforms           []string `json:"platforms,omitempty"`
	BrandSummary        string   `json:"brand_summary,omitempty"`
	TopicList           []string `json:"topic_list,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	SEOScore  float64   `json:"seo_score"`

	Feedback        *Feedback `json:"feedback,omitempty"`
	RegeneratedFrom string    `json:"regenerated_from,omitempty"`
}

// FeedbackLabel returns the attached feedback's label, or "" when no
// feedback has been submitted.
func (m *Metadata) FeedbackLabel() string {
	if m.Feedback == nil {
		return ""
	}
	return m.Feedback.Label
}

// GeneratedOutput pairs immutable generated text with its metadata. Content
// never changes after storage; regeneration creates a new record.
type GeneratedOutput struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// clone returns a deep copy so callers cannot mutate stored state.
func (o *GeneratedOutput) clone() *GeneratedOutput {
	cp := *o
	cp.Metadata.Platforms = append([]string(nil), o.Metadata.Platforms...)
	cp.Metadata.TopicList = append([]string(nil), o.Metadata.TopicList...)
	if o.Metadata.Feedback != nil {
		fb := *o.Metadata.Feedback
		if fb.Rating != nil {
			r := *fb.Rating
			fb.Rating = &r
		}
		if fb.EngagementMetrics != nil {
			m := make(map[string]int, len(fb.EngagementMetrics))
			for k, v := range fb.EngagementMetrics {
				m[k] = v
			}
			fb.EngagementMetrics = m
		}
		cp.Metadata.Feedback = &fb
	}
	return &cp
}
