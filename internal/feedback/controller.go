// Package feedback closes the loop on stored outputs: users rate them, the
// rating derives an engagement label, and poorly received outputs can be
// regenerated from their stored request parameters.
package feedback

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
	"github.com/fyrsmithlabs/contentd/internal/outputstore"
)

// Store is the slice of the output store the controller needs.
type Store interface {
	Get(ctx context.Context, id string) (*outputstore.GeneratedOutput, error)
	Update(ctx context.Context, id string, record outputstore.GeneratedOutput) error
}

// Orchestrator runs the generation use cases regeneration dispatches to.
type Orchestrator interface {
	GenerateContent(ctx context.Context, req orchestrator.ContentRequest) (*orchestrator.Result, error)
	GenerateStrategy(ctx context.Context, req orchestrator.StrategyRequest) (*orchestrator.Result, error)
}

// Submission is one user verdict on an output. All fields are optional; the
// label is derived from whatever is present.
type Submission struct {
	Rating            *int           `json:"rating,omitempty"`
	Comment           string         `json:"comment,omitempty"`
	EngagementMetrics map[string]int `json:"engagement_metrics,omitempty"`
}

// Controller attaches feedback to outputs and regenerates them.
type Controller struct {
	store  Store
	orch   Orchestrator
	logger *zap.Logger
}

// New creates a feedback controller.
func New(store Store, orch Orchestrator, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{store: store, orch: orch, logger: logger}
}

// SubmitFeedback derives the engagement label from the submission and writes
// it onto the output. A later submission for the same output replaces the
// earlier one whole (last-write-wins). Returns the stored feedback.
func (c *Controller) SubmitFeedback(ctx context.Context, id string, sub Submission) (*outputstore.Feedback, error) {
	record, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fb := &outputstore.Feedback{
		Rating:            sub.Rating,
		Comment:           sub.Comment,
		EngagementMetrics: sub.EngagementMetrics,
		Label:             outputstore.DeriveLabel(sub.Rating, sub.EngagementMetrics),
	}
	record.Metadata.Feedback = fb

	if err := c.store.Update(ctx, id, *record); err != nil {
		return nil, fmt.Errorf("attaching feedback to %s: %w", id, err)
	}

	c.logger.Info("feedback recorded",
		zap.String("output_id", id),
		zap.String("label", fb.Label),
	)
	return fb, nil
}

// Regenerate produces a replacement for a stored output by re-running its
// use case with the parameters saved in its metadata. The original record is
// untouched; the new one links back via regenerated_from and starts without
// feedback. The use case is inferred from the stored platform: the three
// content platforms regenerate as content, everything else as strategy.
func (c *Controller) Regenerate(ctx context.Context, id string) (*orchestrator.Result, error) {
	record, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	meta := record.Metadata

	switch meta.Platform {
	case outputstore.PlatformInstagram, outputstore.PlatformFacebook, outputstore.PlatformLinkedIn:
		return c.orch.GenerateContent(ctx, orchestrator.ContentRequest{
			Platform:            meta.Platform,
			ContentTopic:        meta.ContentTopic,
			Tone:                meta.Tone,
			Persona:             meta.Persona,
			Audience:            meta.Audience,
			ProfessionalInsight: meta.ProfessionalInsight,
			Length:              meta.Length,
			RegeneratedFrom:     id,
		})
	default:
		goals := meta.ContentGoals
		if goals == "" {
			// Calendar records save a brand summary instead of goals.
			goals = meta.BrandSummary
		}
		return c.orch.GenerateStrategy(ctx, orchestrator.StrategyRequest{
			Platforms:       append([]string(nil), meta.Platforms...),
			ContentGoals:    goals,
			RegeneratedFrom: id,
		})
	}
}
