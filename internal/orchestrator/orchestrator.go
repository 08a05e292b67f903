// Package orchestrator drives a generation request end to end: assemble
// retrieval context, invoke the generator, validate the result, store it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/outputstore"
	"github.com/fyrsmithlabs/contentd/internal/prompts"
	"github.com/fyrsmithlabs/contentd/internal/retriever"
	"github.com/fyrsmithlabs/contentd/internal/seo"
)

// ErrInvalidRequest marks a request rejected at the boundary, before any
// model call.
var ErrInvalidRequest = errors.New("invalid request")

// TextGenerator produces text from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// KnowledgeSearcher returns brand corpus passages near a query.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// ExampleRetriever returns past high-performing outputs near a query.
type ExampleRetriever interface {
	RetrieveRelevant(ctx context.Context, query string, platform outputstore.Platform, k int) ([]outputstore.GeneratedOutput, error)
}

// Recorder persists a finished output.
type Recorder interface {
	Store(ctx context.Context, content string, meta outputstore.Metadata) error
}

// ContentRequest asks for one piece of platform copy. Persona applies to
// instagram, Audience to facebook, ProfessionalInsight to linkedin; the
// others are ignored for a given platform.
type ContentRequest struct {
	Platform            outputstore.Platform
	ContentTopic        string
	Tone                string
	Persona             string
	Audience            string
	ProfessionalInsight string
	Length              string

	// RegeneratedFrom links the new record to the output it replaces.
	RegeneratedFrom string
}

func (r *ContentRequest) validate() error {
	switch r.Platform {
	case outputstore.PlatformInstagram, outputstore.PlatformFacebook, outputstore.PlatformLinkedIn:
	default:
		return fmt.Errorf("%w: unsupported content platform %q", ErrInvalidRequest, r.Platform)
	}
	if strings.TrimSpace(r.ContentTopic) == "" {
		return fmt.Errorf("%w: content_topic is required", ErrInvalidRequest)
	}
	return nil
}

// StrategyRequest asks for a cross-platform content strategy.
type StrategyRequest struct {
	Platforms    []string
	ContentGoals string

	// RegeneratedFrom links the new record to the output it replaces.
	RegeneratedFrom string
}

func (r *StrategyRequest) validate() error {
	if strings.TrimSpace(r.ContentGoals) == "" {
		return fmt.Errorf("%w: content_goals is required", ErrInvalidRequest)
	}
	return nil
}

// CalendarRequest asks for a 7-day content calendar.
type CalendarRequest struct {
	BrandSummary string
	TopicList    []string
}

func (r *CalendarRequest) validate() error {
	if strings.TrimSpace(r.BrandSummary) == "" {
		return fmt.Errorf("%w: brand_summary is required", ErrInvalidRequest)
	}
	return nil
}

// Result is what every generation returns. A failed validation does not
// abort the request: the output is stored and returned with
// ValidationPassed false and the diagnostic message.
type Result struct {
	OutputID          string          `json:"output_id"`
	Text              string          `json:"text"`
	ValidationPassed  bool            `json:"validation_passed"`
	ValidationMessage string          `json:"validation_message"`
	Diagnostics       seo.Diagnostics `json:"diagnostics"`
}

// Service runs generation requests.
type Service struct {
	generator  TextGenerator
	knowledge  KnowledgeSearcher
	examples   ExampleRetriever
	recorder   Recorder
	retrievalK int
	logger     *zap.Logger
}

// New wires a generation service. retrievalK <= 0 falls back to the
// retriever default.
func New(generator TextGenerator, knowledge KnowledgeSearcher, examples ExampleRetriever, recorder Recorder, retrievalK int, logger *zap.Logger) *Service {
	if retrievalK <= 0 {
		retrievalK = retriever.DefaultK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		generator:  generator,
		knowledge:  knowledge,
		examples:   examples,
		recorder:   recorder,
		retrievalK: retrievalK,
		logger:     logger,
	}
}

// GenerateContent produces platform copy for the request.
func (s *Service) GenerateContent(ctx context.Context, req ContentRequest) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	in := prompts.ContentInput{
		Topic:    req.ContentTopic,
		Tone:     req.Tone,
		Persona:  req.Persona,
		Audience: req.Audience,
		Insight:  req.ProfessionalInsight,
		Length:   req.Length,
	}
	query := prompts.ContentQuery(req.Platform, in)

	background, examples, err := s.assembleContext(ctx, query, req.Platform)
	if err != nil {
		return nil, err
	}
	in.Context = background
	in.FeedbackContext = examples

	prompt, err := prompts.Content(req.Platform, in)
	if err != nil {
		return nil, err
	}

	meta := outputstore.Metadata{
		Platform:            req.Platform,
		UseCase:             string(seo.UseCaseContent),
		ContentTopic:        req.ContentTopic,
		Tone:                req.Tone,
		Persona:             req.Persona,
		Audience:            req.Audience,
		ProfessionalInsight: req.ProfessionalInsight,
		Length:              req.Length,
		RegeneratedFrom:     req.RegeneratedFrom,
	}
	return s.finish(ctx, prompt, seo.UseCaseContent, meta)
}

// GenerateStrategy produces a cross-platform content strategy.
func (s *Service) GenerateStrategy(ctx context.Context, req StrategyRequest) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	query := prompts.StrategyQuery(req.ContentGoals)
	background, examples, err := s.assembleContext(ctx, query, outputstore.PlatformAll)
	if err != nil {
		return nil, err
	}

	prompt, err := prompts.Strategy(prompts.StrategyInput{
		Context:         background,
		FeedbackContext: examples,
		Platforms:       strings.Join(req.Platforms, ", "),
		ContentGoals:    req.ContentGoals,
	})
	if err != nil {
		return nil, err
	}

	meta := outputstore.Metadata{
		Platform:        outputstore.PlatformAll,
		UseCase:         string(seo.UseCaseStrategy),
		ContentGoals:    req.ContentGoals,
		Platforms:       append([]string(nil), req.Platforms...),
		RegeneratedFrom: req.RegeneratedFrom,
	}
	return s.finish(ctx, prompt, seo.UseCaseStrategy, meta)
}

// GenerateCalendar produces a 7-day content calendar.
func (s *Service) GenerateCalendar(ctx context.Context, req CalendarRequest) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	query := prompts.CalendarQuery(req.BrandSummary)
	background, examples, err := s.assembleContext(ctx, query, outputstore.PlatformAll)
	if err != nil {
		return nil, err
	}

	prompt, err := prompts.Calendar(prompts.CalendarInput{
		Context:         background,
		FeedbackContext: examples,
		BrandSummary:    req.BrandSummary,
		Topics:          strings.Join(req.TopicList, ", "),
	})
	if err != nil {
		return nil, err
	}

	meta := outputstore.Metadata{
		Platform:     outputstore.PlatformAll,
		UseCase:      string(seo.UseCaseCalendar),
		BrandSummary: req.BrandSummary,
		TopicList:    append([]string(nil), req.TopicList...),
	}
	return s.finish(ctx, prompt, seo.UseCaseCalendar, meta)
}

// assembleContext gathers the two retrieval blocks for the prompt.
func (s *Service) assembleContext(ctx context.Context, query string, platform outputstore.Platform) (background, examples string, err error) {
	passages, err := s.knowledge.Search(ctx, query, s.retrievalK)
	if err != nil {
		return "", "", fmt.Errorf("assembling context: %w", err)
	}

	past, err := s.examples.RetrieveRelevant(ctx, query, platform, s.retrievalK)
	if err != nil {
		return "", "", fmt.Errorf("retrieving examples: %w", err)
	}

	s.logger.Debug("assembled context",
		zap.String("platform", string(platform)),
		zap.Int("passages", len(passages)),
		zap.Int("examples", len(past)),
	)
	return strings.Join(passages, "\n"), retriever.FewShotContext(past), nil
}

// finish invokes the generator, validates, and stores the result.
func (s *Service) finish(ctx context.Context, prompt string, useCase seo.UseCase, meta outputstore.Metadata) (*Result, error) {
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	validation := seo.Validate(text, useCase)

	meta.OutputID = uuid.NewString()
	meta.Timestamp = time.Now().UTC()
	meta.SEOScore = validation.Score()

	if err := s.recorder.Store(ctx, text, meta); err != nil {
		return nil, fmt.Errorf("storing output: %w", err)
	}

	s.logger.Info("generated output",
		zap.String("output_id", meta.OutputID),
		zap.String("use_case", string(useCase)),
		zap.String("platform", string(meta.Platform)),
		zap.Bool("validation_passed", validation.Passed),
		zap.Float64("seo_score", meta.SEOScore),
	)

	return &Result{
		OutputID:          meta.OutputID,
		Text:              text,
		ValidationPassed:  validation.Passed,
		ValidationMessage: validation.Message(),
		Diagnostics:       validation.Diagnostics,
	}, nil
}
