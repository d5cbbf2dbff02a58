package triage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/worklens/triage/config"
	"github.com/worklens/triage/evidence"
	"github.com/worklens/triage/files"
	"github.com/worklens/triage/llm"
	"github.com/worklens/triage/pkg/logging"
	"github.com/worklens/triage/pkg/telemetry"
	"github.com/worklens/triage/token"
	"github.com/worklens/triage/vector"
)

// Stage names the workflow's checkpoints, in execution order.
type Stage string

const (
	StageStart             Stage = "start"
	StageQueryPrepared     Stage = "query_prepared"
	StageClassified        Stage = "classified"
	StageScopeFiltered     Stage = "scope_filtered"
	StageEvidenceRetrieved Stage = "evidence_retrieved"
	StageFieldsSynthesized Stage = "fields_synthesized"
	StageMerged            Stage = "merged"
	StageDone              Stage = "done"
)

// Config tunes the workflow. Zero values fall back to defaults in New.
type Config struct {
	GuidanceTopK         int
	PrecedentTopK        int
	RelatedDocumentLimit int
	CallTimeout          time.Duration
	DigestTokenBudget    int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		GuidanceTopK:         8,
		PrecedentTopK:        3,
		RelatedDocumentLimit: 3,
		CallTimeout:          60 * time.Second,
		DigestTokenBudget:    2000,
	}
}

// Option customizes a workflow at construction time.
type Option func(*Workflow)

// WithGuidanceTopK overrides the guidance partition quota.
func WithGuidanceTopK(k int) Option {
	return func(w *Workflow) { w.cfg.GuidanceTopK = k }
}

// WithPrecedentTopK overrides the precedent partition quota.
func WithPrecedentTopK(k int) Option {
	return func(w *Workflow) { w.cfg.PrecedentTopK = k }
}

// WithRelatedDocumentLimit overrides the related-document cap.
func WithRelatedDocumentLimit(n int) Option {
	return func(w *Workflow) { w.cfg.RelatedDocumentLimit = n }
}

// WithCallTimeout bounds each external call (embedding, model, search).
func WithCallTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.cfg.CallTimeout = d }
}

// WithResolver attaches a file reference resolver used during merging.
func WithResolver(r files.Resolver) Option {
	return func(w *Workflow) { w.resolver = r }
}

// WithTokenCounter attaches a token counter used to bound evidence digests.
func WithTokenCounter(c *token.Counter) Option {
	return func(w *Workflow) { w.counter = c }
}

// Workflow is the orchestrator. It advances through the stages in a fixed
// order and never returns an error to the caller: every stage has a fallback,
// and a structural violation degrades to a neutral result.
type Workflow struct {
	embedder vector.Embedder
	store    evidence.Store
	client   llm.Client
	resolver files.Resolver
	counter  *token.Counter
	cfg      Config

	classifier  *Classifier
	retriever   *Retriever
	synthesizer *Synthesizer
	merger      *Merger

	logger *slog.Logger
	tracer trace.Tracer
}

// New wires a workflow over the given embedder, evidence store, and model
// client.
func New(embedder vector.Embedder, store evidence.Store, client llm.Client, opts ...Option) (*Workflow, error) {
	w := &Workflow{
		embedder: embedder,
		store:    store,
		client:   client,
		cfg:      DefaultConfig(),
		logger:   logging.WithComponent("triage.workflow"),
		tracer:   otel.Tracer("github.com/worklens/triage/triage"),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := config.ValidateWorkflowConfig(w.cfg.GuidanceTopK, w.cfg.PrecedentTopK, w.cfg.RelatedDocumentLimit); err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}

	w.classifier = NewClassifier(client)
	w.retriever = NewRetriever(store, w.cfg.GuidanceTopK, w.cfg.PrecedentTopK)
	w.synthesizer = NewSynthesizer(client, w.counter, w.cfg.DigestTokenBudget)
	w.merger = NewMerger(w.resolver, w.cfg.RelatedDocumentLimit)
	return w, nil
}

// Run executes the full pipeline. It always returns a schema-valid result;
// if the run itself breaks (a panic inside orchestration), the caller gets a
// neutral degraded result instead of an error.
func (w *Workflow) Run(ctx context.Context, in Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("workflow panicked, returning degraded result", "panic", r)
			result = DegradedResult()
		}
	}()

	ctx, span := w.tracer.Start(ctx, "triage.run")
	defer telemetry.End(span, nil)
	start := time.Now()
	w.stage(StageStart)

	qc := w.prepareQuery(ctx, in)
	span.SetAttributes(attribute.Int("query.length", len(qc.Query)))
	w.stage(StageQueryPrepared)

	cls := w.classify(ctx, qc, in.Hints)
	span.SetAttributes(
		attribute.String("classification.category", cls.Category),
		attribute.Int("classification.risk_score", cls.RiskScore),
	)
	w.stage(StageClassified)

	scope := ScopeFor(cls)
	w.stage(StageScopeFiltered)

	items := w.retrieve(ctx, qc, scope)
	span.SetAttributes(attribute.Int("evidence.count", len(items)))
	w.stage(StageEvidenceRetrieved)

	fields := w.synthesize(ctx, qc, in.Hints, cls, items)
	w.stage(StageFieldsSynthesized)

	result = w.merge(ctx, cls, fields, items)
	w.stage(StageMerged)
	w.stage(StageDone)

	w.logger.Info("workflow completed",
		"category", result.Category,
		"risk_level", result.RiskLevel,
		"findings", len(result.Findings),
		"related_documents", len(result.RelatedDocuments),
		"duration", time.Since(start),
	)
	return result
}

// DegradedResult is the neutral result returned when orchestration itself
// fails.
func DegradedResult() Result {
	return Result{
		Category:                 CategoryUnknown,
		RiskScore:                DefaultRiskScore,
		RiskLevel:                RiskLevelFor(DefaultRiskScore),
		Narrative:                PlaceholderNarrative(),
		Findings:                 []Finding{},
		RelatedDocuments:         []RelatedDocument{},
		RecommendedOrganizations: []Organization{},
	}
}

// prepareQuery canonicalizes the text and computes the single embedding every
// later stage reuses. An embedding failure leaves the embedding nil, which
// retrieval treats as an outage.
func (w *Workflow) prepareQuery(ctx context.Context, in Input) QueryContext {
	ctx, span := w.tracer.Start(ctx, "triage.prepare_query")
	defer telemetry.End(span, nil)

	qc := QueryContext{Query: in.QueryText()}
	if w.embedder == nil || qc.Query == "" {
		return qc
	}

	callCtx, cancel := w.callContext(ctx)
	defer cancel()
	embedding, err := w.embedder.Embed(callCtx, qc.Query)
	if err != nil {
		w.logger.Warn("query embedding failed, retrieval will be skipped", "error", err)
		return qc
	}
	qc.Embedding = embedding
	return qc
}

func (w *Workflow) classify(ctx context.Context, qc QueryContext, hints Hints) Classification {
	ctx, span := w.tracer.Start(ctx, "triage.classify")
	defer telemetry.End(span, nil)

	callCtx, cancel := w.callContext(ctx)
	defer cancel()
	return w.classifier.Classify(callCtx, qc, hints)
}

func (w *Workflow) retrieve(ctx context.Context, qc QueryContext, scope Scope) []evidence.Item {
	ctx, span := w.tracer.Start(ctx, "triage.retrieve")
	defer telemetry.End(span, nil)

	callCtx, cancel := w.callContext(ctx)
	defer cancel()
	return w.retriever.Retrieve(callCtx, qc, scope)
}

func (w *Workflow) synthesize(ctx context.Context, qc QueryContext, hints Hints, cls Classification, items []evidence.Item) Fields {
	ctx, span := w.tracer.Start(ctx, "triage.synthesize")
	defer telemetry.End(span, nil)

	callCtx, cancel := w.callContext(ctx)
	defer cancel()
	return w.synthesizer.Synthesize(callCtx, qc, hints, cls, items)
}

func (w *Workflow) merge(ctx context.Context, cls Classification, fields Fields, items []evidence.Item) Result {
	ctx, span := w.tracer.Start(ctx, "triage.merge")
	defer telemetry.End(span, nil)

	return w.merger.Merge(ctx, cls, fields, items)
}

func (w *Workflow) stage(s Stage) {
	w.logger.Debug("stage reached", "stage", s)
}

func (w *Workflow) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.cfg.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, w.cfg.CallTimeout)
}
