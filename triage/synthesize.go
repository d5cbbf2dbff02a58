package triage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/worklens/triage/evidence"
	"github.com/worklens/triage/llm"
	"github.com/worklens/triage/pkg/logging"
	"github.com/worklens/triage/token"
)

// Fields holds the outputs of the four generation tasks. Each field is
// independently degradable: a failed task leaves its documented fallback
// while the others keep their real output.
type Fields struct {
	Narrative     Narrative
	Findings      []Finding
	Scripts       OutreachScripts
	Organizations []Organization
}

// PlaceholderNarrative is the fixed narrative substituted when narrative
// generation fails.
func PlaceholderNarrative() Narrative {
	return Narrative{
		SituationAnalysis: "The analysis could not be generated at this time. Please retry shortly.",
		LegalPerspective:  "No automated legal perspective is available for this report.",
		ImmediateActions:  "Keep records of the situation (dates, messages, payslips) and retry the analysis.",
		SuggestedWording:  "Consider consulting a qualified advisor to put your request in writing.",
	}
}

// Synthesizer fans the prepared context out to the four generation tasks and
// collects whatever each produced.
type Synthesizer struct {
	client      llm.Client
	counter     *token.Counter
	tokenBudget int
	logger      *slog.Logger
}

// NewSynthesizer creates a synthesizer. counter may be nil, in which case the
// evidence digest is bounded by characters instead of tokens.
func NewSynthesizer(client llm.Client, counter *token.Counter, tokenBudget int) *Synthesizer {
	return &Synthesizer{
		client:      client,
		counter:     counter,
		tokenBudget: tokenBudget,
		logger:      logging.WithComponent("triage.synthesizer"),
	}
}

// Synthesize runs all four tasks concurrently against the same evidence
// digest. Task failures, including panics, are isolated to their own field.
func (s *Synthesizer) Synthesize(ctx context.Context, qc QueryContext, hints Hints, cls Classification, items []evidence.Item) Fields {
	fields := Fields{
		Narrative:     PlaceholderNarrative(),
		Findings:      []Finding{},
		Organizations: []Organization{},
	}
	if s.client == nil {
		return fields
	}

	digest := evidenceDigest(items, s.counter, s.tokenBudget)
	prompt := buildGenerationPrompt(qc.Query, hints, cls, digest)

	var wg sync.WaitGroup
	wg.Add(4)

	go s.runTask(&wg, "narrative", func() {
		if n, err := s.generateNarrative(ctx, prompt); err == nil {
			fields.Narrative = n
		} else {
			s.logger.Warn("narrative generation failed, using placeholder", "error", err)
		}
	})
	go s.runTask(&wg, "findings", func() {
		if f, err := s.generateFindings(ctx, prompt); err == nil {
			fields.Findings = f
		} else {
			s.logger.Warn("findings generation failed, using empty list", "error", err)
		}
	})
	go s.runTask(&wg, "scripts", func() {
		if sc, err := s.generateScripts(ctx, prompt); err == nil {
			fields.Scripts = sc
		} else {
			s.logger.Warn("script generation failed, omitting scripts", "error", err)
		}
	})
	go s.runTask(&wg, "organizations", func() {
		if orgs, err := s.generateOrganizations(ctx, prompt); err == nil {
			fields.Organizations = orgs
		} else {
			s.logger.Warn("organization generation failed, using empty list", "error", err)
		}
	})

	wg.Wait()
	return fields
}

// runTask isolates one generation task. Each closure writes to a distinct
// field of the shared Fields value, so no locking is needed across tasks.
func (s *Synthesizer) runTask(wg *sync.WaitGroup, name string, fn func()) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("generation task panicked, keeping fallback", "task", name, "panic", r)
		}
	}()
	fn()
}

func (s *Synthesizer) generate(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	resp, err := s.client.Generate(ctx, &llm.Request{
		System:      system,
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (s *Synthesizer) generateNarrative(ctx context.Context, prompt string) (Narrative, error) {
	text, err := s.generate(ctx, narrativeSystemPrompt, prompt, 2048)
	if err != nil {
		return Narrative{}, err
	}
	return parseNarrative(text)
}

func (s *Synthesizer) generateFindings(ctx context.Context, prompt string) ([]Finding, error) {
	text, err := s.generate(ctx, findingsSystemPrompt, prompt, 2048)
	if err != nil {
		return nil, err
	}
	return parseFindings(text)
}

func (s *Synthesizer) generateScripts(ctx context.Context, prompt string) (OutreachScripts, error) {
	text, err := s.generate(ctx, scriptsSystemPrompt, prompt, 1024)
	if err != nil {
		return OutreachScripts{}, err
	}
	return parseScripts(text)
}

func (s *Synthesizer) generateOrganizations(ctx context.Context, prompt string) ([]Organization, error) {
	text, err := s.generate(ctx, organizationsSystemPrompt, prompt, 1024)
	if err != nil {
		return nil, err
	}
	return parseOrganizations(text)
}
