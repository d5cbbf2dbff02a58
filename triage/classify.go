package triage

import (
	"context"
	"log/slog"

	"github.com/worklens/triage/llm"
	"github.com/worklens/triage/pkg/logging"
)

// Classifier labels a situation with a category and preliminary risk score.
// It never returns an error: any failure in the model call or response
// parsing degrades to the unknown category with the neutral score.
type Classifier struct {
	client llm.Client
	logger *slog.Logger
}

// NewClassifier creates a classifier backed by the given model client.
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{
		client: client,
		logger: logging.WithComponent("triage.classifier"),
	}
}

// Classify runs the classification call. Intake hints enter the prompt as a
// soft prior; the model's category wins even when it contradicts the hint.
func (c *Classifier) Classify(ctx context.Context, qc QueryContext, hints Hints) Classification {
	fallback := Classification{Category: CategoryUnknown, RiskScore: DefaultRiskScore}
	if c.client == nil {
		return fallback
	}

	resp, err := c.client.Generate(ctx, &llm.Request{
		System:      classifySystemPrompt,
		Prompt:      buildClassifyPrompt(qc.Query, hints),
		Temperature: 0.1,
		MaxTokens:   256,
	})
	if err != nil {
		c.logger.Warn("classification call failed, using fallback", "error", err)
		return fallback
	}

	cls, err := parseClassification(resp.Text)
	if err != nil {
		c.logger.Warn("classification response unparseable, using fallback", "error", err)
		return fallback
	}
	c.logger.Debug("classified", "category", cls.Category, "risk_score", cls.RiskScore)
	return cls
}
