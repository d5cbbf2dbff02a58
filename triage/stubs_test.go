package triage

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/worklens/triage/evidence"
	"github.com/worklens/triage/llm"
)

// stubClient routes responses by matching a fragment of the system prompt,
// so each generation task can be scripted independently.
type stubClient struct {
	mu        sync.Mutex
	responses map[string]string
	errors    map[string]error
	calls     []llm.Request
}

func newStubClient() *stubClient {
	return &stubClient{
		responses: make(map[string]string),
		errors:    make(map[string]error),
	}
}

func (c *stubClient) respond(fragment, text string) { c.responses[fragment] = text }
func (c *stubClient) fail(fragment string, err error) {
	c.errors[fragment] = err
}

func (c *stubClient) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	c.calls = append(c.calls, *req)
	c.mu.Unlock()

	for fragment, err := range c.errors {
		if strings.Contains(req.System, fragment) {
			return nil, err
		}
	}
	for fragment, text := range c.responses {
		if strings.Contains(req.System, fragment) {
			return &llm.Response{Text: text}, nil
		}
	}
	return nil, errors.New("no scripted response")
}

// System prompt fragments unique to each task.
const (
	fragClassify      = "triage assistant"
	fragNarrative     = "four-section"
	fragFindings      = "discrete findings"
	fragScripts       = "polite, factual messages"
	fragOrganizations = "support organizations"
)

// stubEmbedder returns a fixed vector for any text.
type stubEmbedder struct {
	vec []float32
	err error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := e.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int { return len(e.vec) }

// stubStore serves canned items filtered by the allowed categories and
// records every search call.
type stubStore struct {
	mu    sync.Mutex
	items []evidence.Item
	err   error
	calls []storeCall
}

type storeCall struct {
	allowed []evidence.Category
	topK    int
}

func (s *stubStore) Search(ctx context.Context, queryVector []float32, allowed []evidence.Category, topK int) ([]evidence.Item, error) {
	s.mu.Lock()
	s.calls = append(s.calls, storeCall{allowed: allowed, topK: topK})
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	var out []evidence.Item
	for _, item := range s.items {
		for _, c := range allowed {
			if c.Matches(&item) {
				out = append(out, item)
				break
			}
		}
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// partitionStore fails one partition and serves the other, for degradation
// tests.
type partitionStore struct {
	inner         stubStore
	failPartition evidence.Partition
}

func (s *partitionStore) Search(ctx context.Context, queryVector []float32, allowed []evidence.Category, topK int) ([]evidence.Item, error) {
	if len(allowed) > 0 && allowed[0].Source.Partition() == s.failPartition {
		return nil, errors.New("partition unavailable")
	}
	return s.inner.Search(ctx, queryVector, allowed, topK)
}

// stubResolver resolves every reference to a predictable link, or fails.
type stubResolver struct {
	err error
}

func (r *stubResolver) Resolve(ctx context.Context, externalRef string, sourceType evidence.SourceType) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if externalRef == "" {
		return "", nil
	}
	return "https://docs.example.com/" + string(sourceType) + "/" + externalRef, nil
}
