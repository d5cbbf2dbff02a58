package llm

import "context"

// Request bundles inputs for a single non-streaming generation call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int64
}

// Response captures the model reply.
type Response struct {
	Text string
}

// Client defines the interface for text-generation providers. Implementations
// are stateless request/response adapters; callers own parsing structure out
// of the returned free text.
type Client interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}
