package token

import (
	"github.com/pkoukk/tiktoken-go"
)

// Counter wraps a tiktoken encoding for prompt-budget accounting.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter resolves an encoding by model name, falling back to encoding name.
func NewCounter(name string) (*Counter, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		// try by encoding name
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, err
		}
	}
	return &Counter{enc: enc}, nil
}

// Count returns the number of tokens in the text.
func (c *Counter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Truncate returns the longest prefix of text that fits within maxTokens.
func (c *Counter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	ids := c.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return c.enc.Decode(ids[:maxTokens])
}
