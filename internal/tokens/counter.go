// Package tokens counts LLM tokens in decoded file content.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultModel is the model whose encoding is used when none is configured
const DefaultModel = "gpt-4"

// fallbackEncoding serves models tiktoken does not know
const fallbackEncoding = "cl100k_base"

// Counter counts tokens with one model's encoding. Safe for concurrent use.
type Counter struct {
	encoding *tiktoken.Tiktoken
	model    string
}

var (
	// Encodings are expensive to build; share them across counters
	encodingCache = make(map[string]*tiktoken.Tiktoken)
	cacheMu       sync.Mutex
)

// NewCounter creates a counter for a model. Unknown models use cl100k_base.
// The first call for an encoding may download its BPE ranks.
func NewCounter(model string) (*Counter, error) {
	if model == "" {
		model = DefaultModel
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := encodingCache[model]; ok {
		return &Counter{encoding: cached, model: model}, nil
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding for %s: %w", model, err)
		}
	}
	encodingCache[model] = encoding

	return &Counter{encoding: encoding, model: model}, nil
}

// Model returns the model name the counter was built for
func (c *Counter) Model() string {
	return c.model
}

// Count returns the token count of text. Special token markers are counted as
// ordinary text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.EncodeOrdinary(text))
}
