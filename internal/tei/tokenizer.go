// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tei

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the byte-pair encoding used for token counting.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts tokens and trims text at token boundaries. The
// tokenizer choice affects only trim byte boundaries, never chunk
// ordering.
type Tokenizer interface {
	Count(text string) int
	Trim(text string, maxTokens int) string
}

// NewTokenizer returns the byte-pair tokenizer for the named encoding,
// falling back to whitespace splitting when the encoding data is
// unavailable (tiktoken downloads its vocabulary on first use).
func NewTokenizer(encoding string) Tokenizer {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	if enc, err := tiktoken.GetEncoding(encoding); err == nil {
		return &bpeTokenizer{enc: enc}
	}
	return whitespaceTokenizer{}
}

type bpeTokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t *bpeTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *bpeTokenizer) Trim(text string, maxTokens int) string {
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(t.enc.Decode(tokens[:maxTokens]))
}

// whitespaceTokenizer approximates token counts by whitespace-separated
// words.
type whitespaceTokenizer struct{}

func (whitespaceTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (whitespaceTokenizer) Trim(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[:maxTokens], " ")
}
