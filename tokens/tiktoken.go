package tokens

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Encodings used by ltmkit.
const (
	EncodingCl100k = tokenizer.Cl100kBase
	EncodingO200k  = tokenizer.O200kBase
)

var (
	codecMu sync.Mutex
	codecs  = make(map[tokenizer.Encoding]tokenizer.Codec)
)

// loadCodec returns the shared codec for enc. Codecs are immutable once
// built, so one instance per encoding serves every counter.
func loadCodec(enc tokenizer.Encoding) (tokenizer.Codec, error) {
	codecMu.Lock()
	defer codecMu.Unlock()

	if c, ok := codecs[enc]; ok {
		return c, nil
	}
	c, err := tokenizer.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("load %s tokenizer: %w", enc, err)
	}
	codecs[enc] = c
	return c, nil
}

// TiktokenCounter counts tokens exactly with a BPE encoding.
type TiktokenCounter struct {
	encoding tokenizer.Encoding
	codec    tokenizer.Codec
	fallback *EstimatingCounter
}

// NewTiktokenCounter creates a counter for the given encoding.
func NewTiktokenCounter(enc tokenizer.Encoding) (*TiktokenCounter, error) {
	codec, err := loadCodec(enc)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{
		encoding: enc,
		codec:    codec,
		fallback: NewEstimatingCounter(),
	}, nil
}

// Encoding returns the encoding name, e.g. "cl100k_base".
func (c *TiktokenCounter) Encoding() string {
	return string(c.encoding)
}

// Count returns the number of tokens in text. Text the codec rejects is
// estimated instead.
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return c.fallback.Count(text)
	}
	return len(ids)
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *TiktokenCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// Truncate returns the longest prefix of text that encodes to at most
// maxTokens tokens.
func (c *TiktokenCounter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil || len(ids) <= maxTokens {
		return text
	}
	out, err := c.codec.Decode(ids[:maxTokens])
	if err != nil {
		return text
	}
	return out
}
