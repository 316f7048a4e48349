package narrative

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the prompt size before a request is sent.
type TokenCounter interface {
	Count(model, text string) (int, error)
}

// TiktokenCounter counts tokens with the model's BPE encoding, falling back
// to cl100k_base for models tiktoken does not know.
type TiktokenCounter struct{}

func (TiktokenCounter) Count(model, text string) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil || enc == nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	return len(enc.Encode(text, nil, nil)), nil
}
