// Package llm is the boundary to the external generative-text service.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the service answers without any text.
var ErrEmptyCompletion = errors.New("generative service returned no completion")

// Completer produces one completion for a system instruction and a user message.
// Synthesis and translation are both built on it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
