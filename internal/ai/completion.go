package ai

import "context"

// Completer is the text-completion capability consumed by scoring and
// tailoring. Implementations own their retry and rate-limit behaviour;
// callers treat every error as recoverable and degrade to rule-based logic.
type Completer interface {
	Invoke(ctx context.Context, prompt string) (string, error)
	Model() string
}
