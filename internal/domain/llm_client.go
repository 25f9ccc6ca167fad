package domain

import "context"

// LLMClient defines the capability to send a prompt to an LLM and receive the
// textual completion. Implementations use deterministic decoding parameters
// (fixed seed, temperature zero) so repeated calls on identical input are
// expected to produce near-identical output.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}
