// Package gemini wraps the Generative Language API generateContent call used
// to turn a prompt into animation markup.
//
// The client issues exactly one request per call. Prompt-level blocks, empty
// candidates, and candidates without text are reported as
// services.ErrGenerationBlocked; transport and API failures as
// services.ErrGenerationUnavailable.
package gemini
