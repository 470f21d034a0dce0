// Package pipeline orchestrates the mass-spectrometry processing
// stages over a sample batch.
//
// This package is the composition root: it owns the closed Step enum,
// the typed per-step parameter records, and the dispatcher that
// sequences the domain stages from internal/ms. The domain package does
// not import pipeline.
//
// Each invocation is synchronous and stateless: it reads a batch,
// performs one stage's computation, and returns an updated batch plus
// step-specific counters. The only shared state across invocations is
// the immutable Processor configuration.
package pipeline
