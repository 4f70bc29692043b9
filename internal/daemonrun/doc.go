// Package daemonrun wires configuration into a running graphion stack: the
// Gemini client, markup generator, capture engine, encoder, and pipeline
// orchestrator. The CLI and graphiond share it so both build identical
// pipelines.
package daemonrun
