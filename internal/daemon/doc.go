// Package daemon coordinates the long-running graphion HTTP process.
//
// It wires configuration, the pipeline orchestrator, and the HTTP router into
// a single lifecycle with flock-based locking so two daemons never share one
// work root. Dependency health is probed once at startup and reported through
// GET /api/status.
//
// Keep lifecycle logic here: request handling lives in internal/server and
// per-request work in internal/pipeline.
package daemon
