// Package pipeline runs one prompt through markup generation, frame capture,
// and video assembly.
//
// Each run owns a session: a UUID, a work directory under the configured work
// root, and a small state machine (created, generating_markup, capturing,
// encoding, done or failed). The work directory is removed on every exit path
// and cleanup problems are logged without replacing the run's outcome.
package pipeline
