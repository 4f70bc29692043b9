// Package server exposes the pipeline over HTTP.
//
// Routes: POST /generate runs one session and returns the public video URL,
// GET /api/status reports configuration and dependency health, GET /healthz is
// a liveness probe, and everything else is served from the public directory
// (finished videos live under /videos/). Errors are mapped through
// services.Details so callers only ever see short fixed messages.
package server
