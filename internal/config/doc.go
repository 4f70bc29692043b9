// Package config loads, normalizes, and validates graphion configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY and PORT. The Config type centralizes every knob the daemon
// and CLI need so work and public directories, the Gemini model, and the
// render/encode profile are resolved in one pass.
package config
