// Package daemonctl talks to a running graphiond over its HTTP API. The CLI
// uses it for status queries and for submitting prompts to a daemon instead
// of running the pipeline in-process.
package daemonctl
