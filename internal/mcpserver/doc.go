// Package mcpserver exposes the pipeline as Model Context Protocol tools so an
// agent can request videos over stdio.
//
// Tools:
//   - generate_video: runs one session and returns the artifact paths.
//   - render_profile: reports the capture and encode settings in effect.
package mcpserver
