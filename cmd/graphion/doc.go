// Command graphion turns text prompts into short MP4 animations.
//
// It can run the pipeline in-process (generate), serve the HTTP API (serve),
// expose the pipeline to agents over MCP stdio (mcp), query a running daemon
// (status), and diagnose the local environment (doctor, config).
package main
