// Command graphiond runs the graphion HTTP server as a standalone daemon.
package main

import (
	"context"
	"flag"
	"log"

	"graphion/internal/config"
	"graphion/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	bind := flag.String("bind", "", "Listen address (overrides paths.api_bind)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{Bind: *bind, LogLevel: *logLevel}); err != nil {
		log.Fatalf("graphiond: %v", err)
	}
}
