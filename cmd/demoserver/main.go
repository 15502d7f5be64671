// Command demoserver imitates the college site for local runs of repview.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"log"
	"os"
	"strconv"

	"github.com/raysh454/repview/internal/demoserver"
	"github.com/raysh454/repview/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	logger := logging.NewStdoutLogger("demoserver")
	server := demoserver.NewDemoServer(cfg, logger)
	if err := server.Start(); err != nil {
		logger.Error("server error", logging.Field{Key: "error", Value: err})
		os.Exit(1)
	}
}
