// Command draftmcp exposes the email drafting pipeline as MCP tools over
// stdio. It reads the same configuration as draftd.
//
// Configuration for an MCP client such as Claude Desktop:
//
//	{
//	    "mcpServers": {
//	        "maildraft": {
//	            "command": "go",
//	            "args": ["run", "./cmd/draftmcp"],
//	            "cwd": "/path/to/maildraft"
//	        }
//	    }
//	}
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/spetersoncode/maildraft/internal/app"
	"github.com/spetersoncode/maildraft/internal/config"
	"github.com/spetersoncode/maildraft/mcp"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	// stdout carries the protocol; logs go to stderr.
	logger := app.NewLogger(os.Stderr, cfg.Server.LogLevel, cfg.Server.LogFormat)

	a, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	if err := mcp.ServeStdio(a.Service,
		mcp.WithName("maildraft"),
		mcp.WithVersion(version),
		mcp.WithLogger(logger),
	); err != nil {
		logger.Error("mcp server stopped", "error", err)
	}
}
