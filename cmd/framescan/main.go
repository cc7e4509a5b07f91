// Command framescan runs the photo-print boundary detection engine as an MCP
// server over stdin/stdout. Logging goes to stderr; stdout carries only the
// JSON-RPC protocol.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/framescan/framescan/internal/config"
	"github.com/framescan/framescan/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("framescan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("framescan - MCP server for photo print boundary detection")
			fmt.Println()
			fmt.Println("Usage: framescan [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --config <path>  Load settings from a TOML file")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  FRAMESCAN_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		case "--config":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "--config requires a file path")
				os.Exit(2)
			}
			configPath = os.Args[2]
		}
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "framescan: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	log := newLogger(cfg.Log)
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("starting framescan MCP server")

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

// newLogger configures the process logger. Output goes to stderr because
// stdout belongs to the MCP protocol. The FRAMESCAN_LOG_LEVEL environment
// variable overrides the configured level.
func newLogger(cfg config.Log) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	levelName := cfg.Level
	if env := os.Getenv("FRAMESCAN_LOG_LEVEL"); env != "" {
		levelName = env
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
