package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/ironsheep/image-buffer-mcp/internal/imaging"
	"github.com/ironsheep/image-buffer-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, flagSet, err := loadConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if cfg.ShowVersion {
		fmt.Printf("imgbuf-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return nil
	}
	if cfg.ShowHelp {
		printHelp(flagSet)
		return nil
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if cfg.ImagesBase != "" {
		imaging.SetImagesPathBase(cfg.ImagesBase)
	}
	codec := &imaging.FileCodec{AutoOrient: cfg.AutoOrient, JPEGQuality: cfg.JPEGQuality}
	imaging.SetDefaultCodec(codec)

	logger.Debug("starting image buffer MCP server",
		"version", Version, "build_time", BuildTime, "commit", GitCommit,
		"images_base", imaging.ImagesPathBase())

	srv := server.NewWithOptions(server.Options{
		Codec:   codec,
		Logger:  logger,
		Version: Version,
	})
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Println("imgbuf-mcp - MCP server for shared, lazily loaded image buffers")
	fmt.Println()
	fmt.Println("Usage: imgbuf-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Print(flagSet.FlagUsages())
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
