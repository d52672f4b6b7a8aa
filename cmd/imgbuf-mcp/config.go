package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// config holds the command line settings of the server.
type config struct {
	LogLevel    slog.Level
	ImagesBase  string
	JPEGQuality int
	AutoOrient  bool
	ShowVersion bool
	ShowHelp    bool
}

// loadConfig parses args. Unset flags fall back to the IMAGE_MCP_*
// environment variables read through getenv.
func loadConfig(args []string, getenv func(string) string, usage io.Writer) (*config, *pflag.FlagSet, error) {
	var (
		cfg      config
		logLevel string
	)

	flagSet := pflag.NewFlagSet("imgbuf-mcp", pflag.ContinueOnError)
	flagSet.SetOutput(usage)
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (env IMAGE_MCP_LOG_LEVEL)")
	flagSet.StringVar(&cfg.ImagesBase, "images-base", "", "directory relative image paths resolve against (env IMAGE_MCP_IMAGES_BASE)")
	flagSet.IntVar(&cfg.JPEGQuality, "jpeg-quality", 95, "JPEG encoding quality, 1-100")
	flagSet.BoolVar(&cfg.AutoOrient, "auto-orient", true, "apply EXIF orientation when decoding")
	flagSet.BoolVarP(&cfg.ShowVersion, "version", "v", false, "print version information")
	flagSet.BoolVarP(&cfg.ShowHelp, "help", "h", false, "print this help message")

	if err := flagSet.Parse(args); err != nil {
		return nil, flagSet, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, flagSet, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if logLevel == "" {
		logLevel = getenv("IMAGE_MCP_LOG_LEVEL")
	}
	if logLevel == "" {
		logLevel = "info"
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return nil, flagSet, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}

	if cfg.ImagesBase == "" {
		cfg.ImagesBase = getenv("IMAGE_MCP_IMAGES_BASE")
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, flagSet, fmt.Errorf("--jpeg-quality must be between 1 and 100, got %d", cfg.JPEGQuality)
	}
	return &cfg, flagSet, nil
}
