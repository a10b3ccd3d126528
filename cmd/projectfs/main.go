package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/projectfs/config"
	"github.com/brettbedarf/projectfs/internal/util"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const usage = `Usage: projectfs [-config file] [-v level] <command> [options]

Commands:
  serve    Serve the HTTP API
  mcp      Serve the project tools to an MCP client over stdio
  apply    Run a JSON list of tool calls against a snapshot
  export   Write a project tree to a directory
  mount    Mount a project tree read-only with FUSE
`

func main() {
	var (
		configPath string
		verbose    int
	)
	flag.StringVar(&configPath, "config", "", "Path to a yaml, json or toml config file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.IntVar(&verbose, "verbose", 0, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", 0, "--verbose (shorthand)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(configPath, verbose, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "projectfs: %v\n", err)
		os.Exit(1)
	}
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Cancel on termination so servers shut down and mounts are released
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	name, args := flag.Arg(0), flag.Args()[1:]
	logger.Debug().Str("command", name).Str("provider", cfg.Provider).Int("steps", cfg.StepLimit()).Msg("Starting")
	if err := run(ctx, cfg, name, args, os.Stdout); err != nil {
		logger.Error().Err(err).Str("command", name).Msg("Command failed")
		os.Exit(1)
	}
}

// loadConfig layers defaults, the optional config file, the detected provider
// and the -v flag, in that order.
func loadConfig(path string, verbose int, getenv func(string) string) (*config.Config, error) {
	override := &config.ConfigOverride{}
	if path != "" {
		fileOverride, err := config.LoadConfigOverrideFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		override = fileOverride
	}
	if override.Provider == nil {
		override.Provider = util.Pointer(config.DetectProvider(getenv))
	}
	if verbose > 0 {
		override.LogLvl = &verbose
	}
	return config.NewConfig(override), nil
}

func run(ctx context.Context, cfg *config.Config, name string, args []string, stdout io.Writer) error {
	switch name {
	case "serve":
		return runServe(ctx, cfg, args)
	case "mcp":
		return runMCP(ctx, cfg, args)
	case "apply":
		return runApply(ctx, cfg, args, stdout)
	case "export":
		return runExport(ctx, cfg, args)
	case "mount":
		return runMount(ctx, cfg, args)
	case "version":
		_, err := fmt.Fprintln(stdout, version)
		return err
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}
