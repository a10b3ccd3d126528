package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/exec"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/adapters"
	"github.com/brettbedarf/projectfs/config"
	"github.com/brettbedarf/projectfs/export"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/mcpserver"
	"github.com/brettbedarf/projectfs/mount"
	"github.com/brettbedarf/projectfs/server"
	"github.com/brettbedarf/projectfs/store"
	"github.com/brettbedarf/projectfs/turn"
	"github.com/spf13/afero"
)

// sourceFlags selects where a command reads its starting tree from
type sourceFlags struct {
	files   string
	project string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.files, "files", "", "Snapshot to start from: a path, file:// or http(s):// URL")
	fs.StringVar(&s.project, "project", "", "Project id in the configured store")
}

// load returns the snapshot named by the flags; -files wins over -project
func (s *sourceFlags) load(ctx context.Context, cfg *config.Config) (projectfs.Snapshot, error) {
	if s.files != "" {
		return adapters.DefaultRegistry().LoadSnapshot(ctx, s.files)
	}
	if s.project == "" {
		return nil, errors.New("one of -files or -project is required")
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Load(ctx, s.project)
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	logger := util.GetLogger("serve")
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	listen := fs.String("listen", cfg.Listen, "HTTP listen address")
	mnt := fs.String("mount", "", "Also mount the most recently changed tree read-only at this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Listen = *listen

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var opts []turn.Option
	if *mnt != "" {
		view := mount.NewView()
		if err := view.Mount(*mnt, cfg.MountOptions); err != nil {
			return fmt.Errorf("failed to mount %s: %w", *mnt, err)
		}
		defer func() {
			if err := view.Unmount(); err != nil {
				logger.Error().Err(err).Msg("Failed to unmount preview")
			}
		}()
		opts = append(opts, turn.WithObserver(view))
	}

	runner := turn.NewRunner(cfg, st, opts...)
	return server.New(cfg, runner, st).ListenAndServe(ctx)
}

func runMCP(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	project := fs.String("project", "", "Project id to edit; a new one is generated when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := mcpserver.NewSession(ctx, cfg, st, *project)
	if err != nil {
		return err
	}
	return mcpserver.ServeStdio(mcpserver.New(sess, version))
}

func runApply(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	logger := util.GetLogger("apply")
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	var src sourceFlags
	src.register(fs)
	callsRef := fs.String("calls", "", "JSON array of tool calls: a path, file:// or http(s):// URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *callsRef == "" {
		return errors.New("-calls is required")
	}

	reg := adapters.DefaultRegistry()
	calls, err := readCalls(ctx, reg, *callsRef)
	if err != nil {
		return err
	}

	req := turn.Request{ProjectID: src.project, Calls: calls}
	if src.files != "" {
		if req.Files, err = reg.LoadSnapshot(ctx, src.files); err != nil {
			return err
		}
	}

	var st store.Store
	if src.project != "" {
		if st, err = store.Open(ctx, cfg); err != nil {
			return err
		}
		defer st.Close()
	}

	out, err := turn.NewRunner(cfg, st).Run(ctx, req)
	if err != nil {
		return err
	}
	logger.Debug().Str("turn", out.TurnID).Int("results", len(out.Results)).Msg("Turn applied")

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(server.NewTurnResponse(out))
}

func readCalls(ctx context.Context, reg *adapters.Registry, ref string) ([]*projectfs.ToolCall, error) {
	rc, err := reg.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var calls []*projectfs.ToolCall
	if err := json.NewDecoder(rc).Decode(&calls); err != nil {
		return nil, fmt.Errorf("failed to decode tool calls %s: %w", ref, err)
	}
	return calls, nil
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var src sourceFlags
	src.register(fs)
	clean := fs.Bool("clean", false, "Remove the target directory before writing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir := fs.Arg(0)
	if dir == "" {
		return errors.New("target directory not specified; it must be passed as the argument")
	}

	snap, err := src.load(ctx, cfg)
	if err != nil {
		return err
	}
	_, err = export.Export(afero.NewOsFs(), dir, snap, export.Options{Clean: *clean})
	return err
}

func runMount(ctx context.Context, cfg *config.Config, args []string) error {
	logger := util.GetLogger("mount")
	fs := flag.NewFlagSet("mount", flag.ContinueOnError)
	var src sourceFlags
	src.register(fs)
	var umount bool
	fs.BoolVar(&umount, "umount", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	fs.BoolVar(&umount, "u", false, "--umount (shorthand)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mnt := fs.Arg(0)
	if mnt == "" {
		return errors.New("mount point not specified; it must be passed as the argument")
	}
	if umount {
		// not being mounted is fine here
		exec.Command("fusermount", "-u", mnt).Run() // nolint:errcheck
	}

	snap, err := src.load(ctx, cfg)
	if err != nil {
		return err
	}
	view := mount.NewView()
	if err := view.Update(snap); err != nil {
		return err
	}
	if err := view.Mount(mnt, cfg.MountOptions); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info().Str("mountpoint", mnt).Msg("Received signal, unmounting filesystem")
	if err := view.Unmount(); err != nil {
		return err
	}
	logger.Info().Msg("Filesystem unmounted successfully")
	return nil
}
