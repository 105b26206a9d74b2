package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jopamo/hxm/cmd/hxm/commands"
	"github.com/jopamo/hxm/internal/config"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/wm"
	"github.com/jopamo/hxm/internal/xproto"
	"github.com/jopamo/hxm/logger"
)

var (
	flagExit        bool
	flagRestart     bool
	flagReconfigure bool
	flagDumpStats   bool
	verbosity       int
)

// Connect establishes the live XCB connection this repo treats as an
// external collaborator (see internal/xproto's package doc): the
// Transport interface is this repo's whole contract with the wire
// protocol, and a concrete implementation is supplied by whatever
// binds libxcb, not by this package. Production builds replace this
// var at link time or via a build-tag file; it is nil here on purpose.
var Connect func() (xproto.Transport, *xproto.Table, xproto.WindowID, primitives.Rect, error)

var rootCmd = &cobra.Command{
	Use:   "hxm",
	Short: "hxm - a stacking X11 window manager",
	Long: `hxm manages X11 client windows: substructure redirect, EWMH/ICCCM
compliance, stacking layers, and focus history, driven by a single-threaded
cooperative tick loop.

A second invocation while hxm is already running dispatches a signal to it
instead of starting a new instance:

  hxm --exit          request graceful shutdown (SIGTERM)
  hxm --restart        request self-exec restart, preserving desktop/focus state (SIGUSR2)
  hxm --reconfigure    request a config reload (SIGHUP)
  hxm --dump-stats     request a diagnostics snapshot on the running instance's stdout (SIGUSR1)`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase output verbosity (repeat for more detail)")
	rootCmd.Flags().BoolVar(&flagExit, "exit", false, "request the running instance shut down gracefully")
	rootCmd.Flags().BoolVar(&flagRestart, "restart", false, "request the running instance restart, preserving desktop/focus state")
	rootCmd.Flags().BoolVar(&flagReconfigure, "reconfigure", false, "request the running instance reload its configuration")
	rootCmd.Flags().BoolVar(&flagDumpStats, "dump-stats", false, "request the running instance print a diagnostics snapshot")
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(os.Stderr, "usage:", c.UseLine())
		return err
	})
}

func run(cmd *cobra.Command, args []string) error {
	if err := logger.Initialize(false); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	switch {
	case flagExit:
		return commands.SignalRunningInstance(syscall.SIGTERM)
	case flagRestart:
		return commands.SignalRunningInstance(syscall.SIGUSR2)
	case flagReconfigure:
		return commands.SignalRunningInstance(syscall.SIGHUP)
	case flagDumpStats:
		return commands.SignalRunningInstance(syscall.SIGUSR1)
	}

	return startServer()
}

func startServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if Connect == nil {
		return fmt.Errorf("no XCB transport wired into this build (cmd/hxm.Connect is unset)")
	}
	transport, atoms, root, screen, err := Connect()
	if err != nil {
		return fmt.Errorf("connecting to X server: %w", err)
	}

	commands.PrintStartupBanner(verbosity, config.ActivePath())

	if err := commands.WritePIDFile(); err != nil {
		logger.TickWarnw("failed to write pid file, --exit/--restart/--reconfigure/--dump-stats from another invocation won't find this process", "error", err)
	}
	defer commands.RemovePIDFile()

	server := wm.New(cfg, wm.Deps{
		Transport:     transport,
		Atoms:         atoms,
		Root:          root,
		InitialScreen: screen,
	})

	if err := server.Run(); err != nil {
		return err
	}

	if server.Signals().TakeRestartRequested() {
		logger.TickInfow("restart requested, re-executing")
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolving executable for restart: %w", err)
		}
		return syscall.Exec(exe, os.Args, os.Environ())
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
