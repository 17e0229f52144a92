package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/steadysync/tempo/internal/config"
	"github.com/steadysync/tempo/internal/engine"
	"github.com/steadysync/tempo/internal/interrupt"
	"github.com/steadysync/tempo/internal/stats"
	"github.com/steadysync/tempo/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// sizeFlag parses human-readable byte sizes ("32KiB", "100M", "1G") into
// an int64.
type sizeFlag struct {
	n *int64
}

var _ pflag.Value = (*sizeFlag)(nil)

func (f *sizeFlag) String() string {
	if f.n == nil || *f.n == 0 {
		return ""
	}
	return humanize.IBytes(uint64(*f.n))
}

func (*sizeFlag) Type() string { return "size" }

func (f *sizeFlag) Set(val string) error {
	u, err := humanize.ParseBytes(val)
	if err != nil {
		return err
	}
	*f.n = int64(u)
	return nil
}

//nolint:gocyclo // main CLI entry point orchestrates flag parsing and mode selection
func run() int {
	var (
		moveFlag     bool
		mirrorFlag   bool
		syncFlag     bool
		faster       bool
		testRun      bool
		strongVerify bool
		chunkSize    int64
		bwLimit      int64
		restFiles    int
		restSeconds  int
		noInput      bool
		strictExit   bool
		verbose      bool
		quiet        bool
		showVersion  bool
	)

	rootCmd := &cobra.Command{
		Use:   "tempo [flags] <source> [<destination>]",
		Short: "Gentle file synchronizer with adaptive pacing and streaming verification",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "tempo %s\n", version)
				return nil
			}

			src := args[0]
			dst := ""
			if len(args) == 2 {
				dst = args[1]
			}

			mode := engine.ModeCopy
			switch {
			case moveFlag:
				mode = engine.ModeMove
			case mirrorFlag:
				mode = engine.ModeMirror
			case syncFlag:
				mode = engine.ModeSync
			}

			// Load optional config file and environment defaults.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			if err := applyConfigDefaults(cmd, cfg.Defaults,
				&chunkSize, &bwLimit, &faster, &strongVerify, &restFiles, &restSeconds,
			); err != nil {
				return err
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if quiet {
				logLevel = slog.LevelError
			}
			logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      logLevel,
				TimeFormat: time.Kitchen,
			}))
			slog.SetDefault(logger)

			if testRun {
				slog.Info("test run mode: no files will be written or deleted")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Keyboard control needs an interactive terminal in cbreak mode.
			var poller interrupt.Poller
			if !noInput && ui.IsTTY(os.Stdin.Fd()) {
				restore, err := interrupt.EnableCBreak(int(os.Stdin.Fd()))
				if err != nil {
					slog.Warn("keyboard control unavailable", "error", err)
				} else {
					defer restore()
					poller = interrupt.NewStdinPoller(os.Stdin)
				}
			}

			printerOpts := ui.Options{Quiet: quiet, Verbose: verbose}
			if ui.IsTTY(os.Stdout.Fd()) {
				printerOpts.MaxWidth = ui.TermWidth(os.Stdout.Fd())
			}
			printer := ui.NewPrinter(os.Stdout, printerOpts)

			collector := stats.NewCollector()

			slog.Debug("starting sync",
				"mode", mode,
				"src", src,
				"dst", dst,
				"chunk_size", chunkSize,
				"faster", faster,
				"test_run", testRun,
			)

			result := engine.Run(ctx, engine.Config{
				Mode:          mode,
				Src:           src,
				Dst:           dst,
				ChunkSize:     int(chunkSize),
				Faster:        faster,
				TestRun:       testRun,
				StrongVerify:  strongVerify,
				BWLimit:       bwLimit,
				RestFileCount: restFiles,
				RestFilePause: time.Duration(restSeconds) * time.Second,
				Keys:          poller,
				Report:        printer,
				Stats:         collector,
			})
			stop()

			if !quiet {
				fmt.Fprintln(os.Stdout, ui.Summary(result.Stats))
			}

			if result.Err != nil {
				if errors.Is(result.Err, interrupt.ErrCancelled) {
					fmt.Fprintln(os.Stderr, "terminated by the user")
				} else {
					slog.Error("sync failed", "error", result.Err)
				}
				if strictExit {
					if errors.Is(result.Err, engine.ErrUsage) {
						return &exitError{code: 2}
					}
					return &exitError{code: 1}
				}
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	rootCmd.Flags().BoolVar(&moveFlag, "move", false, "delete each source file after it is copied and verified")
	rootCmd.Flags().BoolVar(&mirrorFlag, "mirror", false, "also delete destination files absent from the source")
	rootCmd.Flags().BoolVar(&syncFlag, "sync", false, "bidirectional sync (reserved, not implemented)")
	rootCmd.Flags().BoolVarP(&faster, "faster", "f", false, "disable adaptive pacing and rest pauses")
	rootCmd.Flags().BoolVarP(&testRun, "test-run", "t", false, "log every decision without writing or deleting anything")
	rootCmd.Flags().BoolVar(&strongVerify, "strong-verify", false, "verify with BLAKE3 instead of the rotating checksum")
	rootCmd.Flags().Var(&sizeFlag{n: &chunkSize}, "chunk-size", "transfer chunk size (default 32KiB)")
	rootCmd.Flags().Var(&sizeFlag{n: &bwLimit}, "bwlimit", "bandwidth limit (e.g. 100M, 1G)")
	rootCmd.Flags().IntVar(&restFiles, "rest-files", 0, "files between rest pauses (default 50)")
	rootCmd.Flags().IntVar(&restSeconds, "rest-seconds", 0, "length of the file-count rest in seconds (default 10)")
	rootCmd.Flags().BoolVar(&noInput, "no-input", false, "disable keyboard control")
	rootCmd.Flags().BoolVar(&strictExit, "strict-exit", false, "exit non-zero when the run fails")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.MarkFlagsMutuallyExclusive("move", "mirror", "sync")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		// Argument and flag errors get the same exit policy as run
		// failures: a printed diagnostic, status 0 unless --strict-exit.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if strictExit {
			return 2
		}
	}
	return 0
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	chunkSize *int64,
	bwLimit *int64,
	faster *bool,
	strongVerify *bool,
	restFiles *int,
	restSeconds *int,
) error {
	if !cmd.Flags().Changed("chunk-size") && defaults.ChunkSize != nil {
		u, err := humanize.ParseBytes(*defaults.ChunkSize)
		if err != nil {
			return fmt.Errorf("invalid chunk_size in config: %w", err)
		}
		*chunkSize = int64(u)
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		u, err := humanize.ParseBytes(*defaults.BWLimit)
		if err != nil {
			return fmt.Errorf("invalid bwlimit in config: %w", err)
		}
		*bwLimit = int64(u)
	}
	if !cmd.Flags().Changed("faster") && defaults.Faster != nil {
		*faster = *defaults.Faster
	}
	if !cmd.Flags().Changed("strong-verify") && defaults.StrongVerify != nil {
		*strongVerify = *defaults.StrongVerify
	}
	if !cmd.Flags().Changed("rest-files") && defaults.RestFiles != nil {
		*restFiles = *defaults.RestFiles
	}
	if !cmd.Flags().Changed("rest-seconds") && defaults.RestSeconds != nil {
		*restSeconds = *defaults.RestSeconds
	}
	return nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
