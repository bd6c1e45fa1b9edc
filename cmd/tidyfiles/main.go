// Package main provides the CLI entry point for tidyfiles.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AntoineGS/tidyfiles/internal/catalog"
	"github.com/AntoineGS/tidyfiles/internal/config"
	"github.com/AntoineGS/tidyfiles/internal/notify"
	"github.com/AntoineGS/tidyfiles/internal/page"
	"github.com/AntoineGS/tidyfiles/internal/state"
	"github.com/AntoineGS/tidyfiles/internal/tui"
	"github.com/AntoineGS/tidyfiles/internal/web"
)

var version = "dev"

var (
	configFile   string
	verbose      bool
	historyLimit int
	logFile      *os.File
)

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"catalog": "catalog.path",
	"delay":   "catalog.delay",
	"history": "history.path",
	"addr":    "web.addr",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tidyfiles",
		Version: version,
		Short:   "Select device files and request their download",
		Long: `tidyfiles lists the files reported by your devices and lets you select
the available ones and request their download.

Settings are read from ~/.config/tidyfiles/config.yaml when present,
TIDYFILES_* environment variables and flags.

Run without arguments to start the interactive table.`,
		SilenceUsage: true,
		RunE:         runInteractive,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !verbose {
				return nil
			}

			var logWriter io.Writer = os.Stderr
			// The TUI owns the terminal, so logs go to a file.
			if cmd.Parent() == nil && tui.IsTerminal() {
				logPath := filepath.Join(os.TempDir(), "tidyfiles.log")
				f, err := os.Create(logPath) //nolint:gosec // fixed name under the temp dir
				if err == nil {
					logFile = f
					logWriter = f
					fmt.Fprintf(os.Stderr, "Verbose logs: %s\n", logPath)
				}
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logFile != nil {
				_ = logFile.Close()
				logFile = nil
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ~/.config/tidyfiles/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("catalog", "", "YAML catalog of files (default built-in sample)")
	rootCmd.PersistentFlags().Duration("delay", 0, "Simulated fetch latency")
	rootCmd.PersistentFlags().String("history", "", "Download history database")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the file table",
		Long:  `Fetch the catalog once and print it as a static table.`,
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the file table as a web page",
		Long:  `Serve the file table page at / until interrupted.`,
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8080)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent download requests",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of requests to show")

	rootCmd.AddCommand(listCmd, serveCmd, historyCmd)

	return rootCmd
}

// loadConfig layers the config file, environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := make(map[string]*pflag.Flag, len(flagKeys))
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags[key] = f
		}
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return config.Config{}, err
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// newSource builds the catalog source described by cfg.
func newSource(cfg config.Config) catalog.Source {
	var src catalog.Source = catalog.Static{Files: catalog.Sample()}
	if cfg.Catalog.Path != "" {
		src = catalog.YAMLFile{Path: cfg.Catalog.Path}
	}

	if cfg.Catalog.Delay > 0 {
		src = catalog.Delayed{Source: src, Delay: cfg.Catalog.Delay}
	}

	return src
}

// openHistory opens and prunes the history store, or returns nil when
// history is disabled.
func openHistory(ctx context.Context, cfg config.Config, logger *slog.Logger) (*state.Store, error) {
	if cfg.History.Path == "" {
		return nil, nil
	}

	store, err := state.Open(cfg.History.Path)
	if err != nil {
		return nil, err
	}

	if cfg.History.Keep > 0 {
		if err := store.PruneHistory(ctx, cfg.History.Keep); err != nil {
			logger.Warn("pruning download history", slog.String("error", err.Error()))
		}
	}

	return store, nil
}

// newDispatcher wires the confirmation notifiers and the history store.
// Confirmations are always logged; extra notifiers receive them as well.
func newDispatcher(cfg config.Config, store *state.Store, logger *slog.Logger, extra ...notify.Notifier) *notify.Dispatcher {
	var history notify.HistoryRecorder
	if store != nil {
		history = store
	}

	var notifier notify.Notifier = notify.LogNotifier{Logger: logger}
	if len(extra) > 0 {
		notifier = append(notify.Multi{notifier}, extra...)
	}

	formatter := notify.NewFormatter(cfg.Download.Message, logger)

	return notify.NewDispatcher(notifier, history, formatter, logger)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !tui.IsTerminal() {
		return fmt.Errorf("interactive mode requires a terminal; use subcommands (list, serve) for non-interactive use")
	}

	// Info logs would draw over the table.
	logger := slog.Default()
	if logFile == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openHistory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close() //nolint:errcheck // best-effort cleanup
	}

	return tui.Run(tui.Options{
		Context:    ctx,
		Source:     newSource(cfg),
		Dispatcher: newDispatcher(cfg, store, logger),
		Logger:     logger,
		AriaLabel:  cfg.UI.AriaLabel,
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, _ := page.Mount(cfg.UI.AriaLabel)

	res, err := newSource(cfg).Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}

	s, _ = page.Reduce(s, page.FetchResolved{Result: res})

	summary, err := tui.Summary(s)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summary)
	fmt.Fprintf(out, "%d files, %d available\n", s.TotalRows, len(s.Props().SelectableKeys()))

	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger := slog.Default()

	store, err := openHistory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close() //nolint:errcheck // best-effort cleanup
	}

	handler, err := web.NewServer(web.Options{
		Context:    ctx,
		Source:     newSource(cfg),
		Dispatcher: newDispatcher(cfg, store, logger, notify.NewWriter(cmd.OutOrStdout())),
		Logger:     logger,
		AriaLabel:  cfg.UI.AriaLabel,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Web.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Web.Addr, err)
	}

	return serve(ctx, ln, handler, cmd.OutOrStdout(), logger)
}

// serve runs handler on ln until ctx is canceled.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, out io.Writer, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	fmt.Fprintf(out, "Serving files at http://%s/\n", ln.Addr())
	logger.Info("web server started", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info("web server stopped")

	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if cfg.History.Path == "" {
		fmt.Fprintln(out, "Download history is disabled")
		return nil
	}

	store, err := state.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // best-effort cleanup

	records, err := store.RecentDownloads(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No downloads requested yet")
		return nil
	}

	for _, r := range records {
		names := make([]string, len(r.Files))
		for i, f := range r.Files {
			names[i] = f.Name
		}

		fmt.Fprintf(out, "%s  %s  %d file(s): %s\n",
			r.RequestedAt.Local().Format(time.DateTime), r.RequestID, len(r.Files), strings.Join(names, ", "))
	}

	return nil
}
