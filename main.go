package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tailplane/api"
	"tailplane/config"
	"tailplane/logger"
	"tailplane/storage"
	"tailplane/watcher"
)

var appVersion = "0.1.0"

// errSilent marks failures that were already reported to the user.
var errSilent = errors.New("command failed")

func newRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "tailplane",
		Short:         "tailplane – Tailwind configuration loader and server",
		Long:          "Tailplane validates, merges and serves Tailwind-style configuration documents.",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newValidateCmd(),
		newShowCmd(),
		newMergeCmd(),
		newMatchCmd(),
		newPresetsCmd(),
		newConfigCmd(),
		newServeCmd(&debug),
	)

	return rootCmd
}

type serveOptions struct {
	configs  []string
	listen   string
	dataDir  string
	interval time.Duration
	strict   bool
}

func newServeCmd(debug *bool) *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configuration over HTTP",
		Long:  "Load the configuration layers, reload them periodically and serve them over HTTP and websocket.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, logger.Setup(*debug))
		},
	}

	cmd.Flags().StringSliceVar(&opts.configs, "config", nil, "Configuration files, merged left to right (default: discovered in the current directory)")
	cmd.Flags().StringVar(&opts.listen, "listen", envOr("TAILPLANE_LISTEN", ":8080"), "Address to listen on")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", envOr("TAILPLANE_DATA_DIR", "."), "Directory for configuration snapshots")
	cmd.Flags().DurationVar(&opts.interval, "interval", watcher.DefaultInterval, "Reload interval")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Reject color values that are not valid CSS colors")

	return cmd
}

func runServe(ctx context.Context, opts serveOptions, log zerolog.Logger) error {
	paths, err := configPaths(opts.configs)
	if err != nil {
		return err
	}

	dataDirAbs, err := filepath.Abs(opts.dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	store := storage.New(dataDirAbs)
	if err := store.EnsureDirs(); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	var loadOpts []config.Option
	if opts.strict {
		loadOpts = append(loadOpts, config.WithStrictColors())
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w := watcher.New(watcher.FileLoader(paths, loadOpts...), opts.interval, log)
	apiServer := api.NewServer(w, store, paths, log)

	if _, err := w.Reload(ctx); err != nil {
		return err
	}
	w.Start(ctx)

	mux := http.NewServeMux()
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:              opts.listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printListeningAddresses(log, opts.listen)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	return nil
}

func printListeningAddresses(log zerolog.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.Info().Msgf("listening on http://%s", addr)
		return
	}

	if host != "" && host != "0.0.0.0" && host != "::" {
		log.Info().Msgf("listening on http://%s:%s", host, port)
		return
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		log.Info().Msgf("listening on http://0.0.0.0:%s", port)
		return
	}

	urls := []string{}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			urls = append(urls, fmt.Sprintf("http://%s:%s", ipnet.IP.String(), port))
		}
	}
	urls = append(urls, fmt.Sprintf("http://localhost:%s", port))
	log.Info().Strs("urls", urls).Msg("listening")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "%s %v\n", failure("error:"), err)
		}
		os.Exit(1)
	}
}
