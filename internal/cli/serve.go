package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stv/internal/server"
	"github.com/roach88/stv/internal/store"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tally HTTP API",
		Long: `Serve the tally engine over HTTP.

Routes:
  POST /tallies              count an election posted as JSON
  GET  /tallies              list stored tallies
  GET  /tallies/{id}         fetch a stored tally
  GET  /tallies/{id}/rounds  fetch a stored tally's rounds
  GET  /healthz              liveness
  GET  /metrics              Prometheus metrics

Without --db, tallies are counted but not stored and the read routes
answer 503.

Examples:
  stv serve --addr :8080 --db ./stv.db
  STV_ADDR=127.0.0.1:9000 stv serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Addr = stringFromEnv(cmd, "addr", EnvAddr)
			opts.Database = stringFromEnv(cmd, "db", EnvDB)
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address (env "+EnvAddr+")")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (env "+EnvDB+")")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	serverOpts := []server.Option{server.WithLogger(logger)}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err)
		}
		defer st.Close()
		serverOpts = append(serverOpts, server.WithStore(st))
	}

	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	return serve(ctx, listener, server.New(serverOpts...), formatter)
}

// serve runs handler on listener until ctx is cancelled, then drains
// in-flight requests.
func serve(ctx context.Context, listener net.Listener, handler http.Handler, formatter *OutputFormatter) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	fmt.Fprintf(formatter.GetErrWriter(), "Listening on %s\n", listener.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	return nil
}
