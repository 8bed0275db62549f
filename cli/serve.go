package cli

import (
	"context"
	"errors"
	"fmt"
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
	otelapi "go.opentelemetry.io/otel"

	"github.com/lumen-labs/lumenplug"
	"github.com/lumen-labs/lumenplug/builtins"
	"github.com/lumen-labs/lumenplug/host"
	"github.com/lumen-labs/lumenplug/journal"
	lumenotel "github.com/lumen-labs/lumenplug/otel"
	"github.com/lumen-labs/lumenplug/server"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the contribution HTTP server",
		RunE:  runServe,
	}

	cmd.Flags().IntP("port", "p", 8080, "Listen port")
	cmd.Flags().String("host", "0.0.0.0", "Listen host")
	cmd.Flags().String("cors-origin", "*", "Allowed CORS origin")
	cmd.Flags().String("config", "", "Path to lumenplug.yaml host config")
	cmd.Flags().Bool("no-builtins", false, "Skip the built-in plugin")
	cmd.Flags().String("sqlite-path", "", "Path to SQLite journal (default: ~/.lumenplug/journal.db)")
	cmd.Flags().Duration("journal-retention-age", 7*24*time.Hour, "Drop journal entries older than this (0 disables)")
	cmd.Flags().Int("journal-retention-count", 1000, "Keep at most this many entries per contribution (0 disables)")
	cmd.Flags().String("journal-prune-schedule", "", "UTC cron expression for journal pruning (default: hourly interval)")
	cmd.Flags().String("otlp-endpoint", "", "OTLP/HTTP trace endpoint (empty disables tracing)")
	cmd.Flags().String("tls-cert", "", "TLS certificate file")
	cmd.Flags().String("tls-key", "", "TLS key file")
	cmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 60*time.Second, "HTTP write timeout")
	cmd.Flags().Int64("max-body", 1<<20, "Max request body size in bytes")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	listenHost, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	corsOrigin, _ := cmd.Flags().GetString("cors-origin")
	explicitConfigPath, _ := cmd.Flags().GetString("config")
	noBuiltins, _ := cmd.Flags().GetBool("no-builtins")
	retentionAge, _ := cmd.Flags().GetDuration("journal-retention-age")
	retentionCount, _ := cmd.Flags().GetInt("journal-retention-count")
	pruneSchedule, _ := cmd.Flags().GetString("journal-prune-schedule")
	otlpEndpoint, _ := cmd.Flags().GetString("otlp-endpoint")
	tlsCert, _ := cmd.Flags().GetString("tls-cert")
	tlsKey, _ := cmd.Flags().GetString("tls-key")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")
	maxBody, _ := cmd.Flags().GetInt64("max-body")

	logger := slog.Default()

	// --- Journal store ---
	dsn, err := resolveJournalDSN(cmd)
	if err != nil {
		return err
	}
	store, err := journal.NewSQLiteStore(journal.SQLiteStoreConfig{
		DSN:            dsn,
		RetentionAge:   retentionAge,
		RetentionCount: retentionCount,
		PruneSchedule:  pruneSchedule,
	})
	if err != nil {
		return fmt.Errorf("opening sqlite journal: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()
	recorder := journal.NewRecorder(store)

	// --- Event handlers (tracing first, then enriched sinks) ---
	var handlers []lumenplug.EventHandler
	if otlpEndpoint != "" {
		tp, err := lumenotel.InitTracer(cmd.Context(), "lumenplug", otlpEndpoint)
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()

		tracing := lumenotel.NewTracingHandler(tp.Tracer("lumenplug/registry"))
		handlers = append(handlers, tracing, lumenotel.EnrichHandler(recorder, tracing))
	} else {
		handlers = append(handlers, recorder)
	}

	metrics, err := lumenotel.NewMetricsHandler(otelapi.GetMeterProvider().Meter("lumenplug/registry"))
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	handlers = append(handlers, metrics)

	opts := []lumenplug.Option{lumenplug.WithLogger(logger)}
	for _, h := range handlers {
		opts = append(opts, lumenplug.WithEventHandler(h))
	}

	// --- Plugin catalog ---
	catalog := host.NewCatalog()
	if !noBuiltins {
		builtinReg, err := builtins.NewRegistry(opts...)
		if err != nil {
			return fmt.Errorf("registering built-in plugin: %w", err)
		}
		if err := catalog.Add(builtinReg); err != nil {
			return err
		}
	}

	configPath, found, err := host.DiscoverConfigPath(explicitConfigPath)
	if err != nil {
		return err
	}
	if found {
		loaded, err := host.LoadCatalog(configPath, opts...)
		if err != nil {
			return exitError(exitValidation, "loading host config: %v", err)
		}
		for _, info := range loaded.Plugins() {
			reg, _ := loaded.Plugin(info.Name)
			if err := catalog.Add(reg); err != nil {
				return exitError(exitValidation, "%v", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d plugin(s) from %s\n", len(loaded.Plugins()), configPath)
	}

	// --- HTTP server ---
	apiServer := server.NewServer(server.ServerConfig{
		Catalog:    catalog,
		Journal:    store,
		CORSOrigin: corsOrigin,
		MaxBody:    maxBody,
		Logger:     logger,
	})

	addr := net.JoinHostPort(listenHost, fmt.Sprintf("%d", port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	// Signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "LumenPlug contribution server listening on %s\n", addr)
		if tlsCert != "" && tlsKey != "" {
			errCh <- httpServer.ListenAndServeTLS(tlsCert, tlsKey)
		} else {
			errCh <- httpServer.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown error: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}

func resolveJournalDSN(cmd *cobra.Command) (string, error) {
	sqlitePath, _ := cmd.Flags().GetString("sqlite-path")
	dsn := strings.TrimSpace(sqlitePath)
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("LUMENPLUG_SQLITE_PATH"))
	}
	if dsn == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving default journal path: %w", err)
		}
		dir := filepath.Join(home, ".lumenplug")
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("creating journal directory: %w", err)
		}
		dsn = filepath.Join(dir, "journal.db")
	}
	if !strings.HasPrefix(strings.ToLower(dsn), "file:") {
		dsn = filepath.Clean(dsn)
	}
	return dsn, nil
}
