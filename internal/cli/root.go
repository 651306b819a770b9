// Package cli wires the client together behind a cobra command and runs
// the interactive chat loop. Everything here is a presentational shell
// around the orchestrator; no conversation state lives in this package.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glokal-ai/docchat/internal/api"
	"github.com/glokal-ai/docchat/internal/config"
	"github.com/glokal-ai/docchat/internal/service"
	"github.com/glokal-ai/docchat/pkg/logger"
	"github.com/glokal-ai/docchat/pkg/tracing"
)

var backendURL string

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents from the terminal",
	Long: `An interactive client for the document chat backend.

Attach documents or web pages to a session, then ask questions about
them. Bot responses can be regenerated (up to 3 alternatives each) and
browsed with /prev and /next.

Type /help inside the session for the command list.`,
	RunE: run,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides BACKEND_URL)")
	rootCmd.SilenceUsage = true
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "docchat", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	if cfg.DebugAddr != "" {
		go serveDebug(cfg.DebugAddr, log)
	}

	client := api.New(cfg.BackendURL, cfg.HTTPTimeout, log)
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("backend is unreachable at %s: %w", cfg.BackendURL, err)
	}

	// One buffered reader over stdin, shared by the loop and the
	// confirmation prompts.
	stdin := bufio.NewReader(os.Stdin)

	orch := service.New(client, newStdinConfirmer(stdin), cfg.RefreshDelay, log)
	orch.RefreshSessions(ctx)
	if _, err := orch.CreateSession(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	repl := newREPL(orch, log, stdin)
	err = repl.Run(ctx)
	orch.Wait()
	return err
}

// serveDebug exposes metrics and liveness on a side listener.
func serveDebug(addr string, log *logger.Logger) {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	log.Info("debug listener started", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Warn("debug listener stopped", zap.Error(err))
	}
}
