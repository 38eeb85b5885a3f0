package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/lessonplan/internal/api"
	"github.com/dgallion1/lessonplan/internal/auth"
	"github.com/dgallion1/lessonplan/internal/config"
	"github.com/dgallion1/lessonplan/internal/docexport"
	"github.com/dgallion1/lessonplan/internal/generate"
	"github.com/dgallion1/lessonplan/internal/pipeline"
	"github.com/dgallion1/lessonplan/internal/store"
	_ "go.uber.org/automaxprocs"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	client, err := generate.New(generate.Settings{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
		BaseURL:  cfg.AIBaseURL,
		Timeout:  cfg.AITimeout,
	})
	if err != nil {
		log.Error("init text generation client", "error", err)
		os.Exit(1)
	}
	gen := generate.NewService(client, generate.NewLLMStats(time.Hour))

	plans, closeStore, err := openStore(cfg)
	if err != nil {
		log.Error("open plan store", "error", err)
		os.Exit(1)
	}

	vocab, err := docexport.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		log.Error("load speaker vocabulary", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, gen, plans, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, gen, plans, newVerifier(cfg), docexport.NewConverter(vocab), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting lessonplan",
		"port", cfg.Port,
		"provider", cfg.AIProvider,
		"model", gen.Model(),
		"store", cfg.StoreDriver,
		"auth", cfg.AuthMode,
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	err = serve(sigCtx, httpServer, log, func() {
		orch.Stop()
		if err := closeStore(); err != nil {
			log.Warn("close plan store", "error", err)
		}
	})
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// serve runs srv until ctx is done, then shuts it down and runs cleanup. It
// returns only after cleanup has finished.
func serve(ctx context.Context, srv *http.Server, log *slog.Logger, cleanup func()) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			cleanup()
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	cleanup()
	return nil
}

// newLogger writes JSON logs to stdout and, when path is set, to a rotated
// file as well.
func newLogger(path string) *slog.Logger {
	var out io.Writer = os.Stdout
	if path != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(out, nil))
}

func openStore(cfg config.Config) (store.Store, func() error, error) {
	if cfg.StoreDriver == "supabase" {
		return store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseAnonKey), func() error { return nil }, nil
	}
	s, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func newVerifier(cfg config.Config) auth.Verifier {
	if cfg.AuthMode == "supabase" {
		return auth.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.AuthCacheTTL)
	}
	return auth.StaticVerifier{APIKey: cfg.StaticAPIKey}
}
