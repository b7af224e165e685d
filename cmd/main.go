package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Vovarama1992/homelead-widget/internal/ai"
	"github.com/Vovarama1992/homelead-widget/internal/config"
	"github.com/Vovarama1992/homelead-widget/internal/widget"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	prompts, err := ai.LoadPrompts(cfg.PromptFile)
	if err != nil {
		log.Fatalf("failed to load prompts: %v", err)
	}

	// --- DB (optional transcript) ---
	var transcript widget.Transcript = widget.NopTranscript{}
	if cfg.DatabaseURL != "" {
		db, err := widget.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db error: %v", err)
		}
		defer closeDB(db)
		transcript = widget.NewTranscript(db)
		log.Println("[db] transcript enabled")
	} else {
		log.Println("[db] DATABASE_URL not set, transcript disabled")
	}

	// --- Widget module wiring ---
	registry := widget.NewRegistry(ctx, widget.Options{
		Greeting:   cfg.Greeting,
		Driver:     widget.NewAIDriver(newAI(cfg, prompts)),
		Directory:  newDirectory(cfg),
		Transcript: transcript,
	}, cfg.SessionTTL)
	go registry.RunSweeper(ctx, time.Minute)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Origins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Session-Id"},
		MaxAge:         300,
	}))

	widget.RegisterRoutes(r, widget.NewHandler(registry))

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("listening on %s (driver=%s)", srv.Addr, cfg.Driver)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
	registry.Wait()
}

func newDirectory(cfg config.Config) widget.Directory {
	companies := cfg.CompanyList()
	if len(companies) == 0 {
		return widget.OpenDirectory{}
	}
	log.Printf("[widget] sign-in limited to %d companies", len(companies))
	return widget.NewCompanyDirectory(companies)
}

func newAI(cfg config.Config, prompts ai.PromptSet) ai.AI {
	switch cfg.Driver {
	case config.DriverOpenAI:
		return ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, prompts)
	case config.DriverHTTP:
		return ai.NewAssistantClient(cfg.AssistantURL, cfg.AssistantToken)
	default:
		return ai.NewCannedClient(prompts, cfg.ReplyDelay)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Printf("[db] close error: %v", err)
	}
}
