package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	httpadapter "gestio/internal/adapters/http"
	pg "gestio/internal/adapters/postgres"
	"gestio/internal/config"
	ports "gestio/internal/ports"
	docsvc "gestio/internal/services/documents"
	exportsvc "gestio/internal/services/exports"
	specsvc "gestio/internal/services/specs"
	exportworker "gestio/internal/workers/exportrunner"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("warning: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	// Wire repositories to services (ports)
	var _ ports.SpecificationRepository = db
	var _ ports.FeatureRepository = db
	var _ ports.DocumentRepository = db
	var _ ports.JobRepository = db

	clock := clockwork.NewRealClock()
	specs := specsvc.New(db, db)
	documents := docsvc.New(db, clock)
	exports := exportsvc.New(db)

	srv := httpadapter.New(specs, documents, exports, clock)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Background export workers hand view models to the renderer. The
	// no-op renderer stands in until a real PDF backend is attached.
	processor := exportworker.ViewProcessor{
		Docs:     db,
		Specs:    db,
		Features: db,
		Renderer: exportworker.NoopRenderer{},
		Clock:    clock,
	}
	if cfg.ExportWorkers > 0 {
		go exportworker.Run(ctx, db, processor, cfg.ExportWorkers, 500*time.Millisecond)
		log.Printf("export workers started: %d", cfg.ExportWorkers)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Printf("listening on %s", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("shutting down on %s", sig)
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal(fmt.Errorf("server error: %w", err))
	}
}
