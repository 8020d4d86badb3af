package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	assessmentapi "github.com/hcid-network/platform/internal/assessment/api"
	"github.com/hcid-network/platform/internal/assessment/domain"
	"github.com/hcid-network/platform/internal/assessment/infrastructure"
	"github.com/hcid-network/platform/internal/audit"
	"github.com/hcid-network/platform/internal/hepb"
	"github.com/hcid-network/platform/internal/risktable"
	"github.com/hcid-network/platform/internal/risktable/registry"
	"github.com/hcid-network/platform/internal/shared/auth"
	"github.com/hcid-network/platform/internal/shared/config"
	"github.com/hcid-network/platform/internal/shared/database"
	"github.com/hcid-network/platform/internal/shared/events"
	"github.com/hcid-network/platform/internal/shared/metrics"
	secmiddleware "github.com/hcid-network/platform/internal/shared/middleware"
	"github.com/hcid-network/platform/internal/travelhistory"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	DB     *database.DB
	Bus    *events.Bus
	Tables *risktable.Service
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	// Risk table service starts on the bundled fallback snapshot; the
	// registry adapter swaps in live tables when available
	app.Tables = risktable.NewService()

	// Database (optional - the in-memory repository covers local runs)
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Printf("Warning: Database not available: %v\n", err)
		fmt.Println("Running with in-memory assessment storage...")
	} else {
		app.DB = db
		defer db.Close()

		if err := database.Migrate(ctx, db.Pool); err != nil {
			fmt.Printf("Warning: Migration failed: %v\n", err)
		}
	}

	// Event bus via EventStoreDB (optional)
	bus, err := events.NewBus(ctx, cfg.EventStore)
	if err != nil {
		fmt.Printf("Warning: EventStoreDB not available: %v\n", err)
		fmt.Println("Running without event streaming...")
	} else {
		app.Bus = bus
		defer bus.Close()
		fmt.Println("EventStoreDB event bus initialized")
	}

	// Registry polling (optional - fallback snapshot otherwise)
	if cfg.Registry.Enabled {
		adapter := registry.New(cfg.Registry)
		if err := adapter.Start(ctx); err != nil {
			fmt.Printf("Warning: HCID registry not available: %v\n", err)
			app.Tables.MarkRefreshFailed()
		} else {
			go consumeRegistry(ctx, adapter, app.Tables)
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				adapter.Stop(stopCtx)
			}()
			fmt.Printf("HCID registry polling started (every %s)\n", cfg.Registry.PollInterval)
		}
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.MaxBodySize(1 << 20))
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler(app))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", infoHandler)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Server.Env == "production" {
			r.Use(auth.Middleware(cfg.Auth))
			r.Use(secmiddleware.RateLimiter(50, 100))
		}

		// Assessment module
		var repo domain.Repository
		if app.DB != nil {
			repo = infrastructure.NewPostgresRepository(app.DB)
		} else {
			repo = infrastructure.NewMemoryRepository()
		}
		assessmentHandler := assessmentapi.NewHandler(repo, app.Tables, busOrNil(app.Bus))
		r.Mount("/assessments", assessmentHandler.Routes())

		// Risk table inspection
		riskHandler := risktable.NewHandler(app.Tables)
		r.Mount("/risk-table", riskHandler.Routes())

		// Audit trail - EventStoreDB when available, memory otherwise
		var auditRepo audit.Repository
		if app.Bus != nil {
			auditRepo = audit.NewEventStoreRepository(app.Bus.Client())
		} else {
			auditRepo = audit.NewMemoryRepository()
		}
		if err := auditRepo.Initialize(ctx); err != nil {
			fmt.Printf("Warning: Audit initialization failed: %v\n", err)
		}
		auditHandler := audit.NewHandler(auditRepo)
		r.Mount("/audit", auditHandler.Routes())

		if app.Bus != nil {
			auditSubscriber := audit.NewSubscriber(app.Bus, auditRepo)
			if err := auditSubscriber.Start(ctx); err != nil {
				fmt.Printf("Warning: Audit subscriber failed to start: %v\n", err)
			} else {
				fmt.Println("Audit subscriber started")
			}
		}

		// Hepatitis B advisor
		r.Mount("/hepb", hepb.NewHandler().Routes())

		// Travel history narrative
		r.Mount("/travel-history", travelhistory.NewHandler().Routes())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	table := app.Tables.Current()
	fmt.Println("============================================")
	fmt.Println("HCID Network Risk Assessment Platform")
	fmt.Println("============================================")
	fmt.Printf("Environment:  %s\n", cfg.Server.Env)
	fmt.Printf("Server:       http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:          http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:       http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("Risk table:   %s (%d countries)\n", table.Provenance().Source, table.Len())
	fmt.Printf("Registry:     enabled=%v\n", cfg.Registry.Enabled)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

// consumeRegistry feeds refreshed tables and failures into the service
func consumeRegistry(ctx context.Context, adapter *registry.Adapter, tables *risktable.Service) {
	for {
		select {
		case <-ctx.Done():
			return
		case table, ok := <-adapter.Tables():
			if !ok {
				return
			}
			tables.SetLive(table)
			fmt.Printf("Risk table refreshed from registry (%d countries)\n", table.Len())
		case err, ok := <-adapter.Errors():
			if !ok {
				return
			}
			tables.MarkRefreshFailed()
			fmt.Printf("Warning: Risk table refresh failed: %v\n", err)
		}
	}
}

// busOrNil avoids handing handlers a typed-nil interface value
func busOrNil(bus *events.Bus) events.EventBus {
	if bus == nil {
		return nil
	}
	return bus
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "HCID Network Risk Assessment Platform",
		"version": "0.1.0",
		"docs":    "/api/v1",
	})
}

func healthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not configured"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["eventstore"] = "not ready: " + err.Error()
			} else {
				checks["eventstore"] = "ready"
			}
		} else {
			checks["eventstore"] = "not configured"
		}

		// The risk table is always available; report its provenance
		checks["risk_table"] = string(app.Tables.Current().Provenance().Source)

		allReady := true
		for key, status := range checks {
			if key == "risk_table" {
				continue
			}
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
