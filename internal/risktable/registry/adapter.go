// Package registry polls the national HCID registry, a legacy SQL Server
// system, and produces refreshed risk tables. The assessment engine never
// talks to the registry directly; it consumes whatever table the service
// currently holds.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	"github.com/hcid-network/platform/internal/risktable"
	"github.com/hcid-network/platform/internal/shared/config"
)

// Adapter polls the registry database and emits refreshed tables
type Adapter struct {
	db     *sql.DB
	config config.RegistryConfig

	tables chan *risktable.Table
	errs   chan error

	running  bool
	mu       sync.RWMutex
	cancel   context.CancelFunc
	lastPoll time.Time
	wg       sync.WaitGroup
}

// New creates a new registry adapter
func New(cfg config.RegistryConfig) *Adapter {
	return &Adapter{
		config: cfg,
		tables: make(chan *risktable.Table, 1),
		errs:   make(chan error, 1),
	}
}

// Tables returns the channel of refreshed tables
func (a *Adapter) Tables() <-chan *risktable.Table {
	return a.tables
}

// Errors returns the channel of refresh failures
func (a *Adapter) Errors() <-chan error {
	return a.errs
}

// Start opens the database connection and begins polling
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("adapter already running")
	}

	connStr := fmt.Sprintf("server=%s;port=%d;database=%s;user id=%s;password=%s",
		a.config.Host,
		a.config.Port,
		a.config.Database,
		a.config.User,
		a.config.Password,
	)

	if a.config.SSLMode != "disable" {
		connStr += ";encrypt=true;TrustServerCertificate=true"
	}

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return fmt.Errorf("failed to open registry database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping registry database: %w", err)
	}

	a.db = db
	a.running = true

	pollCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go a.pollLoop(pollCtx)

	return nil
}

// Stop stops polling and closes the connection
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}

	if a.cancel != nil {
		a.cancel()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	close(a.tables)
	close(a.errs)

	if a.db != nil {
		a.db.Close()
	}

	a.running = false
	return nil
}

// pollLoop refreshes the table on the configured interval. The first
// refresh runs immediately so the service leaves fallback mode as soon as
// the registry is reachable.
func (a *Adapter) pollLoop(ctx context.Context) {
	defer a.wg.Done()

	a.refresh(ctx)

	ticker := time.NewTicker(a.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refresh(ctx)
		}
	}
}

func (a *Adapter) refresh(ctx context.Context) {
	table, err := a.fetchTable(ctx)
	if err != nil {
		select {
		case a.errs <- err:
		default:
		}
		return
	}

	a.mu.Lock()
	a.lastPoll = time.Now()
	a.mu.Unlock()

	select {
	case a.tables <- table:
	default:
		// Consumer has not drained the previous refresh; drop the stale one
		select {
		case <-a.tables:
		default:
		}
		a.tables <- table
	}
}

// fetchTable reads the full country risk table from the registry
func (a *Adapter) fetchTable(ctx context.Context) (*risktable.Table, error) {
	query := `
		SELECT country_name, disease_name, evidence_text, evidence_year
		FROM dbo.CountryRiskEntries
		ORDER BY country_name, disease_name`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry: %w", err)
	}
	defer rows.Close()

	entries := make(map[string][]risktable.Record)
	for rows.Next() {
		var country string
		var rec risktable.Record
		if err := rows.Scan(&country, &rec.Disease, &rec.Evidence, &rec.Year); err != nil {
			return nil, fmt.Errorf("failed to scan registry row: %w", err)
		}
		entries[country] = append(entries[country], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read registry rows: %w", err)
	}

	captured := time.Now().UTC()
	return risktable.New(entries, risktable.Provenance{
		Source:     risktable.SourceLive,
		CapturedAt: &captured,
	}), nil
}
