package risktable

import (
	"sync"

	"github.com/hcid-network/platform/internal/shared/metrics"
)

// Service owns the active risk table. Refreshes from the live registry swap
// the table atomically; consumers always read a consistent snapshot. When no
// live table has ever been received the compiled-in fallback is served.
type Service struct {
	mu     sync.RWMutex
	active *Table
}

// NewService creates a service running on the fallback snapshot
func NewService() *Service {
	table := Fallback()
	metrics.RecordRiskTableRefresh(string(SourceFallback), "ok")
	metrics.RecordRiskTableSize(table.Len())
	return &Service{active: table}
}

// Current returns the active table
func (s *Service) Current() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetLive replaces the active table with a live refresh
func (s *Service) SetLive(table *Table) {
	s.mu.Lock()
	s.active = table
	s.mu.Unlock()

	metrics.RecordRiskTableRefresh(string(table.Provenance().Source), "ok")
	metrics.RecordRiskTableSize(table.Len())
}

// MarkRefreshFailed records a failed live refresh. If the service has only
// ever served the fallback, its provenance is relabelled so the display can
// distinguish "never fetched" from "fetch failed".
func (s *Service) MarkRefreshFailed() {
	s.mu.Lock()
	if s.active.Provenance().Source == SourceFallback {
		s.active = FallbackAfterError()
	}
	s.mu.Unlock()

	metrics.RecordRiskTableRefresh(string(SourceLive), "error")
}
