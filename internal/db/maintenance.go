package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/pkg/config"
)

// Maintenance coordinates database maintenance with normal operations.
// Callers that touch the database grab an operation lock so maintenance
// (which needs exclusive access for VACUUM) can wait them out.
type Maintenance interface {
	AcquireOperationLock() (unlock func())
}

// MaintenanceCoordinator periodically checkpoints the WAL and vacuums the
// database. All regular operations share a read lock; maintenance takes the
// write lock.
type MaintenanceCoordinator struct {
	db  *sql.DB
	cfg *config.MaintenanceConfig
	log *logger.Logger
	mu  sync.RWMutex
}

// NewMaintenanceCoordinator creates a maintenance coordinator. cfg may be nil,
// in which case maintenance never runs but the operation lock still works.
func NewMaintenanceCoordinator(db *sql.DB, cfg *config.MaintenanceConfig, log *logger.Logger) *MaintenanceCoordinator {
	return &MaintenanceCoordinator{
		db:  db,
		cfg: cfg,
		log: log,
	}
}

// AcquireOperationLock blocks while maintenance is running and returns an
// unlock function the caller must defer.
func (m *MaintenanceCoordinator) AcquireOperationLock() (unlock func()) {
	m.mu.RLock()
	return m.mu.RUnlock
}

// Run executes maintenance on the configured interval until the context is
// cancelled. It returns immediately if maintenance is disabled.
func (m *MaintenanceCoordinator) Run(ctx context.Context) error {
	if m.cfg == nil || !m.cfg.Enabled {
		return nil
	}

	if m.cfg.VacuumOnStartup {
		if err := m.PerformMaintenance(); err != nil {
			m.log.Warnf("startup maintenance failed: %v", err)
		}
	}

	ticker := time.NewTicker(m.cfg.CheckInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.PerformMaintenance(); err != nil {
				m.log.Warnf("scheduled maintenance failed: %v", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// PerformMaintenance checkpoints the WAL and vacuums the database while
// holding the exclusive operation lock.
func (m *MaintenanceCoordinator) PerformMaintenance() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()

	mode := "TRUNCATE"
	if m.cfg != nil && m.cfg.WALCheckpointMode != "" {
		mode = m.cfg.WALCheckpointMode
	}

	if _, err := m.db.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	if _, err := m.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	m.log.Infof("maintenance completed in %s (checkpoint mode %s)", time.Since(start), mode)

	return nil
}
