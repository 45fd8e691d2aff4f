// Package indexer applies decoded contract events to the aggregated entities.
package indexer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lastmonad/lastmonad-indexer/internal/db"
	"github.com/lastmonad/lastmonad-indexer/internal/event"
	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/internal/metrics"
)

// Dispatcher routes decoded events to their aggregation handlers. Each event
// is applied in its own transaction: the raw emission record and every entity
// it touches commit together or not at all.
//
// Dispatch is single threaded. Events must be applied in ascending
// (block number, log index) order, so there is nothing to parallelize and the
// global accumulator never sees concurrent writers.
type Dispatcher struct {
	db          *sql.DB
	maintenance db.Maintenance
	log         *logger.Logger
}

func NewDispatcher(database *sql.DB, maintenance db.Maintenance, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		db:          database,
		maintenance: maintenance,
		log:         log,
	}
}

// Apply processes one event envelope. Replayed positions are detected by the
// raw table primary key and skipped wholesale, which keeps additive counters
// exact under at-least-once delivery.
func (d *Dispatcher) Apply(env event.Envelope) error {
	unlock := d.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false

	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	duplicate, err := insertRaw(tx, env)
	if err != nil {
		return fmt.Errorf("failed to record raw event at %d/%d/%d: %w",
			env.ChainID, env.BlockNumber, env.LogIndex, err)
	}

	if duplicate {
		metrics.EventsDuplicate.Inc()
		d.log.Debugf("skipping replayed %s at %d/%d/%d",
			env.Event.Type(), env.ChainID, env.BlockNumber, env.LogIndex)

		return nil
	}

	if err := d.applyAggregates(tx, env); err != nil {
		return fmt.Errorf("failed to apply %s at %d/%d/%d: %w",
			env.Event.Type(), env.ChainID, env.BlockNumber, env.LogIndex, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s at %d/%d/%d: %w",
			env.Event.Type(), env.ChainID, env.BlockNumber, env.LogIndex, err)
	}

	committed = true

	metrics.EventsApplied.WithLabelValues(string(env.Event.Type())).Inc()
	metrics.ApplyDuration.Observe(time.Since(start).Seconds())

	return nil
}

func (d *Dispatcher) applyAggregates(tx *sql.Tx, env event.Envelope) error {
	switch ev := env.Event.(type) {
	case *event.PoolCreated:
		return d.applyPoolCreated(tx, env, ev)
	case *event.PlayerJoined:
		return d.applyPlayerJoined(tx, env, ev)
	case *event.PoolActivated:
		return d.applyPoolActivated(tx, env, ev)
	case *event.PlayerMadeChoice:
		// Choices only matter once the round resolves. Raw record is enough.
		return nil
	case *event.RoundResolved:
		return d.applyRoundResolved(tx, env, ev)
	case *event.RoundRepeated:
		return d.applyRoundRepeated(tx, env, ev)
	case *event.GameCompleted:
		return d.applyGameCompleted(tx, env, ev)
	case *event.PoolAbandoned:
		return d.applyPoolAbandoned(tx, env, ev)
	case *event.StakeDeposited:
		return d.applyStakeDeposited(tx, ev)
	case *event.StakeWithdrawn:
		return d.applyStakeWithdrawn(tx, ev)
	case *event.CreatorRewardClaimed:
		// Claims do not change the lifetime totals, which accrue at completion.
		return nil
	case *event.ProjectPoolUpdated:
		return d.applyProjectPoolUpdated(tx, ev)
	case *event.OwnershipTransferred:
		return nil
	default:
		d.log.Warnf("no aggregation handler for %s, raw record only", env.Event.Type())
		return nil
	}
}
