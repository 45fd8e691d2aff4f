package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lastmonad/lastmonad-indexer/internal/common"
	"github.com/lastmonad/lastmonad-indexer/internal/event"
	"github.com/lastmonad/lastmonad-indexer/internal/indexer"
	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/internal/metrics"
	"github.com/lastmonad/lastmonad-indexer/pkg/config"
)

// EthClient is the node surface the poller needs.
type EthClient interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	BlockTimestamps(ctx context.Context, blocks []uint64) (map[uint64]uint64, error)
}

// Poller drives the indexing loop: fetch a settled chunk of logs, decode
// them, apply them in order, advance the cursor.
type Poller struct {
	client     EthClient
	dispatcher *indexer.Dispatcher
	db         *sql.DB
	cfg        config.SourceConfig
	contract   ethcommon.Address
	log        *logger.Logger
}

func NewPoller(client EthClient, dispatcher *indexer.Dispatcher, database *sql.DB, cfg config.SourceConfig, log *logger.Logger) *Poller {
	return &Poller{
		client:     client,
		dispatcher: dispatcher,
		db:         database,
		cfg:        cfg,
		contract:   ethcommon.HexToAddress(cfg.ContractAddress),
		log:        log.WithComponent(common.ComponentSource),
	}
}

// Run polls until the context is cancelled. While behind the settled head it
// chases without waiting; once caught up it idles for the poll interval.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Infof("starting log poller for contract %s on chain %d from block %d",
		p.contract, p.cfg.ChainID, p.cfg.StartBlock)

	for {
		for {
			progressed, err := p.pollOnce(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}

				metrics.SourcePollErrors.Inc()
				p.log.Errorf("poll iteration failed: %v", err)

				break
			}

			if !progressed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(p.cfg.PollInterval.Duration):
		}
	}
}

// pollOnce fetches and applies one chunk. It reports whether the cursor
// advanced, so the caller knows to keep chasing instead of sleeping.
func (p *Poller) pollOnce(ctx context.Context) (bool, error) {
	from := p.cfg.StartBlock

	cursor, err := LoadCursor(p.db, p.cfg.ChainID)
	if err != nil {
		return false, fmt.Errorf("failed to load cursor: %w", err)
	}

	if cursor != nil {
		from = cursor.LastAppliedBlock + 1
	}

	head, err := p.client.LatestBlockNumber(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch head: %w", err)
	}

	if head < p.cfg.FinalizedLag {
		return false, nil
	}

	settled := head - p.cfg.FinalizedLag
	if from > settled {
		return false, nil
	}

	to := from + p.cfg.ChunkSize - 1
	if to > settled {
		to = settled
	}

	logs, err := p.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []ethcommon.Address{p.contract},
		Topics:    [][]ethcommon.Hash{event.AllTopics()},
	})
	if err != nil {
		return false, fmt.Errorf("failed to fetch logs %d-%d: %w", from, to, err)
	}

	if err := p.applyLogs(ctx, logs); err != nil {
		return false, err
	}

	if err := SaveCursor(p.db, p.cfg.ChainID, to); err != nil {
		return false, fmt.Errorf("failed to save cursor: %w", err)
	}

	metrics.LastAppliedBlock.Set(float64(to))

	if len(logs) > 0 {
		p.log.Infof("applied %d logs from blocks %d-%d", len(logs), from, to)
	}

	return true, nil
}

func (p *Poller) applyLogs(ctx context.Context, logs []types.Log) error {
	if len(logs) == 0 {
		return nil
	}

	// eth_getLogs ordering is node-dependent. Apply order must be
	// ascending (block, log index).
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}

		return logs[i].Index < logs[j].Index
	})

	timestamps, err := p.client.BlockTimestamps(ctx, uniqueBlocks(logs))
	if err != nil {
		return fmt.Errorf("failed to fetch block timestamps: %w", err)
	}

	for _, lg := range logs {
		if lg.Removed {
			continue
		}

		ev, err := event.Decode(lg)
		if err != nil {
			if errors.Is(err, event.ErrUnknownEvent) {
				metrics.EventsDropped.Inc()
				p.log.Debugf("dropping unknown log at %d/%d", lg.BlockNumber, lg.Index)

				continue
			}

			return fmt.Errorf("failed to decode log at %d/%d: %w", lg.BlockNumber, lg.Index, err)
		}

		env := event.Envelope{
			ChainID:     p.cfg.ChainID,
			BlockNumber: lg.BlockNumber,
			LogIndex:    uint64(lg.Index),
			BlockTime:   timestamps[lg.BlockNumber],
			Event:       ev,
		}

		if err := p.dispatcher.Apply(env); err != nil {
			return err
		}
	}

	return nil
}

func uniqueBlocks(logs []types.Log) []uint64 {
	seen := make(map[uint64]struct{}, len(logs))
	blocks := make([]uint64, 0, len(logs))

	for _, lg := range logs {
		if _, ok := seen[lg.BlockNumber]; ok {
			continue
		}

		seen[lg.BlockNumber] = struct{}{}
		blocks = append(blocks, lg.BlockNumber)
	}

	return blocks
}
