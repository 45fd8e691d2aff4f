package rpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/lastmonad/lastmonad-indexer/internal/common"
	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/internal/metrics"
	"github.com/lastmonad/lastmonad-indexer/pkg/config"
)

// Client talks to an EVM node. Every call retries with exponential backoff
// according to the retry configuration.
type Client struct {
	eth   *ethclient.Client
	raw   *gethrpc.Client
	retry *config.RetryConfig
	log   *logger.Logger
}

func NewClient(ctx context.Context, url string, retry *config.RetryConfig, log *logger.Logger) (*Client, error) {
	rawClient, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	if retry == nil {
		retry = &config.RetryConfig{}
		retry.ApplyDefaults()
	}

	return &Client{
		eth:   ethclient.NewClient(rawClient),
		raw:   rawClient,
		retry: retry,
		log:   log.WithComponent(common.ComponentRPC),
	}, nil
}

func (c *Client) Close() {
	c.raw.Close()
}

func (c *Client) call(ctx context.Context, method string, fn func() error) error {
	metrics.RPCRequests.WithLabelValues(method).Inc()

	err := retryWithBackoff(ctx, c.retry, c.log, method, fn)
	if err != nil {
		metrics.RPCErrors.WithLabelValues(method).Inc()
	}

	return err
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int

	err := c.call(ctx, "eth_chainId", func() error {
		var err error
		id, err = c.eth.ChainID(ctx)

		return err
	})

	return id, err
}

// LatestBlockNumber returns the current head block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var head uint64

	err := c.call(ctx, "eth_blockNumber", func() error {
		var err error
		head, err = c.eth.BlockNumber(ctx)

		return err
	})

	return head, err
}

// FilterLogs fetches logs matching the query.
func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log

	err := c.call(ctx, "eth_getLogs", func() error {
		var err error
		logs, err = c.eth.FilterLogs(ctx, q)

		return err
	})

	return logs, err
}

type headerStub struct {
	Number    hexutil.Uint64 `json:"number"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

// BlockTimestamps resolves the timestamps of the given blocks with one
// batched eth_getBlockByNumber call.
func (c *Client) BlockTimestamps(ctx context.Context, blocks []uint64) (map[uint64]uint64, error) {
	if len(blocks) == 0 {
		return map[uint64]uint64{}, nil
	}

	stubs := make([]headerStub, len(blocks))
	batch := make([]gethrpc.BatchElem, len(blocks))

	for i, block := range blocks {
		batch[i] = gethrpc.BatchElem{
			Method: "eth_getBlockByNumber",
			Args:   []interface{}{hexutil.EncodeUint64(block), false},
			Result: &stubs[i],
		}
	}

	err := c.call(ctx, "eth_getBlockByNumber", func() error {
		if err := c.raw.BatchCallContext(ctx, batch); err != nil {
			return err
		}

		for i := range batch {
			if batch[i].Error != nil {
				return fmt.Errorf("failed to fetch header %d: %w", blocks[i], batch[i].Error)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	timestamps := make(map[uint64]uint64, len(blocks))
	for i, block := range blocks {
		timestamps[block] = uint64(stubs[i].Timestamp)
	}

	return timestamps, nil
}
