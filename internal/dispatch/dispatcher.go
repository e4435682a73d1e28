package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/grachmannico95/payment-engine/internal/domain"
	"github.com/grachmannico95/payment-engine/internal/ledger"
	"github.com/grachmannico95/payment-engine/pkg/logger"
)

// Dispatcher partitions one transaction stream across independent ledger
// shards. Records route by client id, so no shard ever touches another
// shard's accounts and per-client order is preserved; the merged result is
// identical to a sequential fold. Sends block when a shard falls behind —
// ledger records are never dropped.
type Dispatcher struct {
	shards  []*shard
	wg      sync.WaitGroup
	logger  *logger.Logger
	started bool
	mu      sync.Mutex
}

type shard struct {
	ch     chan domain.TransactionRecord
	ledger *ledger.Ledger
}

type Config struct {
	ShardCount    int
	ChannelBuffer int
}

func New(log *logger.Logger, cfg *Config) *Dispatcher {
	if cfg == nil {
		cfg = &Config{}
	}
	shardCount := cfg.ShardCount
	if shardCount < 1 {
		shardCount = 1
	}
	buffer := cfg.ChannelBuffer
	if buffer < 1 {
		buffer = 1000
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{
			ch:     make(chan domain.TransactionRecord, buffer),
			ledger: ledger.New(),
		}
	}

	return &Dispatcher{
		shards: shards,
		logger: log,
	}
}

// Start launches one worker per shard.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}

	d.logger.Debug(ctx, "Starting ledger shards",
		"shard_count", len(d.shards),
	)

	for i, s := range d.shards {
		d.wg.Add(1)
		go d.worker(ctx, s, i)
	}

	d.started = true
	return nil
}

// Process routes one record to its client's shard. It satisfies the
// service.TransactionSink contract; rejections inside the shard ledgers are
// logged by the workers, never surfaced here.
func (d *Dispatcher) Process(ctx context.Context, record domain.TransactionRecord) error {
	s := d.shards[int(record.Client)%len(d.shards)]

	select {
	case s.ch <- record:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(ctx context.Context, s *shard, shardID int) {
	defer d.wg.Done()

	d.logger.Debug(ctx, "Shard worker started", "shard_id", shardID)

	for record := range s.ch {
		if err := s.ledger.Process(ctx, record); err != nil {
			d.logger.Debug(ctx, "Transaction ignored",
				"shard_id", shardID,
				"kind", record.Kind,
				"client", record.Client,
				"tx", record.Tx,
				"reason", err,
			)
		}
	}

	d.logger.Debug(ctx, "Shard worker stopping", "shard_id", shardID)
}

// Drain closes the shards, waits for the workers to finish the buffered
// records, and merges the per-shard account sets into one sorted snapshot
// list. Call it only after the last Process call has returned.
func (d *Dispatcher) Drain(ctx context.Context) ([]domain.AccountSnapshot, error) {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return nil, fmt.Errorf("dispatcher not started")
	}
	for _, s := range d.shards {
		close(s.ch)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn(ctx, "Dispatcher drain timeout")
		return nil, ctx.Err()
	}

	var snapshots []domain.AccountSnapshot
	for _, s := range d.shards {
		snapshots = append(snapshots, s.ledger.Snapshots()...)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Client < snapshots[j].Client
	})

	return snapshots, nil
}
