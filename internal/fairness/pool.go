package fairness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/blockchain"
	"github.com/klausteuber/zcashino-sub002/internal/config"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/job"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
	"github.com/klausteuber/zcashino-sub002/internal/lib/random"
)

// CommitmentStore is the slice of the commitment repository the pool needs.
//
//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=CommitmentStore
type CommitmentStore interface {
	SaveCommitment(c model.SeedCommitment) (int64, error)
	GetCommitmentByID(id int64) (*model.SeedCommitment, error)
	ClaimAvailableCommitment() (*model.SeedCommitment, error)
	MarkUsedTx(tx mysql.Tx, commitmentID int64, gameID int64) (bool, error)
	ReleaseClaimedCommitment(commitmentID int64) (bool, error)
	ExpireOlderThan(cutoff time.Time) (int64, error)
	CountByStatus(status model.CommitmentStatus) (int, error)
}

// Committer is the on-chain publication side of the blockchain client.
type Committer interface {
	CreateCommitment(ctx context.Context, seedHash string) (*blockchain.Commitment, error)
}

// Pool keeps a supply of pre-committed seeds ready for instant claim.
// It is an injectable service with its own lifecycle, constructed per
// process (and per test), never a package-level singleton.
type Pool struct {
	log   *slog.Logger
	store CommitmentStore
	chain Committer
	cfg   config.Fairness

	queue   job.JobQueue
	workers *job.WorkerPool

	mu       sync.Mutex
	lastMint time.Time

	stats *cache.Cache

	stop chan struct{}
	done chan struct{}
}

func NewPool(log *slog.Logger, store CommitmentStore, chain Committer, cfg config.Fairness) *Pool {
	queue := job.NewQueue(16)

	return &Pool{
		log:     log,
		store:   store,
		chain:   chain,
		cfg:     cfg,
		queue:   queue,
		workers: job.NewWorkerPool(1, queue),
		stats:   cache.New(time.Minute, 5*time.Minute),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the background refill loop.
func (p *Pool) Start() {
	p.workers.Start()

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.cfg.RefillInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				job.Dispatch(p.queue, &refillJob{pool: p}, 0)
			case <-p.stop:
				return
			}
		}
	}()
}

func (p *Pool) Stop() {
	close(p.stop)
	<-p.done
}

type refillJob struct {
	pool *Pool
}

func (j *refillJob) Execute() {
	j.pool.CheckAndRefillPool(context.Background())
}

// GetOrCreateCommitment claims one available commitment, falling back to a
// single synchronous mint when the pool is empty. The claim itself is a
// conditional update in the store, so no two callers ever get the same row.
func (p *Pool) GetOrCreateCommitment(ctx context.Context) (*model.SeedCommitment, error) {
	const op = "fairness.pool.GetOrCreateCommitment"

	claimed, err := p.store.ClaimAvailableCommitment()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if claimed != nil {
		return claimed, nil
	}

	p.log.Warn("commitment pool empty, minting synchronously")

	id, err := p.mintCommitment(ctx)
	if err != nil {
		p.log.Error("synchronous commitment mint failed", sl.Err(err))

		return nil, ErrNoCommitmentSupply
	}

	claimed, err = p.store.ClaimAvailableCommitment()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if claimed == nil {
		// The freshly minted row was snatched by a concurrent starter.
		p.log.Info("minted commitment claimed elsewhere", sl.Int64("commitment_id", id))

		return nil, ErrNoCommitmentSupply
	}

	return claimed, nil
}

// MarkCommitmentUsedTx binds a claimed commitment to its game inside the
// caller's transaction. A false return means the claim race was lost, not
// a hard error.
func (p *Pool) MarkCommitmentUsedTx(tx mysql.Tx, commitmentID int64, gameID int64) (bool, error) {
	const op = "fairness.pool.MarkCommitmentUsedTx"

	used, err := p.store.MarkUsedTx(tx, commitmentID, gameID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return used, nil
}

// ReleaseClaimedCommitment returns a claimed commitment to the supply after
// a failed game start. Best-effort: failures are logged by the caller, the
// refill loop will eventually expire a stranded row anyway.
func (p *Pool) ReleaseClaimedCommitment(commitmentID int64) error {
	const op = "fairness.pool.ReleaseClaimedCommitment"

	released, err := p.store.ReleaseClaimedCommitment(commitmentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !released {
		p.log.Info("commitment not in claimed state on release",
			sl.Int64("commitment_id", commitmentID))
	}

	return nil
}

// CheckAndRefillPool tops the pool up toward the target watermark, minting
// at most one commitment per cycle. The chain needs ~75s before a fresh
// change output is spendable again, so minting faster than the maturation
// window cascades into on-chain failures.
func (p *Pool) CheckAndRefillPool(ctx context.Context) {
	const op = "fairness.pool.CheckAndRefillPool"

	log := p.log.With(slog.String("op", op))

	if expired, err := p.store.ExpireOlderThan(time.Now().Add(-p.cfg.CommitmentTTL)); err != nil {
		log.Error("failed to expire stale commitments", sl.Err(err))
	} else if expired > 0 {
		log.Info("expired stale commitments", sl.Int64("count", expired))
	}

	available, err := p.store.CountByStatus(model.CommitmentAvailable)
	if err != nil {
		log.Error("failed to count available commitments", sl.Err(err))

		return
	}

	p.stats.Set("available", available, cache.DefaultExpiration)

	if available >= p.cfg.PoolTargetSize {
		return
	}

	if available < p.cfg.PoolMinHealthy {
		log.Warn("commitment supply below healthy floor",
			slog.Int("available", available),
			slog.Int("min_healthy", p.cfg.PoolMinHealthy))
	}

	p.mu.Lock()
	sinceLast := time.Since(p.lastMint)
	p.mu.Unlock()

	if sinceLast < p.cfg.WitnessMaturation {
		log.Debug("waiting for witness maturation",
			slog.String("since_last_mint", sinceLast.String()))

		return
	}

	id, err := p.mintCommitment(ctx)
	if err != nil {
		// Retried on the next cycle; never blocks an in-flight game start.
		log.Error("background commitment mint failed", sl.Err(err))

		return
	}

	log.Info("commitment minted", sl.Int64("commitment_id", id))
}

func (p *Pool) mintCommitment(ctx context.Context) (int64, error) {
	const op = "fairness.pool.mintCommitment"

	serverSeed := random.NewRandomString(64)
	seedHash := HashServerSeed(serverSeed)

	commitment, err := p.chain.CreateCommitment(ctx, seedHash)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := p.store.SaveCommitment(model.SeedCommitment{
		ServerSeed:     serverSeed,
		ServerSeedHash: seedHash,
		OnChainTxHash:  commitment.TxHash,
		BlockHeight:    commitment.BlockHeight,
		BlockTimestamp: commitment.BlockTimestamp,
		Status:         model.CommitmentAvailable,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	p.lastMint = time.Now()
	p.mu.Unlock()

	return id, nil
}

// AvailableSupply reports the cached available count for health endpoints.
func (p *Pool) AvailableSupply() int {
	if v, found := p.stats.Get("available"); found {
		return v.(int)
	}

	count, err := p.store.CountByStatus(model.CommitmentAvailable)
	if err != nil {
		return 0
	}

	p.stats.Set("available", count, cache.DefaultExpiration)

	return count
}
