package fairness

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
	"github.com/klausteuber/zcashino-sub002/internal/lib/random"
)

// SeedStore is the slice of the fairness-seed repository the stream needs.
//
//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=SeedStore
type SeedStore interface {
	SaveSeed(seed model.SessionFairnessSeed) (int64, error)
	GetSeedByID(id int64) (*model.SessionFairnessSeed, error)
	FindActiveBySessionID(sessionID int64) (*model.SessionFairnessSeed, error)
	AllocateNonce(seedID int64) (int64, error)
	SetClientSeed(seedID int64, clientSeed string) (bool, error)
	RetireSeed(seedID int64) (bool, error)
}

// Stream is the per-session seed lifecycle: one long-lived committed server
// seed, a monotonic nonce per game, rotation on demand, reveal after
// retirement.
type Stream struct {
	log   *slog.Logger
	seeds SeedStore
	chain Committer
}

func NewStream(log *slog.Logger, seeds SeedStore, chain Committer) *Stream {
	return &Stream{
		log:   log,
		seeds: seeds,
		chain: chain,
	}
}

// EnsureActiveFairnessState idempotently guarantees the session has a
// usable committed seed epoch, creating one lazily on the first wager.
func (s *Stream) EnsureActiveFairnessState(ctx context.Context, sessionID int64) (*model.SessionFairnessSeed, error) {
	const op = "fairness.stream.EnsureActiveFairnessState"

	seed, err := s.seeds.FindActiveBySessionID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if seed != nil {
		return seed, nil
	}

	id, err := s.createSeedEpoch(ctx, sessionID)
	if err != nil {
		s.log.Error("failed to create fairness seed epoch", sl.Err(err))

		return nil, ErrNoCommitmentSupply
	}

	seed, err = s.seeds.GetSeedByID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seed, nil
}

// AllocateNonce hands out the next nonce of the session's active epoch.
// The increment is a single conditional update in the store, so concurrent
// wagers from one session never share a nonce.
func (s *Stream) AllocateNonce(ctx context.Context, sessionID int64) (*model.SessionFairnessSeed, int64, error) {
	const op = "fairness.stream.AllocateNonce"

	seed, err := s.EnsureActiveFairnessState(ctx, sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	nonce, err := s.seeds.AllocateNonce(seed.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return seed, nonce, nil
}

// SetClientSeed changes the client seed of the active epoch. Only legal
// before the first wager of the epoch; afterwards the seed is locked so a
// player cannot grind outcomes.
func (s *Stream) SetClientSeed(ctx context.Context, sessionID int64, clientSeed string) error {
	const op = "fairness.stream.SetClientSeed"

	seed, err := s.EnsureActiveFairnessState(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.seeds.SetClientSeed(seed.ID, clientSeed)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !updated {
		return ErrClientSeedLocked
	}

	return nil
}

// RotateSeed retires the active epoch and opens a fresh one. The retired
// epoch's server seed becomes revealable. Refused while a game dealt from
// the epoch is still active: its seed must stay secret until the round
// settles. Returns retired and new epochs.
func (s *Stream) RotateSeed(ctx context.Context, sessionID int64) (*model.SessionFairnessSeed, *model.SessionFairnessSeed, error) {
	const op = "fairness.stream.RotateSeed"

	current, err := s.EnsureActiveFairnessState(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	retired, err := s.seeds.RetireSeed(current.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !retired {
		old, err := s.seeds.GetSeedByID(current.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		if old != nil && old.Active {
			// The store refused because a round on this epoch is still
			// in flight.
			return nil, nil, ErrActiveRoundOpen
		}

		// Lost a rotation race; the other rotation already produced a
		// fresh epoch, use it.
		fresh, err := s.seeds.FindActiveBySessionID(sessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return old, fresh, nil
	}

	id, err := s.createSeedEpoch(ctx, sessionID)
	if err != nil {
		s.log.Error("failed to create replacement seed epoch", sl.Err(err))

		return nil, nil, ErrNoCommitmentSupply
	}

	old, err := s.seeds.GetSeedByID(current.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	fresh, err := s.seeds.GetSeedByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return old, fresh, nil
}

// GetRevealableServerSeed returns the raw server seed only once its epoch
// has been retired. Revealing an active seed would let the player predict
// every remaining outcome in the stream.
func (s *Stream) GetRevealableServerSeed(seedID int64) (string, error) {
	const op = "fairness.stream.GetRevealableServerSeed"

	seed, err := s.seeds.GetSeedByID(seedID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if seed == nil {
		return "", ErrSeedNotFound
	}

	if !seed.Revealed {
		return "", ErrSeedNotRevealable
	}

	return seed.ServerSeed, nil
}

// ServerSeed resolves the raw server seed of an epoch for internal replay,
// regardless of reveal status. Never expose this through reveal paths; use
// GetRevealableServerSeed there.
func (s *Stream) ServerSeed(seedID int64) (string, error) {
	const op = "fairness.stream.ServerSeed"

	seed, err := s.seeds.GetSeedByID(seedID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if seed == nil {
		return "", ErrSeedNotFound
	}

	return seed.ServerSeed, nil
}

func (s *Stream) createSeedEpoch(ctx context.Context, sessionID int64) (int64, error) {
	const op = "fairness.stream.createSeedEpoch"

	serverSeed := random.NewRandomString(64)
	seedHash := HashServerSeed(serverSeed)

	commitment, err := s.chain.CreateCommitment(ctx, seedHash)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.seeds.SaveSeed(model.SessionFairnessSeed{
		SessionID:      sessionID,
		ServerSeed:     serverSeed,
		ServerSeedHash: seedHash,
		ClientSeed:     uuid.New().String(),
		OnChainTxHash:  commitment.TxHash,
		BlockHeight:    commitment.BlockHeight,
		BlockTimestamp: commitment.BlockTimestamp,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}
