package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/blackjack"
	"github.com/klausteuber/zcashino-sub002/internal/blockchain"
	"github.com/klausteuber/zcashino-sub002/internal/fairness"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

var (
	ErrGameNotFound     = errors.New("verify: game not found")
	ErrGameNotCompleted = errors.New("verify: game not completed yet")
)

const (
	chainResultTTL    = 5 * time.Minute
	chainCacheJanitor = 10 * time.Minute
)

// GameSource is the slice of the game repository the verifier needs.
//
//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=GameSource
type GameSource interface {
	FindGameByUUID(uuidStr string) (*model.Game, error)
	MarkVerifiedOnChain(gameID int64) (bool, error)
}

type CommitmentSource interface {
	GetCommitmentByID(id int64) (*model.SeedCommitment, error)
}

type SeedSource interface {
	GetSeedByID(id int64) (*model.SessionFairnessSeed, error)
}

type ChainVerifier interface {
	VerifyCommitment(ctx context.Context, txHash, expectedHash string) (*blockchain.VerifyResult, error)
}

// Verifier re-derives a completed round from first principles and compares
// it against what was persisted and what was published on chain. It trusts
// nothing but the seed tuple and the ordered action history.
type Verifier struct {
	log         *slog.Logger
	games       GameSource
	commitments CommitmentSource
	seeds       SeedSource
	chain       ChainVerifier
	chainCache  *gocache.Cache
}

func New(
	log *slog.Logger,
	games GameSource,
	commitments CommitmentSource,
	seeds SeedSource,
	chain ChainVerifier,
) *Verifier {
	return &Verifier{
		log:         log,
		games:       games,
		commitments: commitments,
		seeds:       seeds,
		chain:       chain,
		chainCache:  gocache.New(chainResultTTL, chainCacheJanitor),
	}
}

// Report is the structured verdict. Valid is the conjunction of the
// individual checks, never a shortcut.
type Report struct {
	GameUUID            string   `json:"game_uuid"`
	ServerSeed          string   `json:"server_seed,omitempty"`
	ServerSeedHash      string   `json:"server_seed_hash"`
	ClientSeed          string   `json:"client_seed"`
	Nonce               int64    `json:"nonce"`
	HashMatches         bool     `json:"hash_matches"`
	OnChainConfirmed    bool     `json:"on_chain_confirmed"`
	CommittedBeforePlay bool     `json:"committed_before_play"`
	OutcomeValid        bool     `json:"outcome_valid"`
	Valid               bool     `json:"valid"`
	StoredOutcome       string   `json:"stored_outcome"`
	ReplayedOutcome     string   `json:"replayed_outcome,omitempty"`
	StoredPayout        int64    `json:"stored_payout"`
	ReplayedPayout      int64    `json:"replayed_payout,omitempty"`
	OnChainTxHash       string   `json:"on_chain_tx_hash,omitempty"`
	Discrepancies       []string `json:"discrepancies,omitempty"`
}

// VerifyGame runs the full audit of one completed round: seed hash,
// on-chain commitment, commitment timing and outcome replay.
func (v *Verifier) VerifyGame(ctx context.Context, gameUUID string) (*Report, error) {
	const op = "verify.Verifier.VerifyGame"

	game, err := v.games.FindGameByUUID(gameUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if game == nil {
		return nil, ErrGameNotFound
	}

	if game.Status != model.GameCompleted {
		return nil, ErrGameNotCompleted
	}

	serverSeed, revealable, err := v.resolveServerSeed(game)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := &Report{
		GameUUID:       game.UUID.String(),
		ServerSeedHash: game.ServerSeedHash,
		ClientSeed:     game.ClientSeed,
		Nonce:          game.Nonce,
		StoredOutcome:  game.Outcome.String,
		StoredPayout:   game.Payout,
	}

	if revealable {
		report.ServerSeed = serverSeed
	}

	report.HashMatches = fairness.HashServerSeed(serverSeed) == game.ServerSeedHash
	if !report.HashMatches {
		report.Discrepancies = append(report.Discrepancies,
			"server seed does not hash to the committed value")
	}

	v.checkReplay(game, serverSeed, report)
	hasCommitment := v.checkChain(ctx, game, report)

	report.Valid = report.HashMatches && report.OutcomeValid &&
		(report.OnChainConfirmed || !hasCommitment)

	if report.Valid && report.OnChainConfirmed && !game.VerifiedOnChain {
		if _, err = v.games.MarkVerifiedOnChain(game.ID); err != nil {
			v.log.Error("failed to mark game verified on chain",
				sl.Int64("game_id", game.ID), sl.Err(err))
		}
	}

	return report, nil
}

// checkReplay re-deals the round from the seed tuple and folds the stored
// history over it, then compares the settled outcome and payout with the
// persisted row.
func (v *Verifier) checkReplay(game *model.Game, serverSeed string, report *Report) {
	state, err := blackjack.Replay(blackjack.RoundInputs{
		MainBet:         game.MainBet,
		PerfectPairsBet: game.PerfectPairsBet,
		InsuranceBet:    game.InsuranceBet,
		ServerSeed:      serverSeed,
		ClientSeed:      game.ClientSeed,
		Nonce:           game.Nonce,
		Version:         game.FairnessVersion,
	}, game.ActionHistory)
	if err != nil {
		report.Discrepancies = append(report.Discrepancies,
			fmt.Sprintf("action history does not replay: %v", err))

		return
	}

	// A round that ended on a peek-forced dealer blackjack has no
	// completing action in its history.
	state.ResolvePeek()

	if state.Phase != blackjack.PhaseComplete {
		report.Discrepancies = append(report.Discrepancies,
			"replayed round does not reach completion")

		return
	}

	report.ReplayedOutcome = state.Settlement.OverallOutcome()
	report.ReplayedPayout = state.Settlement.TotalPayout

	if report.ReplayedOutcome != report.StoredOutcome {
		report.Discrepancies = append(report.Discrepancies,
			fmt.Sprintf("outcome mismatch: stored %q, replayed %q",
				report.StoredOutcome, report.ReplayedOutcome))

		return
	}

	if report.ReplayedPayout != report.StoredPayout {
		report.Discrepancies = append(report.Discrepancies,
			fmt.Sprintf("payout mismatch: stored %d, replayed %d",
				report.StoredPayout, report.ReplayedPayout))

		return
	}

	report.OutcomeValid = true
}

// checkChain resolves the game's commitment transaction and asks the node
// about it, caching the answer so repeated verifications of one round do
// not hammer the RPC. Reports whether the game references a commitment at
// all.
func (v *Verifier) checkChain(ctx context.Context, game *model.Game, report *Report) bool {
	txHash, committedAt, ok := v.resolveCommitment(game, report)
	if !ok {
		return false
	}

	report.OnChainTxHash = txHash
	report.CommittedBeforePlay = committedAt.Before(game.CreatedAt)

	if !report.CommittedBeforePlay {
		report.Discrepancies = append(report.Discrepancies,
			"commitment was not on chain before the round started")
	}

	cacheKey := txHash + ":" + game.ServerSeedHash

	if cached, found := v.chainCache.Get(cacheKey); found {
		report.OnChainConfirmed = cached.(bool)

		return true
	}

	result, err := v.chain.VerifyCommitment(ctx, txHash, game.ServerSeedHash)
	if err != nil {
		v.log.Error("on-chain verification unavailable",
			sl.String("tx_hash", txHash), sl.Err(err))

		report.Discrepancies = append(report.Discrepancies,
			"on-chain verification unavailable")

		return true
	}

	report.OnChainConfirmed = result.Valid

	if !result.Valid {
		msg := "commitment transaction does not confirm the seed hash"
		if result.Error != "" {
			msg = fmt.Sprintf("%s: %s", msg, result.Error)
		}

		report.Discrepancies = append(report.Discrepancies, msg)
	}

	v.chainCache.Set(cacheKey, result.Valid, gocache.DefaultExpiration)

	return true
}

func (v *Verifier) resolveCommitment(game *model.Game, report *Report) (string, time.Time, bool) {
	switch {
	case game.CommitmentID.Valid:
		commitment, err := v.commitments.GetCommitmentByID(game.CommitmentID.Int64)
		if err != nil || commitment == nil {
			report.Discrepancies = append(report.Discrepancies,
				"referenced seed commitment not found")

			return "", time.Time{}, false
		}

		return commitment.OnChainTxHash, commitment.BlockTimestamp, true

	case game.FairnessSeedID.Valid:
		seed, err := v.seeds.GetSeedByID(game.FairnessSeedID.Int64)
		if err != nil || seed == nil {
			report.Discrepancies = append(report.Discrepancies,
				"referenced fairness seed not found")

			return "", time.Time{}, false
		}

		return seed.OnChainTxHash, seed.BlockTimestamp, true

	default:
		return "", time.Time{}, false
	}
}

// resolveServerSeed returns the raw seed for internal replay and whether it
// may appear in the public report. Pool-mode seeds are one-shot and always
// revealable once the game completed; session-mode seeds reveal only after
// their epoch retired.
func (v *Verifier) resolveServerSeed(game *model.Game) (string, bool, error) {
	const op = "verify.Verifier.resolveServerSeed"

	if game.ServerSeed.Valid {
		return game.ServerSeed.String, true, nil
	}

	if !game.FairnessSeedID.Valid {
		return "", false, fmt.Errorf("%s: game %d has no seed reference", op, game.ID)
	}

	seed, err := v.seeds.GetSeedByID(game.FairnessSeedID.Int64)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	if seed == nil {
		return "", false, fmt.Errorf("%s: fairness seed %d not found", op, game.FairnessSeedID.Int64)
	}

	return seed.ServerSeed, seed.Revealed, nil
}

// TupleReport is the verdict of a raw seed-tuple check: anyone holding a
// revealed seed can re-derive the shuffle without trusting the operator.
type TupleReport struct {
	HashMatches    bool     `json:"hash_matches"`
	ServerSeedHash string   `json:"server_seed_hash"`
	Deck           []string `json:"deck,omitempty"`
}

// VerifyTuple checks a revealed seed against its published hash and, when
// it matches, re-derives the dealt order.
func (v *Verifier) VerifyTuple(serverSeed, clientSeed, expectedHash string, nonce int64, version int) (*TupleReport, error) {
	const op = "verify.Verifier.VerifyTuple"

	report := &TupleReport{
		ServerSeedHash: fairness.HashServerSeed(serverSeed),
	}

	report.HashMatches = report.ServerSeedHash == expectedHash

	if !report.HashMatches {
		return report, nil
	}

	order, err := fairness.Shuffle(serverSeed, clientSeed, nonce, 1, version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, idx := range order {
		report.Deck = append(report.Deck, blackjack.Card(idx).String())
	}

	return report, nil
}
