package play

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/blackjack"
	"github.com/klausteuber/zcashino-sub002/internal/config"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

var (
	ErrGameNotFound        = errors.New("play: game not found")
	ErrWrongOwner          = errors.New("play: game belongs to another session")
	ErrGameCompleted       = errors.New("play: game already completed")
	ErrInsufficientBalance = errors.New("play: insufficient balance")
	ErrActionConflict      = errors.New("play: round changed under the request")
)

// GameStore is the slice of the game repository the orchestrator needs.
//
//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=GameStore
type GameStore interface {
	SaveGameTx(tx mysql.Tx, game model.Game) (int64, error)
	FindGameByUUID(uuidStr string) (*model.Game, error)
	UpdateActionHistoryTx(tx mysql.Tx, gameID int64, history []string, prior []string) (bool, error)
	SetInsuranceBetTx(tx mysql.Tx, gameID int64, amount int64) (bool, error)
	CompleteGameTx(tx mysql.Tx, gameID int64, outcome string, payout int64) (bool, error)
	StartTransaction() (mysql.Tx, error)
}

// Funds is the ledger surface used per wager.
type Funds interface {
	ReserveFunds(tx mysql.Tx, sessionID int64, amount int64, gameID int64) (bool, error)
	CreditFunds(tx mysql.Tx, sessionID int64, amount int64, gameID int64) error
	PublishBalanceEvent(sessionID int64, amount int64, balanceType config.BalanceType)
}

// CommitmentSource is the pool-mode seed lifecycle.
type CommitmentSource interface {
	GetOrCreateCommitment(ctx context.Context) (*model.SeedCommitment, error)
	MarkCommitmentUsedTx(tx mysql.Tx, commitmentID int64, gameID int64) (bool, error)
	ReleaseClaimedCommitment(commitmentID int64) error
}

// SeedStream is the session-mode seed lifecycle.
type SeedStream interface {
	AllocateNonce(ctx context.Context, sessionID int64) (*model.SessionFairnessSeed, int64, error)
	ServerSeed(seedID int64) (string, error)
}

type EventPublisher interface {
	TriggerEvent(channel string, eventName string, data map[string]interface{}) error
}

// Play coordinates one game round end to end: seed resolution, the
// deterministic deal, fund reservation, action replay and the guarded
// completion. All cross-request state lives in the persisted rows; every
// race resolves through a conditional update, not a lock.
type Play struct {
	log    *slog.Logger
	games  GameStore
	ledger Funds
	pool   CommitmentSource
	stream SeedStream
	pusher EventPublisher
	mode   config.FairnessMode
}

func New(
	log *slog.Logger,
	games GameStore,
	ledger Funds,
	pool CommitmentSource,
	stream SeedStream,
	pusher EventPublisher,
	mode config.FairnessMode,
) *Play {
	return &Play{
		log:    log,
		games:  games,
		ledger: ledger,
		pool:   pool,
		stream: stream,
		pusher: pusher,
		mode:   mode,
	}
}

// Result is what a round operation hands back to the HTTP layer.
type Result struct {
	Game  *model.Game
	State *blackjack.State
}

// StartGame deals a new round. Seed resource claim, fund reservation and
// game-row creation commit or roll back together; a claimed commitment is
// always released when the start fails after the claim.
func (p *Play) StartGame(
	ctx context.Context,
	session *model.Session,
	mainBet int64,
	perfectPairsBet int64,
	clientSeed string,
) (*Result, error) {
	const op = "play.Play.StartGame"

	log := p.log.With(slog.String("op", op), sl.Int64("session_id", session.ID))

	game := model.Game{
		UUID:            uuid.New(),
		SessionID:       session.ID,
		MainBet:         mainBet,
		PerfectPairsBet: perfectPairsBet,
		FairnessVersion: config.FairnessV2,
		FairnessMode:    p.mode,
		ActionHistory:   []string{},
		Status:          model.GameActive,
	}

	var (
		serverSeed   string
		commitmentID int64
	)

	switch p.mode {
	case config.FairnessModePool:
		commitment, err := p.pool.GetOrCreateCommitment(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if clientSeed == "" {
			clientSeed = uuid.New().String()
		}

		serverSeed = commitment.ServerSeed
		commitmentID = commitment.ID
		game.ServerSeed = sql.NullString{String: serverSeed, Valid: true}
		game.ServerSeedHash = commitment.ServerSeedHash
		game.ClientSeed = clientSeed
		game.Nonce = 0
		game.CommitmentID = sql.NullInt64{Int64: commitment.ID, Valid: true}

	default:
		seed, nonce, err := p.stream.AllocateNonce(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		serverSeed = seed.ServerSeed
		game.ServerSeedHash = seed.ServerSeedHash
		game.ClientSeed = seed.ClientSeed
		game.Nonce = nonce
		game.FairnessSeedID = sql.NullInt64{Int64: seed.ID, Valid: true}
	}

	state := blackjack.NewState(session.Balance)

	err := state.StartRound(mainBet, perfectPairsBet, serverSeed, game.ClientSeed, game.Nonce, game.FairnessVersion)
	if err != nil {
		p.releaseCommitment(commitmentID)

		if errors.Is(err, blackjack.ErrInsufficientFunds) {
			return nil, ErrInsufficientBalance
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stake := mainBet + perfectPairsBet

	tx, err := p.games.StartTransaction()
	if err != nil {
		p.releaseCommitment(commitmentID)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The game row goes in first so the reservation's audit row can
	// reference the id it is staked against.
	gameID, err := p.games.SaveGameTx(tx, game)
	if err != nil {
		p.rollback(tx)
		p.releaseCommitment(commitmentID)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	game.ID = gameID

	reserved, err := p.ledger.ReserveFunds(tx, session.ID, stake, gameID)
	if err != nil {
		p.rollback(tx)
		p.releaseCommitment(commitmentID)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !reserved {
		p.rollback(tx)
		p.releaseCommitment(commitmentID)

		return nil, ErrInsufficientBalance
	}

	if commitmentID != 0 {
		used, err := p.pool.MarkCommitmentUsedTx(tx, commitmentID, gameID)
		if err != nil {
			p.rollback(tx)
			p.releaseCommitment(commitmentID)

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if !used {
			// Lost the claim race after all; do not deal on a seed
			// another game may own.
			p.rollback(tx)

			log.Warn("commitment claim race lost at bind time",
				sl.Int64("commitment_id", commitmentID))

			return nil, fmt.Errorf("%s: commitment already bound", op)
		}
	}

	if err = tx.Commit(); err != nil {
		p.releaseCommitment(commitmentID)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("game started",
		sl.Int64("game_id", gameID),
		sl.String("fairness_mode", string(p.mode)))

	p.ledger.PublishBalanceEvent(session.ID, stake, config.Outcome)

	if state.Phase == blackjack.PhaseComplete {
		if err = p.ProcessGameCompletion(game.ID, session.ID, state.Settlement); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		game.Status = model.GameCompleted
	}

	return &Result{Game: &game, State: state}, nil
}

// ApplyAction replays the stored history to rebuild the round, then
// applies one player move. Extra funds for double/split are reserved in
// the same transaction that records the action.
func (p *Play) ApplyAction(
	ctx context.Context,
	session *model.Session,
	gameUUID string,
	rawAction string,
) (*Result, error) {
	const op = "play.Play.ApplyAction"

	log := p.log.With(slog.String("op", op), sl.String("game_uuid", gameUUID))

	game, state, err := p.loadAndReplay(session, gameUUID)
	if err != nil {
		return nil, err
	}

	action, err := blackjack.ParseAction(rawAction)
	if err != nil {
		return nil, blackjack.ErrIllegalAction
	}

	// Legality against the player's real balance, not the replay stub.
	state.Balance = session.Balance

	extraStake := int64(0)

	switch action {
	case blackjack.ActionDouble, blackjack.ActionSplit:
		extraStake = state.Hands[state.ActiveHand].Bet
	}

	tx, err := p.games.StartTransaction()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if extraStake > 0 {
		reserved, err := p.ledger.ReserveFunds(tx, session.ID, extraStake, game.ID)
		if err != nil {
			p.rollback(tx)

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if !reserved {
			p.rollback(tx)

			return nil, ErrInsufficientBalance
		}
	}

	applied, err := state.ExecuteAction(action)
	if err != nil {
		p.rollback(tx)

		return nil, err
	}

	if applied {
		history := append(game.ActionHistory, string(action))

		updated, err := p.games.UpdateActionHistoryTx(tx, game.ID, history, game.ActionHistory)
		if err != nil {
			p.rollback(tx)

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if !updated {
			// A concurrent action or completion landed first; everything
			// computed from the stale history rolls back, the reservation
			// included. The caller reloads and replays.
			p.rollback(tx)

			return nil, ErrActionConflict
		}

		game.ActionHistory = history

		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if extraStake > 0 {
			p.ledger.PublishBalanceEvent(session.ID, extraStake, config.Outcome)
		}
	} else {
		// Peek-forced auto-completion: the requested action never
		// happened, so neither its funds nor its history entry persist.
		p.rollback(tx)

		log.Info("dealer peek completed the round before the action applied")
	}

	if state.Phase == blackjack.PhaseComplete {
		if err = p.ProcessGameCompletion(game.ID, session.ID, state.Settlement); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		game.Status = model.GameCompleted
	}

	return &Result{Game: game, State: state}, nil
}

// TakeInsurance books an insurance bet, which also triggers the dealer
// peek when legal.
func (p *Play) TakeInsurance(
	ctx context.Context,
	session *model.Session,
	gameUUID string,
	amount int64,
) (*Result, error) {
	const op = "play.Play.TakeInsurance"

	game, state, err := p.loadAndReplay(session, gameUUID)
	if err != nil {
		return nil, err
	}

	state.Balance = session.Balance

	if err = state.TakeInsurance(amount); err != nil {
		if errors.Is(err, blackjack.ErrInsufficientFunds) {
			return nil, ErrInsufficientBalance
		}

		return nil, err
	}

	tx, err := p.games.StartTransaction()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reserved, err := p.ledger.ReserveFunds(tx, session.ID, amount, game.ID)
	if err != nil {
		p.rollback(tx)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !reserved {
		p.rollback(tx)

		return nil, ErrInsufficientBalance
	}

	set, err := p.games.SetInsuranceBetTx(tx, game.ID, amount)
	if err != nil {
		p.rollback(tx)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !set {
		p.rollback(tx)

		return nil, ErrActionConflict
	}

	history := append(game.ActionHistory, blackjack.ActionInsurance)

	updated, err := p.games.UpdateActionHistoryTx(tx, game.ID, history, game.ActionHistory)
	if err != nil {
		p.rollback(tx)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !updated {
		p.rollback(tx)

		return nil, ErrActionConflict
	}

	game.ActionHistory = history
	game.InsuranceBet = amount

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.ledger.PublishBalanceEvent(session.ID, amount, config.Outcome)

	if state.Phase == blackjack.PhaseComplete {
		if err = p.ProcessGameCompletion(game.ID, session.ID, state.Settlement); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		game.Status = model.GameCompleted
	}

	return &Result{Game: game, State: state}, nil
}

// loadAndReplay fetches the game row, resolves its server seed and rebuilds
// the round state by deterministic replay.
func (p *Play) loadAndReplay(session *model.Session, gameUUID string) (*model.Game, *blackjack.State, error) {
	const op = "play.Play.loadAndReplay"

	game, err := p.games.FindGameByUUID(gameUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if game == nil {
		return nil, nil, ErrGameNotFound
	}

	if game.SessionID != session.ID {
		return nil, nil, ErrWrongOwner
	}

	if game.Status != model.GameActive {
		return nil, nil, ErrGameCompleted
	}

	serverSeed, err := p.resolveServerSeed(game)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

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
		// A history that no longer replays is corrupt fairness data;
		// fail the request, never guess.
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return game, state, nil
}

func (p *Play) resolveServerSeed(game *model.Game) (string, error) {
	const op = "play.Play.resolveServerSeed"

	if game.ServerSeed.Valid {
		return game.ServerSeed.String, nil
	}

	if !game.FairnessSeedID.Valid {
		return "", fmt.Errorf("%s: game %d has no seed reference", op, game.ID)
	}

	seed, err := p.stream.ServerSeed(game.FairnessSeedID.Int64)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return seed, nil
}

func (p *Play) releaseCommitment(commitmentID int64) {
	if commitmentID == 0 {
		return
	}

	// Best-effort cleanup: a release failure is logged, never allowed to
	// mask the error that got us here.
	if err := p.pool.ReleaseClaimedCommitment(commitmentID); err != nil {
		p.log.Error("failed to release claimed commitment",
			sl.Int64("commitment_id", commitmentID),
			sl.Err(err))
	}
}

func (p *Play) rollback(tx mysql.Tx) {
	if err := tx.Rollback(); err != nil {
		p.log.Error("failed to roll back transaction", sl.Err(err))
	}
}
