package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
)

type GameRepository struct {
	dbhandler mysql.Handler
}

func NewGameRepository(dbhandler mysql.Handler) *GameRepository {
	return &GameRepository{dbhandler: dbhandler}
}

const gameColumns = "id, uuid, session_id, main_bet, perfect_pairs_bet, insurance_bet, " +
	"server_seed, server_seed_hash, client_seed, nonce, fairness_version, fairness_mode, " +
	"commitment_id, fairness_seed_id, action_history, status, outcome, payout, " +
	"verified_on_chain, created_at, updated_at"

// SaveGameTx inserts the game row inside the caller's transaction so the
// insert commits or rolls back together with the fund reservation.
func (repo *GameRepository) SaveGameTx(tx mysql.Tx, game model.Game) (int64, error) {
	const op = "repository.game.SaveGameTx"

	history, err := json.Marshal(game.ActionHistory)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()

	const query = "INSERT INTO games(uuid, session_id, main_bet, perfect_pairs_bet, insurance_bet, " +
		"server_seed, server_seed_hash, client_seed, nonce, fairness_version, fairness_mode, " +
		"commitment_id, fairness_seed_id, action_history, status, outcome, payout, " +
		"verified_on_chain, created_at, updated_at) " +
		"VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	res, err := tx.Exec(query,
		game.UUID.String(),
		game.SessionID,
		game.MainBet,
		game.PerfectPairsBet,
		game.InsuranceBet,
		game.ServerSeed,
		game.ServerSeedHash,
		game.ClientSeed,
		game.Nonce,
		game.FairnessVersion,
		game.FairnessMode,
		game.CommitmentID,
		game.FairnessSeedID,
		history,
		game.Status,
		game.Outcome,
		game.Payout,
		game.VerifiedOnChain,
		now,
		now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (repo *GameRepository) FindGameByUUID(uuidStr string) (*model.Game, error) {
	const op = "repository.game.FindGameByUUID"

	const query = "SELECT " + gameColumns + " FROM games WHERE uuid = ?"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, uuidStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return repo.scanGame(row)
}

func (repo *GameRepository) GetGameByID(gameID int64) (*model.Game, error) {
	const op = "repository.game.GetGameByID"

	const query = "SELECT " + gameColumns + " FROM games WHERE id = ?"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, gameID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	game, err := repo.scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return game, nil
}

func (repo *GameRepository) scanGame(row *sql.Row) (*model.Game, error) {
	const op = "repository.game.scanGame"

	game := &model.Game{}

	var (
		rawUUID    string
		rawHistory []byte
	)

	err := row.Scan(
		&game.ID,
		&rawUUID,
		&game.SessionID,
		&game.MainBet,
		&game.PerfectPairsBet,
		&game.InsuranceBet,
		&game.ServerSeed,
		&game.ServerSeedHash,
		&game.ClientSeed,
		&game.Nonce,
		&game.FairnessVersion,
		&game.FairnessMode,
		&game.CommitmentID,
		&game.FairnessSeedID,
		&rawHistory,
		&game.Status,
		&game.Outcome,
		&game.Payout,
		&game.VerifiedOnChain,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	game.UUID, err = uuid.Parse(rawUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = json.Unmarshal(rawHistory, &game.ActionHistory); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return game, nil
}

// UpdateActionHistoryTx appends one applied action by replacing the stored
// history, guarded on both status and the prior history the action was
// replayed from. Two concurrent appends computed from the same prior
// history race on this guard and exactly one lands; the loser must reload
// and replay. A completed game can never grow more actions.
func (repo *GameRepository) UpdateActionHistoryTx(tx mysql.Tx, gameID int64, history []string, prior []string) (bool, error) {
	const op = "repository.game.UpdateActionHistoryTx"

	raw, err := json.Marshal(history)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	priorRaw, err := json.Marshal(prior)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()

	const query = "UPDATE games SET action_history = ?, updated_at = ? " +
		"WHERE id = ? AND status = ? AND action_history = ?"
	affected, err := repo.dbhandler.ExecuteConditionalTx(tx, query, raw, now, gameID, model.GameActive, priorRaw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

func (repo *GameRepository) SetInsuranceBetTx(tx mysql.Tx, gameID int64, amount int64) (bool, error) {
	const op = "repository.game.SetInsuranceBetTx"

	now := time.Now()

	const query = "UPDATE games SET insurance_bet = ?, updated_at = ? " +
		"WHERE id = ? AND status = ? AND insurance_bet = 0"
	affected, err := repo.dbhandler.ExecuteConditionalTx(tx, query, amount, now, gameID, model.GameActive)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

// CompleteGameTx is the completion guard: the single conditional transition
// active -> completed. Exactly one caller ever sees affected == 1, and only
// that caller may credit the payout.
func (repo *GameRepository) CompleteGameTx(tx mysql.Tx, gameID int64, outcome string, payout int64) (bool, error) {
	const op = "repository.game.CompleteGameTx"

	now := time.Now()

	const query = "UPDATE games SET status = ?, outcome = ?, payout = ?, updated_at = ? " +
		"WHERE id = ? AND status = ?"
	affected, err := repo.dbhandler.ExecuteConditionalTx(tx, query,
		model.GameCompleted, outcome, payout, now, gameID, model.GameActive)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

// MarkVerifiedOnChain flips the flag at most once.
func (repo *GameRepository) MarkVerifiedOnChain(gameID int64) (bool, error) {
	const op = "repository.game.MarkVerifiedOnChain"

	now := time.Now()

	const query = "UPDATE games SET verified_on_chain = 1, updated_at = ? " +
		"WHERE id = ? AND verified_on_chain = 0"
	affected, err := repo.dbhandler.ExecuteConditional(query, now, gameID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

func (repo *GameRepository) StartTransaction() (mysql.Tx, error) {
	const op = "repository.game.StartTransaction"

	tx, err := repo.dbhandler.StartTransaction()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tx, nil
}
