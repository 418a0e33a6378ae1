package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
)

type FairnessSeedRepository struct {
	dbhandler mysql.Handler
}

func NewFairnessSeedRepository(dbhandler mysql.Handler) *FairnessSeedRepository {
	return &FairnessSeedRepository{dbhandler: dbhandler}
}

const fairnessSeedColumns = "id, session_id, server_seed, server_seed_hash, client_seed, " +
	"next_nonce, on_chain_tx_hash, block_height, block_timestamp, active, revealed, " +
	"revealed_at, created_at, updated_at"

func (repo *FairnessSeedRepository) SaveSeed(seed model.SessionFairnessSeed) (int64, error) {
	const op = "repository.fairness_seed.SaveSeed"

	now := time.Now()

	const query = "INSERT INTO session_fairness_seeds(session_id, server_seed, server_seed_hash, " +
		"client_seed, next_nonce, on_chain_tx_hash, block_height, block_timestamp, active, " +
		"revealed, created_at, updated_at) VALUES(?, ?, ?, ?, 0, ?, ?, ?, 1, 0, ?, ?)"
	res, err := repo.dbhandler.PrepareAndExecute(query,
		seed.SessionID,
		seed.ServerSeed,
		seed.ServerSeedHash,
		seed.ClientSeed,
		seed.OnChainTxHash,
		seed.BlockHeight,
		seed.BlockTimestamp,
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

func (repo *FairnessSeedRepository) GetSeedByID(id int64) (*model.SessionFairnessSeed, error) {
	const op = "repository.fairness_seed.GetSeedByID"

	const query = "SELECT " + fairnessSeedColumns + " FROM session_fairness_seeds WHERE id = ?"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return repo.scanSeed(row)
}

func (repo *FairnessSeedRepository) FindActiveBySessionID(sessionID int64) (*model.SessionFairnessSeed, error) {
	const op = "repository.fairness_seed.FindActiveBySessionID"

	const query = "SELECT " + fairnessSeedColumns + " FROM session_fairness_seeds " +
		"WHERE session_id = ? AND active = 1 ORDER BY id DESC LIMIT 1"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return repo.scanSeed(row)
}

func (repo *FairnessSeedRepository) scanSeed(row *sql.Row) (*model.SessionFairnessSeed, error) {
	const op = "repository.fairness_seed.scanSeed"

	seed := &model.SessionFairnessSeed{}

	err := row.Scan(
		&seed.ID,
		&seed.SessionID,
		&seed.ServerSeed,
		&seed.ServerSeedHash,
		&seed.ClientSeed,
		&seed.NextNonce,
		&seed.OnChainTxHash,
		&seed.BlockHeight,
		&seed.BlockTimestamp,
		&seed.Active,
		&seed.Revealed,
		&seed.RevealedAt,
		&seed.CreatedAt,
		&seed.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seed, nil
}

// AllocateNonce atomically increments next_nonce and returns the nonce to
// play with (the pre-increment value). LAST_INSERT_ID makes increment and
// read a single statement, so concurrent wagers on one session never share
// a nonce.
func (repo *FairnessSeedRepository) AllocateNonce(seedID int64) (int64, error) {
	const op = "repository.fairness_seed.AllocateNonce"

	now := time.Now()

	const query = "UPDATE session_fairness_seeds " +
		"SET next_nonce = LAST_INSERT_ID(next_nonce + 1), updated_at = ? " +
		"WHERE id = ? AND active = 1"
	res, err := repo.dbhandler.PrepareAndExecute(query, now, seedID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if affected == 0 {
		return 0, fmt.Errorf("%s: seed %d is not active", op, seedID)
	}

	newNonce, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return newNonce - 1, nil
}

// SetClientSeed only succeeds while the epoch is untouched (next_nonce = 0).
func (repo *FairnessSeedRepository) SetClientSeed(seedID int64, clientSeed string) (bool, error) {
	const op = "repository.fairness_seed.SetClientSeed"

	now := time.Now()

	const query = "UPDATE session_fairness_seeds SET client_seed = ?, updated_at = ? " +
		"WHERE id = ? AND active = 1 AND next_nonce = 0"
	affected, err := repo.dbhandler.ExecuteConditional(query, clientSeed, now, seedID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

// RetireSeed rotates the epoch out: it stops serving nonces and its server
// seed becomes revealable. The NOT EXISTS guard keeps an epoch with a round
// still in flight from retiring; revealing its seed mid-round would hand
// the player the rest of the shoe.
func (repo *FairnessSeedRepository) RetireSeed(seedID int64) (bool, error) {
	const op = "repository.fairness_seed.RetireSeed"

	now := time.Now()

	const query = "UPDATE session_fairness_seeds SET active = 0, revealed = 1, revealed_at = ?, " +
		"updated_at = ? WHERE id = ? AND active = 1 AND NOT EXISTS " +
		"(SELECT 1 FROM games WHERE games.fairness_seed_id = session_fairness_seeds.id " +
		"AND games.status = ?)"
	affected, err := repo.dbhandler.ExecuteConditional(query, now, now, seedID, model.GameActive)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}
