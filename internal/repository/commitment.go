package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
)

type CommitmentRepository struct {
	dbhandler mysql.Handler
}

func NewCommitmentRepository(dbhandler mysql.Handler) *CommitmentRepository {
	return &CommitmentRepository{dbhandler: dbhandler}
}

const commitmentColumns = "id, server_seed, server_seed_hash, on_chain_tx_hash, block_height, " +
	"block_timestamp, status, game_id, created_at, updated_at"

func (repo *CommitmentRepository) SaveCommitment(c model.SeedCommitment) (int64, error) {
	const op = "repository.commitment.SaveCommitment"

	now := time.Now()

	const query = "INSERT INTO seed_commitments(server_seed, server_seed_hash, on_chain_tx_hash, " +
		"block_height, block_timestamp, status, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)"
	res, err := repo.dbhandler.PrepareAndExecute(query,
		c.ServerSeed,
		c.ServerSeedHash,
		c.OnChainTxHash,
		c.BlockHeight,
		c.BlockTimestamp,
		model.CommitmentAvailable,
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

func (repo *CommitmentRepository) GetCommitmentByID(id int64) (*model.SeedCommitment, error) {
	const op = "repository.commitment.GetCommitmentByID"

	const query = "SELECT " + commitmentColumns + " FROM seed_commitments WHERE id = ?"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &model.SeedCommitment{}

	err = row.Scan(&c.ID, &c.ServerSeed, &c.ServerSeedHash, &c.OnChainTxHash, &c.BlockHeight,
		&c.BlockTimestamp, &c.Status, &c.GameID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// ClaimAvailableCommitment claims one available commitment with a single-row
// conditional update, never find-then-write. Two concurrent callers can pick
// the same candidate id, but only one update lands; the loser just tries the
// next candidate.
func (repo *CommitmentRepository) ClaimAvailableCommitment() (*model.SeedCommitment, error) {
	const op = "repository.commitment.ClaimAvailableCommitment"

	const candidateQuery = "SELECT id FROM seed_commitments WHERE status = ? ORDER BY id LIMIT 1 OFFSET ?"
	const claimQuery = "UPDATE seed_commitments SET status = ?, updated_at = ? WHERE id = ? AND status = ?"

	for offset := 0; offset < 5; offset++ {
		row, err := repo.dbhandler.PrepareAndQueryRow(candidateQuery, model.CommitmentAvailable, offset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		var id int64

		err = row.Scan(&id)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, nil
			}

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		affected, err := repo.dbhandler.ExecuteConditional(claimQuery,
			model.CommitmentClaimed, time.Now(), id, model.CommitmentAvailable)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if affected == 1 {
			return repo.GetCommitmentByID(id)
		}
	}

	return nil, nil
}

// MarkUsedTx binds a claimed commitment to exactly one game. Zero rows means
// the caller lost the race, which is reported, not raised.
func (repo *CommitmentRepository) MarkUsedTx(tx mysql.Tx, commitmentID int64, gameID int64) (bool, error) {
	const op = "repository.commitment.MarkUsedTx"

	now := time.Now()

	const query = "UPDATE seed_commitments SET status = ?, game_id = ?, updated_at = ? " +
		"WHERE id = ? AND status = ? AND game_id IS NULL"
	affected, err := repo.dbhandler.ExecuteConditionalTx(tx, query,
		model.CommitmentUsed, gameID, now, commitmentID, model.CommitmentClaimed)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

// ReleaseClaimedCommitment reverts claimed -> available so a failed game
// start does not strand supply.
func (repo *CommitmentRepository) ReleaseClaimedCommitment(commitmentID int64) (bool, error) {
	const op = "repository.commitment.ReleaseClaimedCommitment"

	now := time.Now()

	const query = "UPDATE seed_commitments SET status = ?, updated_at = ? WHERE id = ? AND status = ?"
	affected, err := repo.dbhandler.ExecuteConditional(query,
		model.CommitmentAvailable, now, commitmentID, model.CommitmentClaimed)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

func (repo *CommitmentRepository) ExpireOlderThan(cutoff time.Time) (int64, error) {
	const op = "repository.commitment.ExpireOlderThan"

	now := time.Now()

	const query = "UPDATE seed_commitments SET status = ?, updated_at = ? " +
		"WHERE status = ? AND created_at < ?"
	affected, err := repo.dbhandler.ExecuteConditional(query,
		model.CommitmentExpired, now, model.CommitmentAvailable, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return affected, nil
}

func (repo *CommitmentRepository) CountByStatus(status model.CommitmentStatus) (int, error) {
	const op = "repository.commitment.CountByStatus"

	const query = "SELECT COUNT(*) FROM seed_commitments WHERE status = ?"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, status)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var count int

	if err = row.Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (repo *CommitmentRepository) FindCommitmentByTxHash(txHash string) (*model.SeedCommitment, error) {
	const op = "repository.commitment.FindCommitmentByTxHash"

	const query = "SELECT " + commitmentColumns + " FROM seed_commitments WHERE on_chain_tx_hash = ?"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, txHash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &model.SeedCommitment{}

	err = row.Scan(&c.ID, &c.ServerSeed, &c.ServerSeedHash, &c.OnChainTxHash, &c.BlockHeight,
		&c.BlockTimestamp, &c.Status, &c.GameID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}
