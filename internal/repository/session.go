package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/klausteuber/zcashino-sub002/internal/config"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
)

type SessionRepository struct {
	dbhandler mysql.Handler
}

func NewSessionRepository(dbhandler mysql.Handler) *SessionRepository {
	return &SessionRepository{dbhandler: dbhandler}
}

const sessionColumns = "id, uuid, wallet_address, balance, total_wagered, total_won, " +
	"authenticated, loss_limit, deposit_limit, session_minutes, excluded_until, " +
	"created_at, updated_at"

func (repo *SessionRepository) FindSessionByUUID(uuidStr string) (*model.Session, error) {
	const op = "repository.session.FindSessionByUUID"

	const query = "SELECT " + sessionColumns + " FROM sessions WHERE uuid = ?"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, uuidStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := repo.scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return session, nil
}

func (repo *SessionRepository) GetSessionByID(sessionID int64) (*model.Session, error) {
	const op = "repository.session.GetSessionByID"

	const query = "SELECT " + sessionColumns + " FROM sessions WHERE id = ?"
	row, err := repo.dbhandler.PrepareAndQueryRow(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := repo.scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if session == nil {
		return nil, fmt.Errorf("%s: session %d not found", op, sessionID)
	}

	return session, nil
}

func (repo *SessionRepository) scanSession(row *sql.Row) (*model.Session, error) {
	const op = "repository.session.scanSession"

	session := &model.Session{}

	var rawUUID string

	err := row.Scan(
		&session.ID,
		&rawUUID,
		&session.WalletAddress,
		&session.Balance,
		&session.TotalWagered,
		&session.TotalWon,
		&session.Authenticated,
		&session.LossLimit,
		&session.DepositLimit,
		&session.SessionMinutes,
		&session.ExcludedUntil,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session.UUID, err = uuid.Parse(rawUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return session, nil
}

func (repo *SessionRepository) CreateSession(walletAddress string) (int64, error) {
	const op = "repository.session.CreateSession"

	now := time.Now()

	const query = "INSERT INTO sessions(uuid, wallet_address, balance, total_wagered, total_won, " +
		"authenticated, loss_limit, deposit_limit, session_minutes, excluded_until, " +
		"created_at, updated_at) VALUES(?, ?, 0, 0, 0, 0, 0, 0, 0, NULL, ?, ?)"
	res, err := repo.dbhandler.PrepareAndExecute(query, uuid.New().String(), walletAddress, now, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// ReserveFundsTx conditionally debits the balance inside the caller's
// transaction. The WHERE balance >= amount guard makes concurrent
// over-reservation impossible; zero rows means insufficient balance.
func (repo *SessionRepository) ReserveFundsTx(tx mysql.Tx, sessionID int64, amount int64) (bool, error) {
	const op = "repository.session.ReserveFundsTx"

	now := time.Now()

	const query = "UPDATE sessions SET balance = balance - ?, total_wagered = total_wagered + ?, " +
		"updated_at = ? WHERE id = ? AND balance >= ?"
	affected, err := repo.dbhandler.ExecuteConditionalTx(tx, query, amount, amount, now, sessionID, amount)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return affected == 1, nil
}

// CreditFundsTx unconditionally credits the balance inside the caller's
// transaction. Callers pair it with the completion guard in the same tx.
func (repo *SessionRepository) CreditFundsTx(tx mysql.Tx, sessionID int64, amount int64) error {
	const op = "repository.session.CreditFundsTx"

	now := time.Now()

	const query = "UPDATE sessions SET balance = balance + ?, total_won = total_won + ?, " +
		"updated_at = ? WHERE id = ?"
	if _, err := repo.dbhandler.ExecuteConditionalTx(tx, query, amount, amount, now, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *SessionRepository) CreateBalanceTransactionTx(
	tx mysql.Tx,
	sessionID int64,
	amount int64,
	balanceType config.BalanceType,
	game config.Game,
	gameID int64,
) error {
	const op = "repository.session.CreateBalanceTransactionTx"

	now := time.Now()

	const query = "INSERT INTO balance_transactions(session_id, amount, type, module, game_id, " +
		"created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)"
	if _, err := tx.Exec(query, sessionID, amount, balanceType, game, gameID, now, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *SessionRepository) StartTransaction() (mysql.Tx, error) {
	const op = "repository.session.StartTransaction"

	tx, err := repo.dbhandler.StartTransaction()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tx, nil
}
