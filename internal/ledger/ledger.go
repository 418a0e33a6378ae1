package ledger

import (
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/config"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/event"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	"github.com/klausteuber/zcashino-sub002/internal/lib/converter"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

// SessionStore is the slice of the session repository the ledger needs.
//
//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=SessionStore
type SessionStore interface {
	GetSessionByID(sessionID int64) (*model.Session, error)
	ReserveFundsTx(tx mysql.Tx, sessionID int64, amount int64) (bool, error)
	CreditFundsTx(tx mysql.Tx, sessionID int64, amount int64) error
	CreateBalanceTransactionTx(tx mysql.Tx, sessionID int64, amount int64,
		balanceType config.BalanceType, game config.Game, gameID int64) error
}

type EventPublisher interface {
	TriggerEvent(channel string, eventName string, data map[string]interface{}) error
}

// Ledger owns every balance mutation. Both operations compose inside a
// caller-supplied transaction: the call sites need reservation or credit
// to commit-or-rollback together with a game-state transition.
type Ledger struct {
	sessions SessionStore
	log      *slog.Logger
	pusher   EventPublisher
}

func New(sessions SessionStore, log *slog.Logger, pusher EventPublisher) *Ledger {
	return &Ledger{
		sessions: sessions,
		log:      log,
		pusher:   pusher,
	}
}

// ReserveFunds conditionally debits the balance and books the audit row in
// the caller's transaction. A false return means insufficient balance,
// which is business logic for the caller, not a fault.
func (l *Ledger) ReserveFunds(tx mysql.Tx, sessionID int64, amount int64, gameID int64) (bool, error) {
	const op = "ledger.Ledger.ReserveFunds"

	reserved, err := l.sessions.ReserveFundsTx(tx, sessionID, amount)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if !reserved {
		return false, nil
	}

	err = l.sessions.CreateBalanceTransactionTx(tx, sessionID, amount, config.Outcome, config.Blackjack, gameID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

// CreditFunds unconditionally credits the balance and books the audit row
// in the caller's transaction. Callers pair it with the completion guard
// so "mark completed" and "pay out" are one atomic step.
func (l *Ledger) CreditFunds(tx mysql.Tx, sessionID int64, amount int64, gameID int64) error {
	const op = "ledger.Ledger.CreditFunds"

	if err := l.sessions.CreditFundsTx(tx, sessionID, amount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := l.sessions.CreateBalanceTransactionTx(tx, sessionID, amount, config.Income, config.Blackjack, gameID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PublishBalanceEvent fires the post-commit balance notification.
// Best-effort: the transaction is already durable, a lost event never
// rolls money back.
func (l *Ledger) PublishBalanceEvent(sessionID int64, amount int64, balanceType config.BalanceType) {
	session, err := l.sessions.GetSessionByID(sessionID)
	if err != nil {
		l.log.Error("failed to load session for balance event", sl.Err(err))

		return
	}

	eventName := event.IncomeEvent
	if balanceType == config.Outcome {
		eventName = event.OutcomeEvent
	}

	data := map[string]interface{}{
		"session_uuid":   session.UUID.String(),
		"amount":         converter.ConvertAmountZatoshiToString(amount),
		"operation_type": string(balanceType),
		"module":         string(config.Blackjack),
		"balance":        converter.ConvertAmountZatoshiToString(session.Balance),
	}

	if err = l.pusher.TriggerEvent(event.BalanceChannel, eventName, data); err != nil {
		l.log.Error("failed to publish balance event", sl.Err(err))
	}
}
