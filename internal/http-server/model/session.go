package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Session is the player account. Balance only ever changes through the
// ledger's conditional updates; sessions are never hard-deleted.
type Session struct {
	ID             int64        `json:"id"`
	UUID           uuid.UUID    `json:"uuid"`
	WalletAddress  string       `json:"wallet_address"`
	Balance        int64        `json:"balance"`
	TotalWagered   int64        `json:"total_wagered"`
	TotalWon       int64        `json:"total_won"`
	Authenticated  bool         `json:"authenticated"`
	LossLimit      int64        `json:"loss_limit"`
	DepositLimit   int64        `json:"deposit_limit"`
	SessionMinutes int          `json:"session_minutes"`
	ExcludedUntil  sql.NullTime `json:"excluded_until"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
