package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/klausteuber/zcashino-sub002/internal/config"
)

type GameStatus string

const (
	GameActive    GameStatus = "active"
	GameCompleted GameStatus = "completed"
)

// Game is one played round. No intermediate hand state is persisted:
// ActionHistory plus the seed tuple fully determine every card dealt, and
// mid-round state is rebuilt by replay.
type Game struct {
	ID              int64                  `json:"id"`
	UUID            uuid.UUID              `json:"uuid"`
	SessionID       int64                  `json:"session_id"`
	MainBet         int64                  `json:"main_bet"`
	PerfectPairsBet int64                  `json:"perfect_pairs_bet"`
	InsuranceBet    int64                  `json:"insurance_bet"`
	ServerSeed      sql.NullString         `json:"-"`
	ServerSeedHash  string                 `json:"server_seed_hash"`
	ClientSeed      string                 `json:"client_seed"`
	Nonce           int64                  `json:"nonce"`
	FairnessVersion config.FairnessVersion `json:"fairness_version"`
	FairnessMode    config.FairnessMode    `json:"fairness_mode"`
	CommitmentID    sql.NullInt64          `json:"commitment_id"`
	FairnessSeedID  sql.NullInt64          `json:"fairness_seed_id"`
	ActionHistory   []string               `json:"action_history"`
	Status          GameStatus             `json:"status"`
	Outcome         sql.NullString         `json:"outcome"`
	Payout          int64                  `json:"payout"`
	VerifiedOnChain bool                   `json:"verified_on_chain"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}
