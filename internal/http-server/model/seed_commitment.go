package model

import (
	"database/sql"
	"time"
)

type CommitmentStatus string

const (
	CommitmentAvailable CommitmentStatus = "available"
	CommitmentClaimed   CommitmentStatus = "claimed"
	CommitmentUsed      CommitmentStatus = "used"
	CommitmentExpired   CommitmentStatus = "expired"
)

// SeedCommitment is one pre-committed server seed in the pool. Once used it
// is permanently bound to exactly one game.
type SeedCommitment struct {
	ID             int64            `json:"id"`
	ServerSeed     string           `json:"-"`
	ServerSeedHash string           `json:"server_seed_hash"`
	OnChainTxHash  string           `json:"on_chain_tx_hash"`
	BlockHeight    int64            `json:"block_height"`
	BlockTimestamp time.Time        `json:"block_timestamp"`
	Status         CommitmentStatus `json:"status"`
	GameID         sql.NullInt64    `json:"game_id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
