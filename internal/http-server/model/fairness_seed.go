package model

import (
	"database/sql"
	"time"
)

// SessionFairnessSeed is one seed epoch of a session's nonce stream.
// ClientSeed locks once NextNonce > 0; ServerSeed is revealable only after
// the epoch has been rotated out.
type SessionFairnessSeed struct {
	ID             int64        `json:"id"`
	SessionID      int64        `json:"session_id"`
	ServerSeed     string       `json:"-"`
	ServerSeedHash string       `json:"server_seed_hash"`
	ClientSeed     string       `json:"client_seed"`
	NextNonce      int64        `json:"next_nonce"`
	OnChainTxHash  string       `json:"on_chain_tx_hash"`
	BlockHeight    int64        `json:"block_height"`
	BlockTimestamp time.Time    `json:"block_timestamp"`
	Active         bool         `json:"active"`
	Revealed       bool         `json:"revealed"`
	RevealedAt     sql.NullTime `json:"revealed_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
