package model

import (
	"time"

	"github.com/klausteuber/zcashino-sub002/internal/config"
)

type BalanceTransaction struct {
	ID        int64              `json:"id"`
	SessionID int64              `json:"session_id"`
	Amount    int64              `json:"amount"`
	Type      config.BalanceType `json:"type"`
	Module    config.Game        `json:"module"`
	GameID    int64              `json:"game_id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
