package play

import (
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/blackjack"
	"github.com/klausteuber/zcashino-sub002/internal/config"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/event"
	"github.com/klausteuber/zcashino-sub002/internal/lib/converter"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

// ProcessGameCompletion finalizes a round exactly once. The conditional
// active -> completed transition and the payout credit share one
// transaction; when the transition reports zero rows the payout was
// already applied by a concurrent or replayed request, and the credit is
// skipped as a safe no-op.
func (p *Play) ProcessGameCompletion(gameID int64, sessionID int64, settlement *blackjack.Settlement) error {
	const op = "play.Play.ProcessGameCompletion"

	log := p.log.With(slog.String("op", op), sl.Int64("game_id", gameID))

	payout := settlement.TotalPayout

	tx, err := p.games.StartTransaction()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	completed, err := p.games.CompleteGameTx(tx, gameID, settlement.OverallOutcome(), payout)
	if err != nil {
		p.rollback(tx)

		return fmt.Errorf("%s: %w", op, err)
	}

	if !completed {
		p.rollback(tx)

		log.Info("duplicate completion blocked", sl.Int64("payout", payout))

		return nil
	}

	if payout > 0 {
		if err = p.ledger.CreditFunds(tx, sessionID, payout, gameID); err != nil {
			p.rollback(tx)

			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("game completed",
		sl.String("outcome", settlement.OverallOutcome()),
		sl.Int64("payout", payout))

	if payout > 0 {
		p.ledger.PublishBalanceEvent(sessionID, payout, config.Income)
	}

	p.publishSettlementEvent(gameID, settlement)

	return nil
}

func (p *Play) publishSettlementEvent(gameID int64, settlement *blackjack.Settlement) {
	data := map[string]interface{}{
		"game_id": gameID,
		"outcome": settlement.OverallOutcome(),
		"stake":   converter.ConvertAmountZatoshiToString(settlement.TotalStake),
		"payout":  converter.ConvertAmountZatoshiToString(settlement.TotalPayout),
	}

	if err := p.pusher.TriggerEvent(event.GameChannel, event.SettlementEvent, data); err != nil {
		p.log.Error("failed to publish settlement event", sl.Err(err))
	}
}
