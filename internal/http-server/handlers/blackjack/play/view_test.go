package play

import (
	"testing"

	"github.com/google/uuid"

	"github.com/klausteuber/zcashino-sub002/internal/blackjack"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
)

func activeRound(t *testing.T) (*model.Game, *blackjack.State) {
	t.Helper()

	const mainBet = int64(1_000_000)

	state := blackjack.NewState(100 * mainBet)

	// Seed tuple chosen so the opening deal leaves the player in play.
	err := state.StartRound(mainBet, 0, "server", "client", 11, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Phase != blackjack.PhasePlayerTurn {
		t.Skip("deal settled immediately for this tuple")
	}

	game := &model.Game{
		UUID:            uuid.New(),
		MainBet:         mainBet,
		ServerSeedHash:  "hash",
		ClientSeed:      "client",
		Nonce:           11,
		FairnessVersion: 2,
		FairnessMode:    "session",
		Status:          model.GameActive,
	}

	return game, state
}

func TestRoundViewHidesHoleCard(t *testing.T) {
	game, state := activeRound(t)

	view := NewRoundView(game, state)

	if len(view.Dealer.Cards) != 1 {
		t.Fatalf("only the up card may show mid-round, got %d cards", len(view.Dealer.Cards))
	}

	if view.Dealer.Cards[0] != state.DealerUpCard().String() {
		t.Errorf("unexpected up card, want: %s, got: %s",
			state.DealerUpCard().String(), view.Dealer.Cards[0])
	}

	if view.Settlement != nil {
		t.Error("no settlement may show before completion")
	}

	if len(view.AvailableActions) == 0 {
		t.Error("an in-play round must list available actions")
	}
}

func TestRoundViewShowsFullDealerHandWhenComplete(t *testing.T) {
	game, state := activeRound(t)

	for state.Phase == blackjack.PhasePlayerTurn {
		if _, err := state.ExecuteAction(blackjack.ActionStand); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	game.Status = model.GameCompleted

	view := NewRoundView(game, state)

	if len(view.Dealer.Cards) < 2 {
		t.Errorf("completed round must reveal the dealer hand, got %d cards", len(view.Dealer.Cards))
	}

	if view.Settlement == nil {
		t.Fatal("completed round must carry a settlement")
	}

	if view.AvailableActions != nil {
		t.Error("completed round must not offer actions")
	}
}
