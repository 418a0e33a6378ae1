package blackjack

import (
	"errors"
	"testing"
)

// playerTurnState builds a mid-round state with a known deal and a known
// remainder of the deck, bypassing the shuffle.
func playerTurnState(balance int64, player, dealer []Card, rest ...Card) *State {
	state := NewState(balance)
	state.Phase = PhasePlayerTurn
	state.MainBet = testBet
	state.Balance -= testBet
	state.Hands = []Hand{{Cards: player, Bet: testBet}}
	state.Dealer = Hand{Cards: dealer}

	deck := append(append([]Card{}, player...), dealer...)
	deck = append(deck, rest...)
	state.Deck = deck
	state.DealtCount = len(player) + len(dealer)

	return state
}

func TestParseAction(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    Action
		wantErr bool
	}{
		{
			name: "Hit",
			raw:  "hit",
			want: ActionHit,
		},
		{
			name: "Surrender",
			raw:  "surrender",
			want: ActionSurrender,
		},
		{
			name:    "Unknown",
			raw:     "fold",
			wantErr: true,
		},
		{
			name:    "InsuranceIsNotAnAction",
			raw:     "insurance",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAction(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("unexpected action, want: %s, got: %s", tc.want, got)
			}
		})
	}
}

func TestHitBustsAndAdvances(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(9, 0), card(9, 1)},
		[]Card{card(6, 0), card(9, 2)},
		card(4, 0))

	applied, err := state.ExecuteAction(ActionHit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !applied {
		t.Fatal("hit must apply")
	}

	if !state.Hands[0].Busted {
		t.Error("hand must bust on 25")
	}

	if state.Phase != PhaseComplete {
		t.Errorf("round must complete after the last hand busts, got %s", state.Phase)
	}
}

func TestHitToTwentyOneAutoStands(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(9, 0), card(8, 1)},
		[]Card{card(6, 0), card(9, 2)},
		card(1, 0), card(9, 3), card(9, 1))

	applied, err := state.ExecuteAction(ActionHit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !applied {
		t.Fatal("hit must apply")
	}

	if !state.Hands[0].Stood {
		t.Error("hand must auto-stand on 21")
	}
}

func TestDoubleDoublesBetAndDrawsOnce(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(4, 0), card(5, 1)},
		[]Card{card(6, 0), card(9, 2)},
		card(9, 0), card(9, 3), card(9, 1))

	balanceBefore := state.Balance

	applied, err := state.ExecuteAction(ActionDouble)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !applied {
		t.Fatal("double must apply")
	}

	hand := state.Hands[0]

	if hand.Bet != 2*testBet {
		t.Errorf("unexpected bet, want: %d, got: %d", 2*testBet, hand.Bet)
	}

	if len(hand.Cards) != 3 {
		t.Errorf("double must draw exactly one card, hand has %d", len(hand.Cards))
	}

	if !hand.Doubled || !hand.Stood {
		t.Error("doubled hand must be marked doubled and stood")
	}

	// Doubling ends the hand, so the round has settled and the payout is
	// already back in the balance.
	want := balanceBefore - testBet + state.Settlement.TotalPayout
	if state.Balance != want {
		t.Errorf("unexpected balance, want: %d, got: %d", want, state.Balance)
	}
}

func TestDoubleUnavailableAfterHit(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(1, 0), card(2, 1)},
		[]Card{card(6, 0), card(9, 2)},
		card(1, 2), card(9, 3), card(9, 1), card(9, 0))

	if applied, err := state.ExecuteAction(ActionHit); err != nil || !applied {
		t.Fatalf("hit failed: applied=%v err=%v", applied, err)
	}

	if _, err := state.ExecuteAction(ActionDouble); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("unexpected error, want: %v, got: %v", ErrIllegalAction, err)
	}
}

func TestSplitPairPlaysBothHands(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(7, 0), card(7, 1)},
		[]Card{card(6, 0), card(9, 2)},
		card(2, 0), card(3, 0), card(9, 3), card(9, 1), card(9, 0))

	applied, err := state.ExecuteAction(ActionSplit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !applied {
		t.Fatal("split must apply")
	}

	if len(state.Hands) != 2 {
		t.Fatalf("expected 2 hands, got %d", len(state.Hands))
	}

	for i, hand := range state.Hands {
		if len(hand.Cards) != 2 {
			t.Errorf("hand %d must hold 2 cards after the split draw, has %d", i, len(hand.Cards))
		}

		if !hand.FromSplit {
			t.Errorf("hand %d must be marked as split", i)
		}

		if hand.Bet != testBet {
			t.Errorf("hand %d bet must match the original, got %d", i, hand.Bet)
		}
	}
}

func TestSplitAcesGetOneCardAndStand(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(0, 0), card(0, 1)},
		[]Card{card(6, 0), card(9, 2)},
		card(4, 0), card(5, 0), card(9, 3), card(9, 1))

	applied, err := state.ExecuteAction(ActionSplit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !applied {
		t.Fatal("split must apply")
	}

	for i, hand := range state.Hands {
		if !hand.Stood {
			t.Errorf("split ace hand %d must stand after one card", i)
		}
	}

	// Both hands stood, so the dealer has played and the round is settled.
	if state.Phase != PhaseComplete {
		t.Errorf("round must complete after split aces, got %s", state.Phase)
	}
}

func TestSurrenderUnavailableOnSplitHand(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(7, 0), card(7, 1)},
		[]Card{card(6, 0), card(9, 2)},
		card(2, 0), card(3, 0), card(9, 3), card(9, 1), card(9, 0))

	if applied, err := state.ExecuteAction(ActionSplit); err != nil || !applied {
		t.Fatalf("split failed: applied=%v err=%v", applied, err)
	}

	if _, err := state.ExecuteAction(ActionSurrender); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("unexpected error, want: %v, got: %v", ErrIllegalAction, err)
	}
}

func TestPeekForcedCompletion(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(4, 0), card(5, 1)},
		[]Card{card(0, 0), card(12, 2)})

	applied, err := state.ExecuteAction(ActionHit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if applied {
		t.Fatal("action must not apply once the peek finds blackjack")
	}

	if !state.DealerBlackjack {
		t.Error("peek must flag the dealer blackjack")
	}

	if state.Phase != PhaseComplete {
		t.Errorf("round must complete on the peek, got %s", state.Phase)
	}

	if state.Settlement.TotalPayout != 0 {
		t.Errorf("plain loss must pay nothing, got %d", state.Settlement.TotalPayout)
	}
}

func TestPeekRunsOnlyOnce(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(4, 0), card(5, 1)},
		[]Card{card(0, 0), card(8, 2)},
		card(9, 0), card(9, 3), card(9, 1))

	applied, err := state.ExecuteAction(ActionStand)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !applied {
		t.Fatal("stand must apply when the peek finds no blackjack")
	}

	if !state.PeekDone {
		t.Error("peek must be marked done")
	}
}

func TestGetAvailableActions(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(7, 0), card(7, 1)},
		[]Card{card(6, 0), card(9, 2)},
		card(2, 0))

	actions := state.GetAvailableActions()

	want := map[Action]bool{
		ActionHit:       true,
		ActionStand:     true,
		ActionDouble:    true,
		ActionSplit:     true,
		ActionSurrender: true,
	}

	if len(actions) != len(want) {
		t.Fatalf("unexpected action count, want: %d, got: %d (%v)", len(want), len(actions), actions)
	}

	for _, action := range actions {
		if !want[action] {
			t.Errorf("unexpected action %s", action)
		}
	}
}

func TestTakeInsurance(t *testing.T) {
	cases := []struct {
		name    string
		dealer  []Card
		amount  int64
		wantErr error
	}{
		{
			name:   "Accepted",
			dealer: []Card{card(0, 0), card(8, 2)},
			amount: testBet / 2,
		},
		{
			name:    "DeniedWithoutAceUp",
			dealer:  []Card{card(9, 0), card(8, 2)},
			amount:  testBet / 2,
			wantErr: ErrInsuranceDenied,
		},
		{
			name:    "DeniedAboveHalfBet",
			dealer:  []Card{card(0, 0), card(8, 2)},
			amount:  testBet,
			wantErr: ErrInsuranceDenied,
		},
		{
			name:    "DeniedZeroAmount",
			dealer:  []Card{card(0, 0), card(8, 2)},
			amount:  0,
			wantErr: ErrInsuranceDenied,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state := playerTurnState(100*testBet,
				[]Card{card(4, 0), card(5, 1)},
				tc.dealer,
				card(9, 0), card(9, 3), card(9, 1))

			err := state.TakeInsurance(tc.amount)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("unexpected error, want: %v, got: %v", tc.wantErr, err)
			}

			if tc.wantErr == nil && state.InsuranceBet != tc.amount {
				t.Errorf("unexpected insurance bet, want: %d, got: %d", tc.amount, state.InsuranceBet)
			}
		})
	}
}

func TestInsuranceTriggersPeek(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(4, 0), card(5, 1)},
		[]Card{card(0, 0), card(12, 2)})

	if err := state.TakeInsurance(testBet / 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Phase != PhaseComplete {
		t.Fatalf("peek must complete the round, got %s", state.Phase)
	}

	if !state.Settlement.InsuranceWon {
		t.Error("insurance must win against the revealed natural")
	}

	if want := testBet; state.Settlement.InsurancePayout != want {
		t.Errorf("unexpected insurance payout, want: %d, got: %d", want, state.Settlement.InsurancePayout)
	}
}
