package blackjack

import (
	"errors"
	"testing"
)

const testBet = int64(1_000_000)

func TestStartRoundValidation(t *testing.T) {
	cases := []struct {
		name            string
		balance         int64
		mainBet         int64
		perfectPairsBet int64
		wantErr         error
	}{
		{
			name:    "BelowTableMinimum",
			balance: 100 * testBet,
			mainBet: 1,
			wantErr: ErrInvalidBet,
		},
		{
			name:    "AboveTableMaximum",
			balance: 100_000_000_000,
			mainBet: 1_000_000_000,
			wantErr: ErrInvalidBet,
		},
		{
			name:            "SideBetAboveMainBet",
			balance:         100 * testBet,
			mainBet:         testBet,
			perfectPairsBet: 2 * testBet,
			wantErr:         ErrInvalidSideBet,
		},
		{
			name:            "NegativeSideBet",
			balance:         100 * testBet,
			mainBet:         testBet,
			perfectPairsBet: -1,
			wantErr:         ErrInvalidSideBet,
		},
		{
			name:    "InsufficientBalance",
			balance: testBet / 2,
			mainBet: testBet,
			wantErr: ErrInsufficientFunds,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state := NewState(tc.balance)

			err := state.StartRound(tc.mainBet, tc.perfectPairsBet, "server", "client", 0, 2)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("unexpected error, want: %v, got: %v", tc.wantErr, err)
			}

			if state.Phase != PhaseBetting {
				t.Errorf("rejected round must stay in betting phase, got %s", state.Phase)
			}
		})
	}
}

func TestStartRoundWrongPhase(t *testing.T) {
	state := NewState(100 * testBet)

	if err := state.StartRound(testBet, 0, "server", "client", 0, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := state.StartRound(testBet, 0, "server", "client", 1, 2); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("unexpected error, want: %v, got: %v", ErrWrongPhase, err)
	}
}

func TestStartRoundDeterministic(t *testing.T) {
	first := NewState(100 * testBet)
	second := NewState(100 * testBet)

	if err := first.StartRound(testBet, 0, "server", "client", 3, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := second.StartRound(testBet, 0, "server", "client", 3, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first.Hands[0].Cards {
		if first.Hands[0].Cards[i] != second.Hands[0].Cards[i] {
			t.Errorf("player card %d differs", i)
		}
	}

	for i := range first.Dealer.Cards {
		if first.Dealer.Cards[i] != second.Dealer.Cards[i] {
			t.Errorf("dealer card %d differs", i)
		}
	}
}

func TestStartRoundReservesStake(t *testing.T) {
	state := NewState(100 * testBet)

	if err := state.StartRound(testBet, testBet/2, "server", "client", 0, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A natural settles immediately and pays back into the balance, so the
	// stake deduction is only observable on a round still in play.
	if state.Phase == PhasePlayerTurn {
		want := 100*testBet - testBet - testBet/2
		if state.Balance != want {
			t.Errorf("unexpected balance, want: %d, got: %d", want, state.Balance)
		}
	}
}

func TestResolveSideBet(t *testing.T) {
	cases := []struct {
		name       string
		cards      []Card
		wantKind   string
		wantPayout int64
	}{
		{
			name:       "PerfectPair",
			cards:      []Card{card(7, 2), card(7, 2)},
			wantKind:   "perfect",
			wantPayout: testBet * 26,
		},
		{
			name:       "ColoredPair",
			cards:      []Card{card(7, 1), card(7, 2)},
			wantKind:   "colored",
			wantPayout: testBet * 13,
		},
		{
			name:       "MixedPair",
			cards:      []Card{card(7, 0), card(7, 1)},
			wantKind:   "mixed",
			wantPayout: testBet * 7,
		},
		{
			name:       "NoPair",
			cards:      []Card{card(7, 0), card(8, 0)},
			wantKind:   "",
			wantPayout: 0,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state := NewState(100 * testBet)
			state.PerfectPairsBet = testBet
			state.Hands = []Hand{{Cards: tc.cards, Bet: testBet}}

			state.resolveSideBet()

			if string(state.SideBetOutcome) != tc.wantKind {
				t.Errorf("unexpected pair kind, want: %q, got: %q", tc.wantKind, state.SideBetOutcome)
			}

			if state.SideBetPayout != tc.wantPayout {
				t.Errorf("unexpected payout, want: %d, got: %d", tc.wantPayout, state.SideBetPayout)
			}
		})
	}
}
