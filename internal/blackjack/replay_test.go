package blackjack

import (
	"strings"
	"testing"
)

// playStandingRound deals a live round and stands every hand, recording the
// applied actions the way the orchestrator persists them.
func playStandingRound(t *testing.T, in RoundInputs) (*State, []string) {
	t.Helper()

	state := NewState(100 * testBet)

	err := state.StartRound(in.MainBet, in.PerfectPairsBet,
		in.ServerSeed, in.ClientSeed, in.Nonce, in.Version)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var history []string

	for state.Phase == PhasePlayerTurn {
		applied, err := state.ExecuteAction(ActionStand)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if applied {
			history = append(history, string(ActionStand))
		}
	}

	return state, history
}

func TestReplayMatchesLiveRound(t *testing.T) {
	inputs := RoundInputs{
		MainBet:    testBet,
		ServerSeed: "server",
		ClientSeed: "client",
		Nonce:      11,
		Version:    2,
	}

	live, history := playStandingRound(t, inputs)

	replayed, err := Replay(inputs, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replayed.ResolvePeek()

	if replayed.Phase != PhaseComplete {
		t.Fatalf("replay must reach completion, got %s", replayed.Phase)
	}

	if len(replayed.Hands) != len(live.Hands) {
		t.Fatalf("hand count mismatch: %d vs %d", len(replayed.Hands), len(live.Hands))
	}

	for i := range live.Hands {
		if len(replayed.Hands[i].Cards) != len(live.Hands[i].Cards) {
			t.Fatalf("hand %d card count mismatch", i)
		}

		for j := range live.Hands[i].Cards {
			if replayed.Hands[i].Cards[j] != live.Hands[i].Cards[j] {
				t.Errorf("hand %d card %d differs", i, j)
			}
		}
	}

	if replayed.Settlement.TotalPayout != live.Settlement.TotalPayout {
		t.Errorf("payout mismatch: %d vs %d",
			replayed.Settlement.TotalPayout, live.Settlement.TotalPayout)
	}

	if replayed.Settlement.OverallOutcome() != live.Settlement.OverallOutcome() {
		t.Errorf("outcome mismatch: %s vs %s",
			replayed.Settlement.OverallOutcome(), live.Settlement.OverallOutcome())
	}
}

func TestReplayIsRepeatable(t *testing.T) {
	inputs := RoundInputs{
		MainBet:    testBet,
		ServerSeed: "server",
		ClientSeed: "client",
		Nonce:      2,
		Version:    1,
	}

	_, history := playStandingRound(t, inputs)

	first, err := Replay(inputs, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := Replay(inputs, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.DealtCount != second.DealtCount {
		t.Errorf("dealt count differs: %d vs %d", first.DealtCount, second.DealtCount)
	}

	for i := range first.Deck {
		if first.Deck[i] != second.Deck[i] {
			t.Fatalf("deck position %d differs", i)
		}
	}
}

func TestReplayRejectsUnknownAction(t *testing.T) {
	inputs := RoundInputs{
		MainBet:    testBet,
		ServerSeed: "server",
		ClientSeed: "client",
		Nonce:      11,
		Version:    2,
	}

	_, history := playStandingRound(t, inputs)

	_, err := Replay(inputs, append([]string{"fold"}, history...))
	if err == nil {
		t.Fatal("expected an error for an unknown history entry")
	}

	if !strings.Contains(err.Error(), "action 0") {
		t.Errorf("error must name the offending entry, got: %v", err)
	}
}

func TestReplayRejectsInsuranceWithoutBet(t *testing.T) {
	inputs := RoundInputs{
		MainBet:    testBet,
		ServerSeed: "server",
		ClientSeed: "client",
		Nonce:      11,
		Version:    2,
	}

	_, history := playStandingRound(t, inputs)
	if len(history) == 0 {
		t.Skip("round settled on the deal")
	}

	// An insurance marker with a zero recorded premium can never replay.
	_, err := Replay(inputs, append([]string{ActionInsurance}, history...))
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestResolvePeekCompletesDealerNatural(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(4, 0), card(5, 1)},
		[]Card{card(0, 0), card(12, 2)})

	if !state.ResolvePeek() {
		t.Fatal("peek against a dealer natural must complete the round")
	}

	if state.Phase != PhaseComplete {
		t.Errorf("unexpected phase %s", state.Phase)
	}
}

func TestResolvePeekNoopWithoutAce(t *testing.T) {
	state := playerTurnState(100*testBet,
		[]Card{card(4, 0), card(5, 1)},
		[]Card{card(9, 0), card(12, 2)})

	if state.ResolvePeek() {
		t.Fatal("peek must not trigger without an ace up")
	}

	if state.Phase != PhasePlayerTurn {
		t.Errorf("unexpected phase %s", state.Phase)
	}
}
