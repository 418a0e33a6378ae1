package blackjack

type HandOutcome string

const (
	OutcomeWin       HandOutcome = "win"
	OutcomeLose      HandOutcome = "lose"
	OutcomePush      HandOutcome = "push"
	OutcomeBlackjack HandOutcome = "blackjack"
	OutcomeSurrender HandOutcome = "surrender"
)

// Settlement is the structured stake/payout breakdown computed exactly
// once, at the transition into the complete phase.
type Settlement struct {
	TotalStake      int64
	TotalPayout     int64
	Net             int64
	HandOutcomes    []HandOutcome
	HandPayouts     []int64
	InsurancePayout int64
	SideBetPayout   int64
	InsuranceWon    bool
}

// finishRound is the single transition into PhaseComplete: the dealer
// plays out, then every stake settles.
func (s *State) finishRound() {
	if s.Phase == PhaseComplete {
		return
	}

	if HandValue(s.Dealer.Cards) == 21 && len(s.Dealer.Cards) == 2 {
		s.DealerBlackjack = true
	}

	s.playDealer()

	s.Settlement = s.settle()
	s.Phase = PhaseComplete
	s.Balance += s.Settlement.TotalPayout
}

func (s *State) settle() *Settlement {
	settlement := &Settlement{
		SideBetPayout: s.SideBetPayout,
	}

	dealerValue := HandValue(s.Dealer.Cards)

	for i := range s.Hands {
		hand := &s.Hands[i]

		outcome, payout := settleHand(hand, dealerValue, s.Dealer.Busted, s.DealerBlackjack)

		settlement.HandOutcomes = append(settlement.HandOutcomes, outcome)
		settlement.HandPayouts = append(settlement.HandPayouts, payout)
		settlement.TotalStake += hand.Bet
		settlement.TotalPayout += payout
	}

	if s.InsuranceBet > 0 {
		settlement.TotalStake += s.InsuranceBet

		if s.DealerBlackjack {
			settlement.InsuranceWon = true
			settlement.InsurancePayout = 2 * s.InsuranceBet
			settlement.TotalPayout += settlement.InsurancePayout
		}
	}

	settlement.TotalStake += s.PerfectPairsBet
	settlement.TotalPayout += s.SideBetPayout

	settlement.Net = settlement.TotalPayout - settlement.TotalStake

	return settlement
}

func settleHand(hand *Hand, dealerValue int, dealerBusted, dealerBlackjack bool) (HandOutcome, int64) {
	switch {
	case hand.Surrendered:
		return OutcomeSurrender, hand.Bet / 2

	case hand.Busted:
		return OutcomeLose, 0

	case hand.Blackjack:
		if dealerBlackjack {
			return OutcomePush, hand.Bet
		}

		// Natural pays 3:2 on top of the returned stake.
		return OutcomeBlackjack, hand.Bet * 5 / 2

	case dealerBlackjack:
		return OutcomeLose, 0

	case dealerBusted:
		return OutcomeWin, 2 * hand.Bet
	}

	value := hand.Value()

	switch {
	case value > dealerValue:
		return OutcomeWin, 2 * hand.Bet
	case value < dealerValue:
		return OutcomeLose, 0
	default:
		return OutcomePush, hand.Bet
	}
}

// OverallOutcome condenses the settlement for the persisted game row.
func (s *Settlement) OverallOutcome() string {
	switch {
	case s.Net > 0:
		return string(OutcomeWin)
	case s.Net < 0:
		return string(OutcomeLose)
	default:
		return string(OutcomePush)
	}
}
