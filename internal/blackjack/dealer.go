package blackjack

// playDealer reveals the hole card and draws until reaching the stand
// threshold. Soft totals use the same ace-as-11-when-safe arithmetic as
// player hands. The dealer does not draw when no live player hand remains.
func (s *State) playDealer() {
	if !s.dealerMustPlay() {
		return
	}

	for HandValue(s.Dealer.Cards) < s.Rules.DealerStandsOn {
		s.Dealer.Cards = append(s.Dealer.Cards, s.draw())
	}

	if HandValue(s.Dealer.Cards) > 21 {
		s.Dealer.Busted = true
	}
}

// dealerMustPlay reports whether any player hand is still contesting the
// dealer: not busted, not surrendered, not a natural blackjack.
func (s *State) dealerMustPlay() bool {
	if s.DealerBlackjack {
		return false
	}

	for i := range s.Hands {
		hand := &s.Hands[i]

		if !hand.Busted && !hand.Surrendered && !hand.Blackjack {
			return true
		}
	}

	return false
}
