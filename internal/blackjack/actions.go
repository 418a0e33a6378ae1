package blackjack

import "fmt"

// Action is the closed set of player moves. Dispatch goes through a table
// keyed on the enum so an unhandled action cannot slip through as a string
// comparison typo.
type Action string

const (
	ActionHit       Action = "hit"
	ActionStand     Action = "stand"
	ActionDouble    Action = "double"
	ActionSplit     Action = "split"
	ActionSurrender Action = "surrender"
)

var actionTable = map[Action]func(*State) error{
	ActionHit:       (*State).hit,
	ActionStand:     (*State).stand,
	ActionDouble:    (*State).double,
	ActionSplit:     (*State).split,
	ActionSurrender: (*State).surrender,
}

// ParseAction maps wire text onto the closed action set.
func ParseAction(raw string) (Action, error) {
	action := Action(raw)

	if _, ok := actionTable[action]; !ok {
		return "", fmt.Errorf("blackjack: unknown action %q", raw)
	}

	return action, nil
}

// ExecuteAction applies one player move to the current hand. The returned
// flag reports whether the move was actually applied: when the dealer
// peeks an ace and finds blackjack, the round auto-completes before the
// requested move, and the move must not enter the action history.
func (s *State) ExecuteAction(action Action) (bool, error) {
	if s.Phase != PhasePlayerTurn {
		return false, ErrWrongPhase
	}

	apply, ok := actionTable[action]
	if !ok {
		return false, fmt.Errorf("blackjack: unknown action %q", action)
	}

	// Peek before acting: the first decision of the round against a
	// dealer ace settles the round immediately if the hole card makes
	// blackjack.
	if s.peek() {
		return false, nil
	}

	if !s.actionAvailable(action) {
		return false, ErrIllegalAction
	}

	if err := apply(s); err != nil {
		return false, err
	}

	return true, nil
}

// peek checks the dealer hole card against an ace up-card. Runs at most
// once per round. Returns true when the round ended on a dealer blackjack.
func (s *State) peek() bool {
	if s.PeekDone || !s.DealerUpCard().IsAce() {
		return false
	}

	s.PeekDone = true

	if HandValue(s.Dealer.Cards) == 21 {
		s.DealerBlackjack = true
		s.finishRound()

		return true
	}

	return false
}

// GetAvailableActions enumerates the legal moves for the current hand only.
func (s *State) GetAvailableActions() []Action {
	if s.Phase != PhasePlayerTurn {
		return nil
	}

	actions := []Action{ActionHit, ActionStand}

	if s.actionAvailable(ActionDouble) {
		actions = append(actions, ActionDouble)
	}

	if s.actionAvailable(ActionSplit) {
		actions = append(actions, ActionSplit)
	}

	if s.actionAvailable(ActionSurrender) {
		actions = append(actions, ActionSurrender)
	}

	return actions
}

func (s *State) actionAvailable(action Action) bool {
	hand := s.currentHand()

	if hand.done() {
		return false
	}

	switch action {
	case ActionHit, ActionStand:
		return true
	case ActionDouble:
		return len(hand.Cards) == 2 && s.Balance >= hand.Bet
	case ActionSplit:
		return len(hand.Cards) == 2 &&
			hand.Cards[0].Rank() == hand.Cards[1].Rank() &&
			len(s.Hands) < s.Rules.MaxSplitHands &&
			s.Balance >= hand.Bet
	case ActionSurrender:
		return len(hand.Cards) == 2 && !hand.FromSplit
	default:
		return false
	}
}

func (s *State) hit() error {
	hand := s.currentHand()

	hand.Cards = append(hand.Cards, s.draw())

	value := hand.Value()

	switch {
	case value > 21:
		hand.Busted = true
	case value == 21:
		hand.Stood = true
	}

	s.advanceHand()

	return nil
}

func (s *State) stand() error {
	s.currentHand().Stood = true

	s.advanceHand()

	return nil
}

func (s *State) double() error {
	hand := s.currentHand()

	s.Balance -= hand.Bet
	hand.Bet *= 2
	hand.Doubled = true

	hand.Cards = append(hand.Cards, s.draw())

	if hand.Value() > 21 {
		hand.Busted = true
	} else {
		hand.Stood = true
	}

	s.advanceHand()

	return nil
}

func (s *State) split() error {
	hand := s.currentHand()

	s.Balance -= hand.Bet

	splitCard := hand.Cards[1]
	aces := splitCard.IsAce()

	hand.Cards = hand.Cards[:1]
	hand.FromSplit = true
	hand.Cards = append(hand.Cards, s.draw())

	next := Hand{
		Cards:     []Card{splitCard},
		Bet:       hand.Bet,
		FromSplit: true,
	}
	next.Cards = append(next.Cards, s.draw())

	// Split aces receive one card each and stand.
	if aces {
		hand.Stood = true
		next.Stood = true
	}

	// The new hand plays after the hands before it, in split order.
	s.Hands = append(s.Hands, Hand{})
	copy(s.Hands[s.ActiveHand+2:], s.Hands[s.ActiveHand+1:])
	s.Hands[s.ActiveHand+1] = next

	s.advanceHand()

	return nil
}

func (s *State) surrender() error {
	s.currentHand().Surrendered = true

	s.advanceHand()

	return nil
}

// TakeInsurance places an insurance bet against a dealer ace, then peeks.
// Legal only before the peek, for at most half the main bet. When the peek
// reveals blackjack the round completes and insurance pays 2x.
func (s *State) TakeInsurance(amount int64) error {
	if s.Phase != PhasePlayerTurn {
		return ErrWrongPhase
	}

	if s.PeekDone || !s.DealerUpCard().IsAce() || s.InsuranceBet > 0 {
		return ErrInsuranceDenied
	}

	if amount <= 0 || amount > s.MainBet/2 {
		return ErrInsuranceDenied
	}

	if s.Balance < amount {
		return ErrInsufficientFunds
	}

	s.InsuranceBet = amount
	s.Balance -= amount

	s.peek()

	return nil
}
