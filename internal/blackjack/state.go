package blackjack

import (
	"errors"
	"fmt"

	"github.com/klausteuber/zcashino-sub002/internal/config"
	"github.com/klausteuber/zcashino-sub002/internal/fairness"
)

type Phase string

const (
	PhaseBetting    Phase = "betting"
	PhasePlayerTurn Phase = "playerTurn"
	PhaseComplete   Phase = "complete"
)

var (
	ErrInvalidBet        = errors.New("blackjack: bet outside table limits")
	ErrInvalidSideBet    = errors.New("blackjack: side bet must be between 0 and the main bet")
	ErrInsufficientFunds = errors.New("blackjack: insufficient balance for this play")
	ErrWrongPhase        = errors.New("blackjack: action not allowed in this phase")
	ErrIllegalAction     = errors.New("blackjack: action not available for the current hand")
	ErrInsuranceDenied   = errors.New("blackjack: insurance not available")
)

// Hand is derived state, never persisted: it is rebuilt each request by
// replaying the action history against the deterministic shuffle.
type Hand struct {
	Cards       []Card
	Bet         int64
	Doubled     bool
	Stood       bool
	Busted      bool
	Surrendered bool
	Blackjack   bool
	FromSplit   bool
}

func (h *Hand) Value() int {
	return HandValue(h.Cards)
}

func (h *Hand) done() bool {
	return h.Stood || h.Busted || h.Surrendered || h.Blackjack
}

// State is one round's full in-memory state. The caller owns the value;
// nothing here touches I/O.
type State struct {
	Phase      Phase
	Rules      config.BlackjackConfig
	Balance    int64
	Deck       []Card
	DealtCount int

	Hands      []Hand
	ActiveHand int
	Dealer     Hand

	MainBet         int64
	PerfectPairsBet int64
	InsuranceBet    int64

	PeekDone        bool
	DealerBlackjack bool
	SideBetPayout   int64
	SideBetOutcome  config.PairKind

	Settlement *Settlement
}

// NewState returns a fresh betting-phase state for the given balance.
func NewState(balance int64) *State {
	return &State{
		Phase:   PhaseBetting,
		Rules:   config.BlackjackTableConfig,
		Balance: balance,
	}
}

// StartRound validates the bets, deals the opening hands from the
// deterministic shuffle and resolves the perfect-pairs side bet, which
// depends only on the initial deal. Dealer's second card stays face-down.
func (s *State) StartRound(
	mainBet int64,
	perfectPairsBet int64,
	serverSeed string,
	clientSeed string,
	nonce int64,
	version config.FairnessVersion,
) error {
	const op = "blackjack.state.StartRound"

	if s.Phase != PhaseBetting {
		return ErrWrongPhase
	}

	if mainBet < s.Rules.MinBet || mainBet > s.Rules.MaxBet {
		return ErrInvalidBet
	}

	if perfectPairsBet < 0 || perfectPairsBet > mainBet {
		return ErrInvalidSideBet
	}

	if s.Balance < mainBet+perfectPairsBet {
		return ErrInsufficientFunds
	}

	order, err := fairness.Shuffle(serverSeed, clientSeed, nonce, s.Rules.DeckCount, int(version))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.Deck = make([]Card, len(order))
	for i, idx := range order {
		s.Deck[i] = Card(idx)
	}

	s.MainBet = mainBet
	s.PerfectPairsBet = perfectPairsBet
	s.Balance -= mainBet + perfectPairsBet

	player := Hand{Bet: mainBet}
	player.Cards = append(player.Cards, s.draw(), s.draw())

	s.Dealer = Hand{}
	s.Dealer.Cards = append(s.Dealer.Cards, s.draw(), s.draw())

	s.Hands = []Hand{player}
	s.ActiveHand = 0

	s.resolveSideBet()

	if HandValue(player.Cards) == 21 {
		s.Hands[0].Blackjack = true
		s.finishRound()

		return nil
	}

	s.Phase = PhasePlayerTurn

	return nil
}

func (s *State) draw() Card {
	card := s.Deck[s.DealtCount]
	s.DealtCount++

	return card
}

// resolveSideBet settles perfect pairs against the player's opening two
// cards: same rank and suit is perfect, same rank and color is colored,
// same rank is mixed.
func (s *State) resolveSideBet() {
	if s.PerfectPairsBet == 0 {
		return
	}

	first, second := s.Hands[0].Cards[0], s.Hands[0].Cards[1]
	if first.Rank() != second.Rank() {
		return
	}

	kind := config.MixedPair

	switch {
	case first.Suit() == second.Suit():
		kind = config.PerfectPair
	case first.IsRed() == second.IsRed():
		kind = config.ColoredPair
	}

	s.SideBetOutcome = kind
	s.SideBetPayout = s.PerfectPairsBet * (s.Rules.PerfectPairs[kind].Multiplier + 1)
}

// DealerUpCard is the only dealer card visible before the round completes.
func (s *State) DealerUpCard() Card {
	return s.Dealer.Cards[0]
}

func (s *State) currentHand() *Hand {
	return &s.Hands[s.ActiveHand]
}

// advanceHand moves play to the next unfinished hand, or to dealer play and
// settlement once every player hand is resolved.
func (s *State) advanceHand() {
	for s.ActiveHand < len(s.Hands) && s.Hands[s.ActiveHand].done() {
		s.ActiveHand++
	}

	if s.ActiveHand >= len(s.Hands) {
		s.finishRound()
	}
}
