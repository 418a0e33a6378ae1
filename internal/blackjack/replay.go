package blackjack

import (
	"fmt"

	"github.com/klausteuber/zcashino-sub002/internal/config"
)

// ActionInsurance is the history marker for an insurance decision. It is
// not a member of the Action set dispatched by ExecuteAction, but it must
// live in the ordered history because it can trigger the dealer peek.
const ActionInsurance = "insurance"

// RoundInputs is everything the deterministic replay needs: the seed tuple
// that fixes the shuffle plus the bets. No intermediate state.
type RoundInputs struct {
	MainBet         int64
	PerfectPairsBet int64
	InsuranceBet    int64
	ServerSeed      string
	ClientSeed      string
	Nonce           int64
	Version         config.FairnessVersion
}

// Replay rebuilds a round by dealing from the shuffle and folding the
// ordered action history over it. Folding the whole history at once is
// observationally identical to having executed the actions live across
// separate requests; that equivalence is what mid-game reconstruction and
// post-hoc verification both rely on.
//
// The replay balance is synthetic: every action in the history was legal
// when it was recorded, so the balance only needs to be ample enough to
// never fail an availability check that passed live.
func Replay(in RoundInputs, actions []string) (*State, error) {
	const op = "blackjack.replay.Replay"

	stake := in.MainBet + in.PerfectPairsBet + in.InsuranceBet
	ample := stake + in.MainBet*int64(config.BlackjackTableConfig.MaxSplitHands+1)

	state := NewState(ample)

	err := state.StartRound(in.MainBet, in.PerfectPairsBet,
		in.ServerSeed, in.ClientSeed, in.Nonce, in.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, raw := range actions {
		if raw == ActionInsurance {
			if err = state.TakeInsurance(in.InsuranceBet); err != nil {
				return nil, fmt.Errorf("%s: action %d: %w", op, i, err)
			}

			continue
		}

		action, err := ParseAction(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: action %d: %w", op, i, err)
		}

		applied, err := state.ExecuteAction(action)
		if err != nil {
			return nil, fmt.Errorf("%s: action %d: %w", op, i, err)
		}

		if !applied {
			// A recorded action was refused by the peek: the history
			// is inconsistent with the shuffle. Never guess here.
			return nil, fmt.Errorf("%s: action %d (%s) not applied on replay", op, i, raw)
		}
	}

	return state, nil
}

// ResolvePeek forces the dealer peek without a player action. A round that
// completed on a peek-forced dealer blackjack stores no completing action
// in its history, so a post-hoc replay has to trigger the peek explicitly
// to reach the settled state. Reports whether the round is now complete.
func (s *State) ResolvePeek() bool {
	if s.Phase != PhasePlayerTurn {
		return s.Phase == PhaseComplete
	}

	return s.peek()
}
