package play

import (
	"github.com/klausteuber/zcashino-sub002/internal/blackjack"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	"github.com/klausteuber/zcashino-sub002/internal/lib/converter"
)

// RoundView is the client-safe projection of a round. The deck, the dealt
// counter and the raw server seed never appear here; the hole card shows
// only once the round is complete.
type RoundView struct {
	GameUUID         string          `json:"game_uuid"`
	Status           string          `json:"status"`
	Phase            string          `json:"phase"`
	Hands            []HandView      `json:"hands"`
	ActiveHand       int             `json:"active_hand"`
	Dealer           HandView        `json:"dealer"`
	MainBet          string          `json:"main_bet"`
	PerfectPairsBet  string          `json:"perfect_pairs_bet,omitempty"`
	InsuranceBet     string          `json:"insurance_bet,omitempty"`
	SideBetOutcome   string          `json:"side_bet_outcome,omitempty"`
	AvailableActions []string        `json:"available_actions,omitempty"`
	Fairness         FairnessView    `json:"fairness"`
	Settlement       *SettlementView `json:"settlement,omitempty"`
}

type HandView struct {
	Cards       []string `json:"cards"`
	Value       int      `json:"value"`
	Bet         string   `json:"bet,omitempty"`
	Doubled     bool     `json:"doubled,omitempty"`
	Busted      bool     `json:"busted,omitempty"`
	Surrendered bool     `json:"surrendered,omitempty"`
	Blackjack   bool     `json:"blackjack,omitempty"`
}

type FairnessView struct {
	Mode           string `json:"mode"`
	Version        int    `json:"version"`
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
	Nonce          int64  `json:"nonce"`
}

type SettlementView struct {
	Outcome         string   `json:"outcome"`
	TotalStake      string   `json:"total_stake"`
	TotalPayout     string   `json:"total_payout"`
	HandOutcomes    []string `json:"hand_outcomes"`
	InsurancePayout string   `json:"insurance_payout,omitempty"`
	SideBetPayout   string   `json:"side_bet_payout,omitempty"`
}

// NewRoundView builds the projection from a round result.
func NewRoundView(game *model.Game, state *blackjack.State) RoundView {
	view := RoundView{
		GameUUID:   game.UUID.String(),
		Status:     string(game.Status),
		Phase:      string(state.Phase),
		ActiveHand: state.ActiveHand,
		MainBet:    converter.ConvertAmountZatoshiToString(state.MainBet),
		Fairness: FairnessView{
			Mode:           string(game.FairnessMode),
			Version:        int(game.FairnessVersion),
			ServerSeedHash: game.ServerSeedHash,
			ClientSeed:     game.ClientSeed,
			Nonce:          game.Nonce,
		},
	}

	if state.PerfectPairsBet > 0 {
		view.PerfectPairsBet = converter.ConvertAmountZatoshiToString(state.PerfectPairsBet)
		view.SideBetOutcome = string(state.SideBetOutcome)
	}

	if state.InsuranceBet > 0 {
		view.InsuranceBet = converter.ConvertAmountZatoshiToString(state.InsuranceBet)
	}

	for i := range state.Hands {
		view.Hands = append(view.Hands, handView(&state.Hands[i]))
	}

	view.Dealer = dealerView(state)

	if state.Phase == blackjack.PhaseComplete {
		view.Settlement = settlementView(state.Settlement)
	} else {
		for _, action := range state.GetAvailableActions() {
			view.AvailableActions = append(view.AvailableActions, string(action))
		}
	}

	return view
}

func handView(hand *blackjack.Hand) HandView {
	v := HandView{
		Value:       hand.Value(),
		Bet:         converter.ConvertAmountZatoshiToString(hand.Bet),
		Doubled:     hand.Doubled,
		Busted:      hand.Busted,
		Surrendered: hand.Surrendered,
		Blackjack:   hand.Blackjack,
	}

	for _, card := range hand.Cards {
		v.Cards = append(v.Cards, card.String())
	}

	return v
}

func dealerView(state *blackjack.State) HandView {
	if state.Phase != blackjack.PhaseComplete {
		up := state.DealerUpCard()

		return HandView{
			Cards: []string{up.String()},
			Value: blackjack.HandValue([]blackjack.Card{up}),
		}
	}

	return handView(&state.Dealer)
}

func settlementView(s *blackjack.Settlement) *SettlementView {
	view := &SettlementView{
		Outcome:     s.OverallOutcome(),
		TotalStake:  converter.ConvertAmountZatoshiToString(s.TotalStake),
		TotalPayout: converter.ConvertAmountZatoshiToString(s.TotalPayout),
	}

	for _, outcome := range s.HandOutcomes {
		view.HandOutcomes = append(view.HandOutcomes, string(outcome))
	}

	if s.InsurancePayout > 0 {
		view.InsurancePayout = converter.ConvertAmountZatoshiToString(s.InsurancePayout)
	}

	if s.SideBetPayout > 0 {
		view.SideBetPayout = converter.ConvertAmountZatoshiToString(s.SideBetPayout)
	}

	return view
}
