package config

type BlackjackConfig struct {
	MinBet         int64 // zatoshis
	MaxBet         int64 // zatoshis
	DealerStandsOn int
	MaxSplitHands  int
	DeckCount      int
	PerfectPairs   map[PairKind]PerfectPairConfig
}

type PairKind string

const (
	MixedPair   PairKind = "mixed"
	ColoredPair PairKind = "colored"
	PerfectPair PairKind = "perfect"
)

type PerfectPairConfig struct {
	Multiplier int64
}

var BlackjackTableConfig = BlackjackConfig{
	MinBet:         100_000,     // 0.001 ZEC
	MaxBet:         500_000_000, // 5 ZEC
	DealerStandsOn: 17,
	MaxSplitHands:  4,
	DeckCount:      1,
	PerfectPairs: map[PairKind]PerfectPairConfig{
		MixedPair: {
			Multiplier: 6,
		},
		ColoredPair: {
			Multiplier: 12,
		},
		PerfectPair: {
			Multiplier: 25,
		},
	},
}
