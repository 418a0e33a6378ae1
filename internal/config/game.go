package config

type Game string

const (
	Blackjack Game = "blackjack"
)

// FairnessMode selects the seed lifecycle used for new games.
type FairnessMode string

const (
	// FairnessModePool draws a pre-committed one-shot seed from the
	// commitment pool for every game.
	FairnessModePool FairnessMode = "pool"
	// FairnessModeSession uses one long-lived seed per session with a
	// monotonic nonce per game.
	FairnessModeSession FairnessMode = "session"
)

// FairnessVersion selects the shuffle algorithm. Games store the version
// they were dealt with so old rounds stay verifiable forever.
type FairnessVersion int

const (
	// FairnessV1 is the legacy seeded-PRNG Fisher-Yates shuffle.
	FairnessV1 FairnessVersion = 1
	// FairnessV2 is the HMAC-SHA256 byte-stream shuffle.
	FairnessV2 FairnessVersion = 2
)
