package fairness

import "errors"

var (
	// ErrNoCommitmentSupply means no pre-committed seed could be claimed or
	// minted right now. Callers surface it as a retryable condition.
	ErrNoCommitmentSupply = errors.New("fairness: no commitment supply available")

	// ErrClientSeedLocked means the active seed epoch has already dealt at
	// least one game; changing the client seed now would allow seed
	// grinding.
	ErrClientSeedLocked = errors.New("fairness: client seed is locked for the active epoch")

	// ErrSeedNotRevealable means the server seed is still in play and must
	// not leave the house.
	ErrSeedNotRevealable = errors.New("fairness: server seed is pending reveal")

	// ErrSeedNotFound reports an unknown fairness seed id.
	ErrSeedNotFound = errors.New("fairness: seed not found")

	// ErrActiveRoundOpen means the epoch still has an unfinished game on
	// it. Rotation would reveal the seed of a round the player can still
	// act on, so it is refused until the round settles.
	ErrActiveRoundOpen = errors.New("fairness: an active round is still playing on this seed")
)
