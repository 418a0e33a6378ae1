package fairness

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
)

const CardsPerDeck = 52

// InputError reports malformed shuffle input. The engine never substitutes
// defaults for bad input; a wrong default here would silently break the
// fairness guarantee.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("fairness: invalid %s: %s", e.Field, e.Reason)
}

// HashServerSeed is the public commitment of a server seed.
func HashServerSeed(serverSeed string) string {
	sum := sha256.Sum256([]byte(serverSeed))

	return hex.EncodeToString(sum[:])
}

// Shuffle derives the full card order for a round from the seed tuple.
// It is pure: identical inputs yield the identical sequence across
// processes and time, which is what replay and verification stand on.
func Shuffle(serverSeed, clientSeed string, nonce int64, deckCount int, version int) ([]int, error) {
	if serverSeed == "" {
		return nil, &InputError{Field: "serverSeed", Reason: "must not be empty"}
	}

	if clientSeed == "" {
		return nil, &InputError{Field: "clientSeed", Reason: "must not be empty"}
	}

	if nonce < 0 {
		return nil, &InputError{Field: "nonce", Reason: "must not be negative"}
	}

	if deckCount < 1 || deckCount > 8 {
		return nil, &InputError{Field: "deckCount", Reason: "must be between 1 and 8"}
	}

	switch version {
	case 1:
		return shuffleV1(serverSeed, clientSeed, nonce, deckCount), nil
	case 2:
		return shuffleV2(serverSeed, clientSeed, nonce, deckCount), nil
	default:
		return nil, &InputError{Field: "fairnessVersion", Reason: "unknown version " + strconv.Itoa(version)}
	}
}

// shuffleV1 is the legacy algorithm: a PRNG seeded from the seed tuple
// drives a plain Fisher-Yates. Kept so rounds dealt before the HMAC engine
// stay verifiable.
func shuffleV1(serverSeed, clientSeed string, nonce int64, deckCount int) []int {
	material := serverSeed + ":" + clientSeed + ":" + strconv.FormatInt(nonce, 10)
	sum := sha256.Sum256([]byte(material))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))

	rng := rand.New(rand.NewSource(seed))

	deck := orderedDeck(deckCount)
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}

	return deck
}

// shuffleV2 drives an unbiased Fisher-Yates from an HMAC-SHA256 keyed byte
// stream. Draws are two bytes wide and reject-sampled, so no modulo bias
// for any deck size up to 8 decks.
func shuffleV2(serverSeed, clientSeed string, nonce int64, deckCount int) []int {
	stream := newHmacStream(serverSeed, clientSeed, nonce)

	deck := orderedDeck(deckCount)
	for i := len(deck) - 1; i > 0; i-- {
		j := stream.uniform(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}

	return deck
}

func orderedDeck(deckCount int) []int {
	deck := make([]int, deckCount*CardsPerDeck)
	for i := range deck {
		deck[i] = i
	}

	return deck
}

// hmacStream yields bytes from HMAC(serverSeed, clientSeed:nonce:counter),
// advancing counter per 32-byte block.
type hmacStream struct {
	key     []byte
	prefix  string
	counter int64
	buf     []byte
	pos     int
}

func newHmacStream(serverSeed, clientSeed string, nonce int64) *hmacStream {
	return &hmacStream{
		key:    []byte(serverSeed),
		prefix: clientSeed + ":" + strconv.FormatInt(nonce, 10) + ":",
	}
}

func (s *hmacStream) nextByte() byte {
	if s.pos >= len(s.buf) {
		mac := hmac.New(sha256.New, s.key)
		mac.Write([]byte(s.prefix + strconv.FormatInt(s.counter, 10)))
		s.buf = mac.Sum(nil)
		s.pos = 0
		s.counter++
	}

	b := s.buf[s.pos]
	s.pos++

	return b
}

// uniform returns an unbiased draw in [0, bound) by rejecting two-byte
// values above the largest multiple of bound.
func (s *hmacStream) uniform(bound int) int {
	limit := 65536 - (65536 % bound)

	for {
		hi := int(s.nextByte())
		lo := int(s.nextByte())
		v := hi<<8 | lo

		if v < limit {
			return v % bound
		}
	}
}
