package blackjack

// Card is an index into the shuffled shoe: rank = card % 13 (ace first),
// suit = (card / 13) % 4. The shuffle engine deals indices; everything in
// the rules engine derives from them.
type Card int

const (
	ranksPerSuit = 13
	suitsPerDeck = 4
)

var rankNames = [ranksPerSuit]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
var suitNames = [suitsPerDeck]string{"S", "H", "D", "C"}

func (c Card) Rank() int {
	return int(c) % ranksPerSuit
}

func (c Card) Suit() int {
	return (int(c) / ranksPerSuit) % suitsPerDeck
}

// IsRed reports hearts or diamonds, for the colored-pair side bet tier.
func (c Card) IsRed() bool {
	suit := c.Suit()

	return suit == 1 || suit == 2
}

func (c Card) IsAce() bool {
	return c.Rank() == 0
}

// BaseValue is the card's value counting aces as 1.
func (c Card) BaseValue() int {
	rank := c.Rank()

	switch {
	case rank == 0:
		return 1
	case rank >= 9:
		return 10
	default:
		return rank + 1
	}
}

func (c Card) String() string {
	return rankNames[c.Rank()] + suitNames[c.Suit()]
}

// HandValue computes the best blackjack value of a set of cards, counting
// one ace as 11 whenever that does not bust the hand.
func HandValue(cards []Card) int {
	total := 0
	aces := 0

	for _, c := range cards {
		total += c.BaseValue()

		if c.IsAce() {
			aces++
		}
	}

	if aces > 0 && total+10 <= 21 {
		total += 10
	}

	return total
}

// IsSoft reports whether the hand counts an ace as 11.
func IsSoft(cards []Card) bool {
	total := 0
	aces := 0

	for _, c := range cards {
		total += c.BaseValue()

		if c.IsAce() {
			aces++
		}
	}

	return aces > 0 && total+10 <= 21
}
