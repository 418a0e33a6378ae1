package blackjack

import "testing"

// card builds a Card from a rank index (ace is 0) and suit index.
func card(rank, suit int) Card {
	return Card(suit*ranksPerSuit + rank)
}

func TestHandValue(t *testing.T) {
	cases := []struct {
		name  string
		cards []Card
		want  int
	}{
		{
			name:  "Natural",
			cards: []Card{card(0, 0), card(12, 0)},
			want:  21,
		},
		{
			name:  "TwoAces",
			cards: []Card{card(0, 0), card(0, 1)},
			want:  12,
		},
		{
			name:  "SoftSixteen",
			cards: []Card{card(0, 0), card(4, 0)},
			want:  16,
		},
		{
			name:  "AceForcedLow",
			cards: []Card{card(0, 0), card(8, 0), card(9, 0)},
			want:  20,
		},
		{
			name:  "HardTwenty",
			cards: []Card{card(11, 0), card(10, 1)},
			want:  20,
		},
		{
			name:  "Bust",
			cards: []Card{card(12, 0), card(11, 1), card(1, 2)},
			want:  22,
		},
		{
			name:  "Empty",
			cards: nil,
			want:  0,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := HandValue(tc.cards); got != tc.want {
				t.Errorf("unexpected value, want: %d, got: %d", tc.want, got)
			}
		})
	}
}

func TestIsSoft(t *testing.T) {
	cases := []struct {
		name  string
		cards []Card
		want  bool
	}{
		{
			name:  "SoftSeventeen",
			cards: []Card{card(0, 0), card(5, 0)},
			want:  true,
		},
		{
			name:  "HardSeventeen",
			cards: []Card{card(9, 0), card(6, 0)},
			want:  false,
		},
		{
			name:  "AceCountedLow",
			cards: []Card{card(0, 0), card(9, 0), card(9, 1)},
			want:  false,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := IsSoft(tc.cards); got != tc.want {
				t.Errorf("unexpected result, want: %v, got: %v", tc.want, got)
			}
		})
	}
}

func TestCardString(t *testing.T) {
	cases := []struct {
		name string
		card Card
		want string
	}{
		{
			name: "AceOfSpades",
			card: card(0, 0),
			want: "AS",
		},
		{
			name: "KingOfClubs",
			card: card(12, 3),
			want: "KC",
		},
		{
			name: "TenOfHearts",
			card: card(9, 1),
			want: "10H",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.card.String(); got != tc.want {
				t.Errorf("unexpected name, want: %q, got: %q", tc.want, got)
			}
		})
	}
}

func TestIsRed(t *testing.T) {
	if card(4, 0).IsRed() {
		t.Error("spades must not be red")
	}

	if !card(4, 1).IsRed() {
		t.Error("hearts must be red")
	}

	if !card(4, 2).IsRed() {
		t.Error("diamonds must be red")
	}

	if card(4, 3).IsRed() {
		t.Error("clubs must not be red")
	}
}
