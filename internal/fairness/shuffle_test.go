package fairness

import (
	"errors"
	"testing"
)

func TestShuffleDeterminism(t *testing.T) {
	cases := []struct {
		name    string
		version int
	}{
		{
			name:    "V1",
			version: 1,
		},
		{
			name:    "V2",
			version: 2,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			first, err := Shuffle("server", "client", 7, 1, tc.version)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			second, err := Shuffle("server", "client", 7, 1, tc.version)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(first) != len(second) {
				t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
			}

			for i := range first {
				if first[i] != second[i] {
					t.Fatalf("position %d differs: %d vs %d", i, first[i], second[i])
				}
			}
		})
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	cases := []struct {
		name      string
		deckCount int
		version   int
	}{
		{
			name:      "SingleDeckV1",
			deckCount: 1,
			version:   1,
		},
		{
			name:      "SingleDeckV2",
			deckCount: 1,
			version:   2,
		},
		{
			name:      "EightDecksV2",
			deckCount: 8,
			version:   2,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			order, err := Shuffle("server", "client", 0, tc.deckCount, tc.version)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := tc.deckCount * CardsPerDeck
			if len(order) != want {
				t.Fatalf("unexpected deck size, want: %d, got: %d", want, len(order))
			}

			seen := make(map[int]bool, want)
			for _, idx := range order {
				if idx < 0 || idx >= want {
					t.Fatalf("index %d out of range", idx)
				}

				if seen[idx] {
					t.Fatalf("index %d repeated", idx)
				}

				seen[idx] = true
			}
		})
	}
}

func TestShuffleInputsChangeOutput(t *testing.T) {
	base, err := Shuffle("server", "client", 0, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name       string
		serverSeed string
		clientSeed string
		nonce      int64
		version    int
	}{
		{
			name:       "DifferentServerSeed",
			serverSeed: "server2",
			clientSeed: "client",
			nonce:      0,
			version:    2,
		},
		{
			name:       "DifferentClientSeed",
			serverSeed: "server",
			clientSeed: "client2",
			nonce:      0,
			version:    2,
		},
		{
			name:       "DifferentNonce",
			serverSeed: "server",
			clientSeed: "client",
			nonce:      1,
			version:    2,
		},
		{
			name:       "DifferentVersion",
			serverSeed: "server",
			clientSeed: "client",
			nonce:      0,
			version:    1,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Shuffle(tc.serverSeed, tc.clientSeed, tc.nonce, 1, tc.version)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			same := true
			for i := range base {
				if base[i] != got[i] {
					same = false
					break
				}
			}

			if same {
				t.Error("expected a different permutation")
			}
		})
	}
}

func TestShuffleInvalidInput(t *testing.T) {
	cases := []struct {
		name       string
		serverSeed string
		clientSeed string
		nonce      int64
		deckCount  int
		version    int
		wantField  string
	}{
		{
			name:       "EmptyServerSeed",
			clientSeed: "client",
			deckCount:  1,
			version:    2,
			wantField:  "serverSeed",
		},
		{
			name:       "EmptyClientSeed",
			serverSeed: "server",
			deckCount:  1,
			version:    2,
			wantField:  "clientSeed",
		},
		{
			name:       "NegativeNonce",
			serverSeed: "server",
			clientSeed: "client",
			nonce:      -1,
			deckCount:  1,
			version:    2,
			wantField:  "nonce",
		},
		{
			name:       "ZeroDecks",
			serverSeed: "server",
			clientSeed: "client",
			deckCount:  0,
			version:    2,
			wantField:  "deckCount",
		},
		{
			name:       "TooManyDecks",
			serverSeed: "server",
			clientSeed: "client",
			deckCount:  9,
			version:    2,
			wantField:  "deckCount",
		},
		{
			name:       "UnknownVersion",
			serverSeed: "server",
			clientSeed: "client",
			deckCount:  1,
			version:    3,
			wantField:  "fairnessVersion",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Shuffle(tc.serverSeed, tc.clientSeed, tc.nonce, tc.deckCount, tc.version)
			if err == nil {
				t.Fatal("expected an error")
			}

			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("expected InputError, got %T", err)
			}

			if inputErr.Field != tc.wantField {
				t.Errorf("unexpected field, want: %q, got: %q", tc.wantField, inputErr.Field)
			}
		})
	}
}

func TestHashServerSeed(t *testing.T) {
	// SHA-256 of "abc" is a fixed vector.
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	if got := HashServerSeed("abc"); got != want {
		t.Errorf("unexpected hash, want: %s, got: %s", want, got)
	}
}

func TestUniformBounds(t *testing.T) {
	stream := newHmacStream("server", "client", 0)

	for i := 0; i < 10_000; i++ {
		bound := i%51 + 2

		v := stream.uniform(bound)
		if v < 0 || v >= bound {
			t.Fatalf("draw %d out of [0, %d)", v, bound)
		}
	}
}
