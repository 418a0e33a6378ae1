package play

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/blackjack"
	"github.com/klausteuber/zcashino-sub002/internal/config"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
)

const testBet = int64(1_000_000)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (tx *fakeTx) Commit() error                                   { tx.committed = true; return nil }
func (tx *fakeTx) Rollback() error                                 { tx.rolledBack = true; return nil }

// fakeGameStore mirrors the repository's conditional-update semantics.
// histories holds the authoritative per-game history the CAS compares
// against; FindGameByUUID serves the possibly stale row snapshot.
type fakeGameStore struct {
	games     map[string]*model.Game
	histories map[int64][]string
	completed map[int64]bool
	nextID    int64
	txs       []*fakeTx
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{
		games:     make(map[string]*model.Game),
		histories: make(map[int64][]string),
		completed: make(map[int64]bool),
	}
}

func (s *fakeGameStore) StartTransaction() (mysql.Tx, error) {
	tx := &fakeTx{}
	s.txs = append(s.txs, tx)

	return tx, nil
}

func (s *fakeGameStore) lastTx() *fakeTx {
	return s.txs[len(s.txs)-1]
}

func (s *fakeGameStore) SaveGameTx(_ mysql.Tx, game model.Game) (int64, error) {
	s.nextID++
	game.ID = s.nextID
	s.games[game.UUID.String()] = &game
	s.histories[game.ID] = append([]string(nil), game.ActionHistory...)

	return game.ID, nil
}

func (s *fakeGameStore) FindGameByUUID(uuidStr string) (*model.Game, error) {
	game, ok := s.games[uuidStr]
	if !ok {
		return nil, nil
	}

	copied := *game
	copied.ActionHistory = append([]string(nil), game.ActionHistory...)

	return &copied, nil
}

func (s *fakeGameStore) UpdateActionHistoryTx(_ mysql.Tx, gameID int64, history []string, prior []string) (bool, error) {
	if s.completed[gameID] || !historiesEqual(s.histories[gameID], prior) {
		return false, nil
	}

	s.histories[gameID] = append([]string(nil), history...)

	return true, nil
}

func (s *fakeGameStore) SetInsuranceBetTx(_ mysql.Tx, gameID int64, _ int64) (bool, error) {
	return !s.completed[gameID], nil
}

func (s *fakeGameStore) CompleteGameTx(_ mysql.Tx, gameID int64, _ string, _ int64) (bool, error) {
	if s.completed[gameID] {
		return false, nil
	}

	s.completed[gameID] = true

	return true, nil
}

func historiesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

type fundsCall struct {
	sessionID int64
	amount    int64
	gameID    int64
}

type fakeFunds struct {
	reserves []fundsCall
	credits  []fundsCall
}

func (f *fakeFunds) ReserveFunds(_ mysql.Tx, sessionID int64, amount int64, gameID int64) (bool, error) {
	f.reserves = append(f.reserves, fundsCall{sessionID, amount, gameID})

	return true, nil
}

func (f *fakeFunds) CreditFunds(_ mysql.Tx, sessionID int64, amount int64, gameID int64) error {
	f.credits = append(f.credits, fundsCall{sessionID, amount, gameID})

	return nil
}

func (f *fakeFunds) PublishBalanceEvent(int64, int64, config.BalanceType) {}

type fakeStream struct{}

func (fakeStream) AllocateNonce(context.Context, int64) (*model.SessionFairnessSeed, int64, error) {
	return &model.SessionFairnessSeed{
		ID:         5,
		ServerSeed: "server",
		ClientSeed: "client",
	}, 0, nil
}

func (fakeStream) ServerSeed(int64) (string, error) { return "server", nil }

type fakePusher struct{}

func (fakePusher) TriggerEvent(string, string, map[string]interface{}) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestPlay(games *fakeGameStore, funds *fakeFunds) *Play {
	return New(testLogger(), games, funds, nil, fakeStream{}, fakePusher{}, config.FairnessModeSession)
}

func testSession() *model.Session {
	return &model.Session{ID: 1, UUID: uuid.New(), Balance: 100 * testBet}
}

// winningSettlement plays stand-only rounds over increasing nonces until
// one pays out, so the credit path has an amount to assert on.
func winningSettlement(t *testing.T) *blackjack.Settlement {
	t.Helper()

	for nonce := int64(0); nonce < 50; nonce++ {
		state := blackjack.NewState(100 * testBet)

		if err := state.StartRound(testBet, 0, "server", "client", nonce, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for state.Phase == blackjack.PhasePlayerTurn {
			if _, err := state.ExecuteAction(blackjack.ActionStand); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if state.Settlement.TotalPayout > 0 {
			return state.Settlement
		}
	}

	t.Fatal("no winning round in 50 nonces")

	return nil
}

func TestStartGameLinksReservationToGame(t *testing.T) {
	games := newFakeGameStore()
	funds := &fakeFunds{}
	p := newTestPlay(games, funds)

	result, err := p.StartGame(context.Background(), testSession(), testBet, 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(funds.reserves) == 0 {
		t.Fatal("the stake must be reserved")
	}

	if funds.reserves[0].gameID == 0 {
		t.Error("the reservation must reference the game row")
	}

	if funds.reserves[0].gameID != result.Game.ID {
		t.Errorf("reservation linked to the wrong game, want: %d, got: %d",
			result.Game.ID, funds.reserves[0].gameID)
	}
}

func TestApplyActionConflictRollsBack(t *testing.T) {
	games := newFakeGameStore()
	funds := &fakeFunds{}
	p := newTestPlay(games, funds)

	result, err := p.StartGame(context.Background(), testSession(), testBet, 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.State.Phase != blackjack.PhasePlayerTurn {
		t.Skip("deal settled immediately for this tuple")
	}

	// A concurrent request landed its action after this one loaded the
	// row: the authoritative history moved on, the snapshot did not.
	games.histories[result.Game.ID] = []string{"hit"}

	_, err = p.ApplyAction(context.Background(), testSession(), result.Game.UUID.String(), "stand")
	if !errors.Is(err, ErrActionConflict) {
		t.Fatalf("unexpected error, want: %v, got: %v", ErrActionConflict, err)
	}

	if !games.lastTx().rolledBack {
		t.Error("the losing request must roll its transaction back")
	}

	if historiesEqual(games.histories[result.Game.ID], []string{"stand"}) {
		t.Error("the loser must not overwrite the winner's history")
	}
}

func TestProcessGameCompletionPaysOnce(t *testing.T) {
	games := newFakeGameStore()
	funds := &fakeFunds{}
	p := newTestPlay(games, funds)

	settlement := winningSettlement(t)

	const gameID, sessionID = int64(9), int64(1)

	if err := p.ProcessGameCompletion(gameID, sessionID, settlement); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(funds.credits) != 1 {
		t.Fatalf("the winner must credit exactly once, got %d credits", len(funds.credits))
	}

	if funds.credits[0].amount != settlement.TotalPayout {
		t.Errorf("unexpected payout, want: %d, got: %d",
			settlement.TotalPayout, funds.credits[0].amount)
	}

	// A replayed or concurrent completion is a safe no-op.
	if err := p.ProcessGameCompletion(gameID, sessionID, settlement); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(funds.credits) != 1 {
		t.Errorf("a duplicate completion must never credit again, got %d credits", len(funds.credits))
	}

	if !games.lastTx().rolledBack {
		t.Error("the duplicate completion must roll its transaction back")
	}
}
