package services

import (
	"context"
	"math"
	"testing"

	"game-ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositAndWithdraw(t *testing.T) {
	e, _ := newTestEngine(t)

	resp := mustRun(t, e, "alice", DepositTokens{Amount: 120})
	assert.Equal(t, "120", resp.Data)

	resp = mustRun(t, e, "alice", WithdrawTokens{Amount: 20})
	assert.Equal(t, "100", resp.Data)

	requireRejected(t, run(e, "alice", WithdrawTokens{Amount: 101}), KindInsufficientFunds)
	requireRejected(t, run(e, "alice", WithdrawTokens{Amount: 0}), KindValidation)
	requireRejected(t, run(e, "alice", DepositTokens{Amount: 0}), KindValidation)
	requireRejected(t, run(e, "alice", DepositTokens{Amount: math.MaxUint64}), KindValidation)

	bal, err := e.Balance(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, Balance{Player: "alice", Balance: 100}, bal)
}

func TestDepositReferenceCreditedOnce(t *testing.T) {
	e, _ := newTestEngine(t)
	const ref = "5b0c2f0e-8f4d-4d55-9b71-2a4a3e0c9d11"

	mustRun(t, e, "alice", DepositTokens{Amount: 75, Reference: ref})
	requireRejected(t, run(e, "alice", DepositTokens{Amount: 75, Reference: ref}), KindStateConflict)
	requireRejected(t, run(e, "bob", DepositTokens{Amount: 75, Reference: " " + ref}), KindStateConflict)

	// unreferenced deposits are not deduplicated
	mustRun(t, e, "alice", DepositTokens{Amount: 5})
	mustRun(t, e, "alice", DepositTokens{Amount: 5})

	assert.EqualValues(t, 85, account(t, e, "alice").Balance)
	assert.Zero(t, account(t, e, "bob").Balance)
}

func TestPayoutRejectsBalanceOverflow(t *testing.T) {
	e, _ := newTestEngine(t)
	fund(t, e, "a", math.MaxUint64-10)
	fund(t, e, "b", 30)
	room := openRoom(t, e, "a", CreateMatch{Stake: amount(30)})
	mustRun(t, e, "b", JoinGame{RoomID: room})

	requireRejected(t, run(e, "b", Surrender{RoomID: room}), KindValidation)

	a := account(t, e, "a")
	assert.EqualValues(t, uint64(math.MaxUint64-40), a.Balance)
	assert.EqualValues(t, 30, a.Escrow)
	state, err := e.Board(context.Background(), room)
	require.NoError(t, err)
	assert.Empty(t, state.Winner)
}

func TestPercentOfDoesNotOverflow(t *testing.T) {
	assert.EqualValues(t, 12, percentOf(40, 30))
	assert.EqualValues(t, uint64(math.MaxUint64/2), percentOf(math.MaxUint64, 50))
	assert.EqualValues(t, uint64(math.MaxUint64), percentOf(math.MaxUint64, 100))
}

func TestPayoutRunsOnce(t *testing.T) {
	e, _ := newTestEngine(t)
	fund(t, e, "a", 10)
	fund(t, e, "b", 10)
	room := openRoom(t, e, "a", CreateMatch{Stake: amount(10)})
	mustRun(t, e, "b", JoinGame{RoomID: room})
	mustRun(t, e, "a", Surrender{RoomID: room})

	// a rematch after reset carries no pot
	mustRun(t, e, "a", ResetGame{RoomID: room})
	mustRun(t, e, "b", Surrender{RoomID: room})

	a, b := account(t, e, "a"), account(t, e, "b")
	assert.EqualValues(t, 0, a.Balance)
	assert.EqualValues(t, 20, b.Balance)
	assert.Zero(t, a.Escrow+b.Escrow)
}

// completedTournament runs a two-player round robin to completion with a 40
// token pool.
func completedTournament(t *testing.T, e *Engine) uint64 {
	t.Helper()
	fund(t, e, "owner", 20)
	fund(t, e, "guest", 20)
	resp := mustRun(t, e, "owner", CreateTournament{
		Name:              "cup",
		Format:            models.TournamentFormat{Kind: models.FormatRoundRobin},
		EntryFee:          amount(20),
		MaxPlayers:        2,
		PrizeDistribution: []uint32{70, 30},
	})
	id := resp.Tournament.ID
	mustRun(t, e, "guest", JoinTournament{TournamentID: id})
	mustRun(t, e, "owner", StartTournament{TournamentID: id})
	mustRun(t, e, "guest", ReportMatchResult{
		TournamentID: id,
		MatchID:      0,
		Result:       models.MatchResult{Kind: models.ResultWin, Player: "guest"},
	})
	return id
}

func TestClaimRewardsUsesFixedSharesOnce(t *testing.T) {
	e, _ := newTestEngine(t)
	completedTournament(t, e)

	// winners are taken in registration order: owner first, guest second
	resp := mustRun(t, e, "owner", ClaimRewards{})
	assert.Equal(t, "20", resp.Data)
	resp = mustRun(t, e, "guest", ClaimRewards{})
	assert.Equal(t, "12", resp.Data)

	resp = mustRun(t, e, "owner", ClaimRewards{})
	assert.Equal(t, "0", resp.Data)
	assert.EqualValues(t, 20, account(t, e, "owner").Balance)
	assert.EqualValues(t, 12, account(t, e, "guest").Balance)

	resp = mustRun(t, e, "stranger", ClaimRewards{})
	assert.Equal(t, "0", resp.Data)
}
