package services

import (
	"context"
	"errors"
	"testing"

	"game-ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	room := openRoom(t, e, "carol", CreateMatch{})
	mustRun(t, e, "dave", JoinGame{RoomID: room})
	mustRun(t, e, "dave", Surrender{RoomID: room})
	fund(t, e, "bob", 1)

	board, err := e.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "carol", board[0].Player)
	assert.Equal(t, 1, board[0].Rank)
	assert.EqualValues(t, 1516, board[0].Elo)
	assert.Equal(t, "bob", board[1].Player)
	assert.Equal(t, "dave", board[2].Player)

	top, err := e.Leaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	_, err = e.Leaderboard(ctx, 101)
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = e.Leaderboard(ctx, -1)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestQueriesReportNotFound(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Board(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.Chat(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.Tournament(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.Guild(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnknownPlayerHasDefaults(t *testing.T) {
	e, _ := newTestEngine(t)
	acct, err := e.PlayerStats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultElo, acct.Elo)
	assert.Equal(t, "Anonymous", acct.DisplayName())

	board, err := e.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, board)
}

func TestTournamentStatusFilter(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	mustRun(t, e, "a", roundRobin(2))
	mustRun(t, e, "b", roundRobin(2))
	mustRun(t, e, "c", JoinTournament{TournamentID: 1})
	mustRun(t, e, "b", StartTournament{TournamentID: 1})

	all, err := e.Tournaments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	running, err := e.Tournaments(ctx, models.StatusInProgress)
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.EqualValues(t, 1, running[0].ID)
	assert.Len(t, running[0].Bracket, 1)
}
