package services

import (
	"context"
	"fmt"
	"testing"

	"game-ledger/models"
	"game-ledger/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundRobin(max uint32) CreateTournament {
	return CreateTournament{
		Name:              "Spring Open",
		Format:            models.TournamentFormat{Kind: models.FormatRoundRobin},
		MaxPlayers:        max,
		PrizeDistribution: []uint32{50, 30, 20},
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	e, _ := newTestEngine(t)

	cases := []struct {
		name   string
		mutate func(op *CreateTournament)
		kind   ErrorKind
	}{
		{"prize sum", func(op *CreateTournament) { op.PrizeDistribution = []uint32{50, 30, 20, 1} }, KindValidation},
		{"empty name", func(op *CreateTournament) { op.Name = " " }, KindValidation},
		{"too few players", func(op *CreateTournament) { op.MaxPlayers = 1 }, KindValidation},
		{"too many players", func(op *CreateTournament) { op.MaxPlayers = 257 }, KindValidation},
		{"swiss without rounds", func(op *CreateTournament) { op.Format = models.TournamentFormat{Kind: models.FormatSwiss} }, KindValidation},
		{"unknown format", func(op *CreateTournament) { op.Format = models.TournamentFormat{Kind: "ladder"} }, KindValidation},
		{"unfunded fee", func(op *CreateTournament) { op.EntryFee = amount(5) }, KindInsufficientFunds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op := roundRobin(4)
			tc.mutate(&op)
			requireRejected(t, run(e, "owner", op), tc.kind)
		})
	}

	// none of the rejections consumed an id
	require.NoError(t, e.store.View(context.Background(), func(tx store.Tx) error {
		next, err := tx.Counter(store.CounterTournament)
		require.NoError(t, err)
		assert.Zero(t, next)
		return nil
	}))
}

func TestCreateAndJoinTournament(t *testing.T) {
	e, _ := newTestEngine(t)
	fund(t, e, "owner", 10)
	fund(t, e, "p2", 10)

	op := roundRobin(3)
	op.EntryFee = amount(10)
	resp := mustRun(t, e, "owner", op)
	require.Equal(t, RespTournamentCreated, resp.Kind)
	assert.Equal(t, &TournamentReply{ID: 0, Name: "Spring Open"}, resp.Tournament)

	resp = mustRun(t, e, "p2", JoinTournament{TournamentID: 0})
	require.Equal(t, RespTournamentJoined, resp.Kind)
	assert.EqualValues(t, 2, resp.Tournament.Position)

	requireRejected(t, run(e, "p2", JoinTournament{TournamentID: 0}), KindStateConflict)
	requireRejected(t, run(e, "p3", JoinTournament{TournamentID: 0}), KindInsufficientFunds)
	requireRejected(t, run(e, "p3", JoinTournament{TournamentID: 7}), KindNotFound)

	tm, err := e.Tournament(context.Background(), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 20, tm.PrizePool)
	assert.Equal(t, []string{"owner", "p2"}, tm.Players)
	assert.Equal(t, "spring-open", tm.Slug)
	assert.Zero(t, account(t, e, "owner").Balance)
}

func TestJoinTournamentRejectsWhenFull(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRun(t, e, "owner", roundRobin(2))
	mustRun(t, e, "p2", JoinTournament{TournamentID: 0})
	requireRejected(t, run(e, "p3", JoinTournament{TournamentID: 0}), KindStateConflict)
}

func TestStartTournament(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRun(t, e, "owner", roundRobin(4))

	requireRejected(t, run(e, "owner", StartTournament{TournamentID: 0}), KindStateConflict)
	mustRun(t, e, "p2", JoinTournament{TournamentID: 0})
	requireRejected(t, run(e, "p2", StartTournament{TournamentID: 0}), KindAuth)

	mustRun(t, e, "owner", StartTournament{TournamentID: 0})
	requireRejected(t, run(e, "owner", StartTournament{TournamentID: 0}), KindStateConflict)
	requireRejected(t, run(e, "p3", JoinTournament{TournamentID: 0}), KindStateConflict)
}

func TestRoundRobinPairsEveryPlayerOnce(t *testing.T) {
	players := []string{"a", "b", "c", "d"}
	bracket := GenerateBracket(models.TournamentFormat{Kind: models.FormatRoundRobin}, players)
	require.Len(t, bracket, 6)

	seen := map[string]bool{}
	for i, m := range bracket {
		assert.EqualValues(t, i, m.ID)
		assert.EqualValues(t, 1, m.Round)
		assert.Nil(t, m.Result)
		key := fmt.Sprintf("%s-%s", m.Player1, m.Player2)
		assert.False(t, seen[key], "duplicate pair %s", key)
		seen[key] = true
	}
}

func TestSingleEliminationBye(t *testing.T) {
	bracket := GenerateBracket(models.TournamentFormat{Kind: models.FormatSingleElimination}, []string{"a", "b", "c"})
	require.Len(t, bracket, 2)
	assert.Equal(t, "a", bracket[0].Player1)
	assert.Equal(t, "b", bracket[0].Player2)
	assert.Nil(t, bracket[0].Result)

	assert.True(t, bracket[1].IsBye())
	assert.Equal(t, &models.MatchResult{Kind: models.ResultWin, Player: "c"}, bracket[1].Result)
}

func TestSwissRounds(t *testing.T) {
	bracket := GenerateBracket(models.TournamentFormat{Kind: models.FormatSwiss, Rounds: 3}, []string{"a", "b", "c", "d", "e"})
	require.Len(t, bracket, 6)
	assert.EqualValues(t, 1, bracket[0].Round)
	assert.EqualValues(t, 3, bracket[5].Round)
	assert.Equal(t, "c", bracket[5].Player1)
	assert.Equal(t, "d", bracket[5].Player2)
}

func TestReportMatchResultCompletesTournament(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRun(t, e, "a", roundRobin(4))
	for _, p := range []string{"b", "c"} {
		mustRun(t, e, p, JoinTournament{TournamentID: 0})
	}

	win := func(p string) models.MatchResult { return models.MatchResult{Kind: models.ResultWin, Player: p} }
	requireRejected(t, run(e, "a", ReportMatchResult{TournamentID: 0, MatchID: 0, Result: win("a")}), KindStateConflict)
	mustRun(t, e, "a", StartTournament{TournamentID: 0})

	// matches: 0 a-b, 1 a-c, 2 b-c
	requireRejected(t, run(e, "c", ReportMatchResult{TournamentID: 0, MatchID: 0, Result: win("a")}), KindAuth)
	requireRejected(t, run(e, "a", ReportMatchResult{TournamentID: 0, MatchID: 9, Result: win("a")}), KindNotFound)
	requireRejected(t, run(e, "a", ReportMatchResult{TournamentID: 0, MatchID: 0, Result: win("c")}), KindValidation)
	requireRejected(t, run(e, "a", ReportMatchResult{TournamentID: 0, MatchID: 0, Result: models.MatchResult{Kind: models.ResultDraw, Player: "a"}}), KindValidation)

	mustRun(t, e, "a", ReportMatchResult{TournamentID: 0, MatchID: 0, Result: win("a")})
	// re-reporting overwrites while the tournament runs
	mustRun(t, e, "b", ReportMatchResult{TournamentID: 0, MatchID: 0, Result: win("b")})
	mustRun(t, e, "c", ReportMatchResult{TournamentID: 0, MatchID: 1, Result: models.MatchResult{Kind: models.ResultDraw}})

	tm, err := e.Tournament(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, tm.Status)
	assert.Equal(t, "b", tm.Bracket[0].Result.Player)

	mustRun(t, e, "c", ReportMatchResult{TournamentID: 0, MatchID: 2, Result: models.MatchResult{Kind: models.ResultForfeit, Player: "b"}})
	tm, err = e.Tournament(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, tm.Status)
	assert.Equal(t, []string{"a", "b", "c"}, tm.Winners)

	requireRejected(t, run(e, "a", ReportMatchResult{TournamentID: 0, MatchID: 0, Result: win("a")}), KindStateConflict)
}

func TestCancelTournamentRefundsFees(t *testing.T) {
	e, _ := newTestEngine(t)
	fund(t, e, "owner", 15)
	fund(t, e, "p2", 15)
	op := roundRobin(4)
	op.EntryFee = amount(15)
	mustRun(t, e, "owner", op)
	mustRun(t, e, "p2", JoinTournament{TournamentID: 0})

	requireRejected(t, run(e, "p2", CancelTournament{TournamentID: 0}), KindAuth)
	mustRun(t, e, "owner", CancelTournament{TournamentID: 0})
	requireRejected(t, run(e, "owner", CancelTournament{TournamentID: 0}), KindStateConflict)

	assert.EqualValues(t, 15, account(t, e, "owner").Balance)
	assert.EqualValues(t, 15, account(t, e, "p2").Balance)

	cancelled, err := e.Tournaments(context.Background(), models.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Zero(t, cancelled[0].PrizePool)
}
