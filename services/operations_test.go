package services

import (
	"encoding/json"
	"errors"
	"testing"

	"game-ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOperation(t *testing.T) {
	op, err := DecodeOperation("CreateMatch", json.RawMessage(`{"room_name":"r","mode":{"kind":"speed","time_limit_secs":30},"stake":5}`))
	require.NoError(t, err)
	cm, ok := op.(CreateMatch)
	require.True(t, ok)
	assert.Equal(t, models.GameMode{Kind: models.ModeSpeed, TimeLimitSecs: 30}, cm.Mode)
	require.NotNil(t, cm.Stake)
	assert.EqualValues(t, 5, *cm.Stake)

	op, err = DecodeOperation("ReportMatchResult", json.RawMessage(`{"tournament_id":2,"match_id":1,"result":{"kind":"draw"}}`))
	require.NoError(t, err)
	assert.Equal(t, ReportMatchResult{TournamentID: 2, MatchID: 1, Result: models.MatchResult{Kind: models.ResultDraw}}, op)

	op, err = DecodeOperation("ClaimRewards", nil)
	require.NoError(t, err)
	assert.Equal(t, OpClaimRewards, op.Kind())
}

func TestDecodeOperationErrors(t *testing.T) {
	_, err := DecodeOperation("Teleport", nil)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = DecodeOperation("MakeMove", json.RawMessage(`{"position":"centre"}`))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestEveryOperationKindDecodes(t *testing.T) {
	for kind, decode := range operationDecoders {
		op, err := decode(json.RawMessage(`{}`))
		require.NoError(t, err, kind)
		assert.Equal(t, kind, op.Kind())
	}
}

func TestErrorKindsMatchSentinels(t *testing.T) {
	err := conflict("room %d is full", 3)
	assert.ErrorIs(t, err, ErrStateConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "room 3 is full", err.Error())

	resp := errorResponse(err)
	assert.Equal(t, RespError, resp.Kind)
	assert.ErrorIs(t, resp.Err(), ErrStateConflict)

	wrapped := AsLedgerError(errors.New("disk on fire"))
	assert.Equal(t, KindInternal, wrapped.Kind)
	assert.Equal(t, 500, wrapped.Kind.HTTPStatus())
	assert.Equal(t, 402, KindInsufficientFunds.HTTPStatus())
}
