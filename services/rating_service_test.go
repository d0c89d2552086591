package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEloEqualRatings(t *testing.T) {
	w, l := EloUpdate(1500, 1500, 1)
	assert.EqualValues(t, 1516, w)
	assert.EqualValues(t, 1484, l)

	a, b := EloUpdate(1500, 1500, 0.5)
	assert.EqualValues(t, 1500, a)
	assert.EqualValues(t, 1500, b)
}

func TestEloIsZeroSumToRounding(t *testing.T) {
	ratings := []uint32{800, 1200, 1500, 1730, 2400}
	for _, r0 := range ratings {
		for _, r1 := range ratings {
			for _, score := range []float64{0, 0.5, 1} {
				n0, n1 := EloUpdate(r0, r1, score)
				before := int64(r0) + int64(r1)
				after := int64(n0) + int64(n1)
				assert.InDelta(t, before, after, 1, "r0=%d r1=%d score=%v", r0, r1, score)
			}
		}
	}
}

func TestEloFloorsAtZero(t *testing.T) {
	_, loser := EloUpdate(10, 10, 1)
	assert.EqualValues(t, 0, loser)

	_, floored := EloUpdate(0, 0, 1)
	assert.EqualValues(t, 0, floored)
}

func TestStreaks(t *testing.T) {
	e, _ := newTestEngine(t)
	room := openRoom(t, e, "a", CreateMatch{})
	mustRun(t, e, "b", JoinGame{RoomID: room})

	// b surrenders twice, then a surrenders once
	mustRun(t, e, "b", Surrender{RoomID: room})
	mustRun(t, e, "a", ResetGame{RoomID: room})
	mustRun(t, e, "b", Surrender{RoomID: room})
	a := account(t, e, "a")
	assert.EqualValues(t, 2, a.Wins)
	assert.EqualValues(t, 2, a.Streak)

	mustRun(t, e, "a", ResetGame{RoomID: room})
	mustRun(t, e, "a", Surrender{RoomID: room})
	a, b := account(t, e, "a"), account(t, e, "b")
	assert.EqualValues(t, 0, a.Streak)
	assert.EqualValues(t, 1, a.Losses)
	assert.EqualValues(t, 1, b.Streak)
	assert.EqualValues(t, 3000, a.Elo+b.Elo)
}
