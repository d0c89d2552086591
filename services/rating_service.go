// services/rating_service.go
package services

import (
	"math"

	"game-ledger/models"
	"game-ledger/store"
)

// EloK is the rating step per game.
const EloK = 32.0

// Outcome of a finished game from slot 0's point of view.
type Outcome int

const (
	OutcomeTie Outcome = iota
	OutcomeSlot0Wins
	OutcomeSlot1Wins
)

type RatingService struct{}

func NewRatingService() *RatingService { return &RatingService{} }

// ExpectedScore is the logistic win expectation of a player rated r against
// an opponent rated opp.
func ExpectedScore(r, opp uint32) float64 {
	return 1 / (1 + math.Pow(10, (float64(opp)-float64(r))/400))
}

// EloUpdate returns both new ratings. score is slot 0's actual score: 1 for a
// win, 0.5 for a tie, 0 for a loss. Ratings are rounded and never negative.
func EloUpdate(r0, r1 uint32, score float64) (uint32, uint32) {
	e0 := ExpectedScore(r0, r1)
	e1 := ExpectedScore(r1, r0)
	return adjust(r0, EloK*(score-e0)), adjust(r1, EloK*((1-score)-e1))
}

func adjust(r uint32, delta float64) uint32 {
	next := math.Round(float64(r) + delta)
	if next < 0 {
		return 0
	}
	return uint32(next)
}

// RecordResult updates win/loss/draw counters, streaks and ratings of both
// seated players after a game ends.
func (s *RatingService) RecordResult(tx store.Tx, players [2]string, outcome Outcome) error {
	if players[0] == "" || players[1] == "" || players[0] == players[1] {
		return nil
	}
	a, err := loadAccount(tx, players[0])
	if err != nil {
		return err
	}
	b, err := loadAccount(tx, players[1])
	if err != nil {
		return err
	}

	var score float64
	switch outcome {
	case OutcomeSlot0Wins:
		score = 1
		win(a)
		lose(b)
	case OutcomeSlot1Wins:
		win(b)
		lose(a)
	default:
		score = 0.5
		a.Draws++
		b.Draws++
	}
	a.Elo, b.Elo = EloUpdate(a.Elo, b.Elo, score)

	if err := tx.PutAccount(a); err != nil {
		return internal("save account", err)
	}
	if err := tx.PutAccount(b); err != nil {
		return internal("save account", err)
	}
	return nil
}

func win(a *models.PlayerAccount) {
	a.Wins++
	a.Streak++
}

func lose(a *models.PlayerAccount) {
	a.Losses++
	a.Streak = 0
}
