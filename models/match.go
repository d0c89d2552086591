package models

type MatchResultKind string

const (
	ResultWin     MatchResultKind = "win"
	ResultLoss    MatchResultKind = "loss"
	ResultDraw    MatchResultKind = "draw"
	ResultForfeit MatchResultKind = "forfeit"
)

// MatchResult is a reported bracket outcome. Player is empty for a draw.
type MatchResult struct {
	Kind   MatchResultKind `json:"kind"`
	Player string          `json:"player,omitempty"`
}

func (r MatchResult) Valid() bool {
	switch r.Kind {
	case ResultDraw:
		return r.Player == ""
	case ResultWin, ResultLoss, ResultForfeit:
		return r.Player != ""
	}
	return false
}

// BracketMatch is one pairing of a tournament bracket.
// A bye has an empty Player2.
type BracketMatch struct {
	ID          uint64       `json:"match_id"`
	Player1     string       `json:"player1"`
	Player2     string       `json:"player2,omitempty"`
	Result      *MatchResult `json:"result,omitempty"`
	Round       uint32       `json:"round"`
	NextMatchID *uint64      `json:"next_match_id,omitempty"`
}

func (m BracketMatch) Clone() BracketMatch {
	c := m
	if m.Result != nil {
		r := *m.Result
		c.Result = &r
	}
	if m.NextMatchID != nil {
		n := *m.NextMatchID
		c.NextMatchID = &n
	}
	return c
}

func (m BracketMatch) IsBye() bool { return m.Player2 == "" }

func (m BracketMatch) Involves(player string) bool {
	return player != "" && (m.Player1 == player || m.Player2 == player)
}
