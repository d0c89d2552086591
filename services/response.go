package services

type ResponseKind string

const (
	RespOk                ResponseKind = "Ok"
	RespOkWithData        ResponseKind = "OkWithData"
	RespGameState         ResponseKind = "GameState"
	RespTournamentCreated ResponseKind = "TournamentCreated"
	RespTournamentJoined  ResponseKind = "TournamentJoined"
	RespError             ResponseKind = "Error"
)

// Response is the single result of an operation. Exactly one payload field is
// set, matching Kind.
type Response struct {
	Kind       ResponseKind     `json:"kind"`
	Data       string           `json:"data,omitempty"`
	GameState  *GameState       `json:"game_state,omitempty"`
	Tournament *TournamentReply `json:"tournament,omitempty"`
	Error      *ErrorReply      `json:"error,omitempty"`
}

type PlayerRecord struct {
	Wins   uint32 `json:"wins"`
	Losses uint32 `json:"losses"`
	Draws  uint32 `json:"draws"`
}

// GameState is the full view of one room's game.
type GameState struct {
	RoomID        uint32          `json:"room_id"`
	Board         [9]string       `json:"board"`
	Players       [2]string       `json:"players"`
	CurrentPlayer string          `json:"current_player,omitempty"`
	Winner        string          `json:"winner,omitempty"`
	TimeRemaining *uint64         `json:"time_remaining,omitempty"`
	PlayerStats   [2]PlayerRecord `json:"player_stats"`
	MovesHistory  []uint32        `json:"moves_history"`
}

type TournamentReply struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name,omitempty"`
	Position uint32 `json:"position,omitempty"`
}

type ErrorReply struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func ok() Response { return Response{Kind: RespOk} }

func okWithData(data string) Response { return Response{Kind: RespOkWithData, Data: data} }

func gameStateResponse(state GameState) Response {
	return Response{Kind: RespGameState, GameState: &state}
}

func errorResponse(err error) Response {
	le := AsLedgerError(err)
	return Response{Kind: RespError, Error: &ErrorReply{Kind: le.Kind, Message: le.Message}}
}

// Err returns the rejection carried by an Error response, nil otherwise.
func (r Response) Err() error {
	if r.Kind != RespError || r.Error == nil {
		return nil
	}
	return &LedgerError{Kind: r.Error.Kind, Message: r.Error.Message}
}
