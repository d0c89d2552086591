package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNicknameAndChat(t *testing.T) {
	e, _ := newTestEngine(t)
	room := openRoom(t, e, "alice", CreateMatch{})

	mustRun(t, e, "bob", PostMessage{RoomID: room, Text: "gl hf"})
	mustRun(t, e, "alice", SetNickname{Name: "  Ally "})
	mustRun(t, e, "alice", PostMessage{RoomID: room, Text: "you too"})

	requireRejected(t, run(e, "alice", SetNickname{Name: ""}), KindValidation)
	requireRejected(t, run(e, "alice", SetNickname{Name: strings.Repeat("n", 31)}), KindValidation)
	requireRejected(t, run(e, "alice", PostMessage{RoomID: room, Text: strings.Repeat("m", 501)}), KindValidation)
	requireRejected(t, run(e, "alice", PostMessage{RoomID: 5, Text: "hi"}), KindNotFound)

	chat, err := e.Chat(context.Background(), room)
	require.NoError(t, err)
	require.Len(t, chat, 2)
	assert.Equal(t, "Anonymous", chat[0].Sender)
	assert.Equal(t, "Ally", chat[1].Sender)
	assert.EqualValues(t, 1, chat[1].Seq)
	assert.False(t, chat[1].IsSystem)
}

func TestGuildLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)

	resp := mustRun(t, e, "owner", CreateGuild{Name: "Night Owls", Tag: "nöwl"})
	assert.Equal(t, "0", resp.Data)

	requireRejected(t, run(e, "owner", CreateGuild{Name: "Second", Tag: "SEC"}), KindStateConflict)
	requireRejected(t, run(e, "rival", CreateGuild{Name: "Copycats", Tag: "NOWL"}), KindStateConflict)
	requireRejected(t, run(e, "rival", CreateGuild{Name: "Shorty", Tag: "N"}), KindValidation)
	requireRejected(t, run(e, "rival", CreateGuild{Name: "Longy", Tag: "TOOLONG"}), KindValidation)

	requireRejected(t, run(e, "joiner", JoinGuild{GuildID: 0}), KindAuth)
	requireRejected(t, run(e, "outsider", InviteToGuild{GuildID: 0, Player: "joiner"}), KindAuth)
	requireRejected(t, run(e, "owner", InviteToGuild{GuildID: 3, Player: "joiner"}), KindNotFound)

	mustRun(t, e, "owner", InviteToGuild{GuildID: 0, Player: "joiner"})
	requireRejected(t, run(e, "owner", InviteToGuild{GuildID: 0, Player: "joiner"}), KindStateConflict)
	mustRun(t, e, "joiner", JoinGuild{GuildID: 0})
	requireRejected(t, run(e, "joiner", JoinGuild{GuildID: 0}), KindStateConflict)
	requireRejected(t, run(e, "joiner", InviteToGuild{GuildID: 0, Player: "owner"}), KindStateConflict)

	g, err := e.Guild(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "NOWL", g.Tag)
	assert.Equal(t, []string{"owner", "joiner"}, g.Members)
	assert.Empty(t, g.Invited)

	acct := account(t, e, "joiner")
	require.NotNil(t, acct.GuildID)
	assert.EqualValues(t, 0, *acct.GuildID)
}

func TestSaveReplay(t *testing.T) {
	e, _ := newTestEngine(t)
	room := openRoom(t, e, "a", CreateMatch{})
	mustRun(t, e, "b", JoinGame{RoomID: room})
	mustRun(t, e, "a", MakeMove{RoomID: room, Position: 4})

	requireRejected(t, run(e, "a", SaveReplay{RoomID: room}), KindStateConflict)
	mustRun(t, e, "b", Surrender{RoomID: room})
	requireRejected(t, run(e, "c", SaveReplay{RoomID: room}), KindAuth)

	resp := mustRun(t, e, "a", SaveReplay{RoomID: room})
	assert.Equal(t, "0", resp.Data)
	resp = mustRun(t, e, "a", SaveReplay{RoomID: room})
	assert.Equal(t, "1", resp.Data)

	replays, err := e.Replays(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, replays, 2)
	assert.Equal(t, []uint32{4}, replays[0].Moves)
	assert.Equal(t, "X", replays[0].Result)
	assert.Equal(t, [2]string{"a", "b"}, replays[0].Players)
}
