package record_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kclaudeeager/chess-game-with-mcts/pkg/board"
	"github.com/kclaudeeager/chess-game-with-mcts/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *record.Store {
	t.Helper()

	s, err := record.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	id, err := s.BeginGame(ctx, "session-1", "human_vs_ai")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	b := board.NewBoard()
	position, err := json.Marshal(b.Dict())
	require.NoError(t, err)
	move, err := json.Marshal(board.EncodeMove(board.Move{
		From: board.NewSquare(6, 4), To: board.NewSquare(4, 4), Type: board.DoublePush,
	}))
	require.NoError(t, err)

	require.NoError(t, s.RecordPosition(ctx, id, 0, position, "white"))
	require.NoError(t, s.RecordMove(ctx, id, 0, move, 25))
	require.NoError(t, s.RecordPosition(ctx, id, 1, position, "black"))
	require.NoError(t, s.FinishGame(ctx, id, board.WhiteWins.String(), position, 2))

	game, err := s.LookupGame(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "session-1", game.SessionID)
	assert.Equal(t, "human_vs_ai", game.Mode)
	assert.Equal(t, "white_wins", game.Result)
	assert.Equal(t, 2, game.TotalMoves)
	assert.True(t, game.Finished())

	require.Len(t, game.Positions, 2)
	assert.Equal(t, 0, game.Positions[0].MoveNumber)
	assert.Equal(t, "white", game.Positions[0].Mover)
	assert.Equal(t, 1, game.Positions[1].MoveNumber)

	require.Len(t, game.Moves, 1)
	assert.Equal(t, 25, game.Moves[0].Evaluation)
	assert.Equal(t, json.RawMessage(move), game.Moves[0].Move)
}

func TestStoreUnknownGame(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.LookupGame(ctx, "missing")
	assert.Error(t, err)

	assert.Error(t, s.FinishGame(ctx, "missing", "draw", nil, 0))
}

func TestStoreRecentGames(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	finished, err := s.BeginGame(ctx, "s1", "self_play")
	require.NoError(t, err)
	require.NoError(t, s.FinishGame(ctx, finished, board.Draw.String(), nil, 10))

	_, err = s.BeginGame(ctx, "s2", "self_play")
	require.NoError(t, err)

	games, err := s.RecentGames(ctx, 10)
	require.NoError(t, err)
	require.Len(t, games, 1, "unfinished games are excluded")
	assert.Equal(t, finished, games[0].ID)
}

func TestStoreStats(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	for i := 0; i < 3; i++ {
		id, err := s.BeginGame(ctx, "s", "self_play")
		require.NoError(t, err)
		require.NoError(t, s.RecordPosition(ctx, id, 0, []byte(`{}`), "white"))
		if i < 2 {
			require.NoError(t, s.FinishGame(ctx, id, board.Draw.String(), nil, 1))
		}
	}

	stats, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalGames)
	assert.Equal(t, 2, stats.CompletedGames)
	assert.Equal(t, 3, stats.TotalPositions)
	assert.Equal(t, map[string]int{"draw": 2}, stats.Results)
}
