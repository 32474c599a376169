package record

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Store key layout. Position and move keys sort by move number under their
// game prefix.
const (
	gamePrefix = "game/"
	posInfix   = "/pos/"
	moveInfix  = "/move/"
)

// Store is a durable Recorder backed by BadgerDB. Safe for concurrent use;
// Badger serializes the writes internally.
type Store struct {
	db *badger.DB
}

var _ Recorder = (*Store)(nil)

// Open opens or creates a store in the given directory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginGame opens a new game record and returns its id.
func (s *Store) BeginGame(ctx context.Context, sessionID, mode string) (string, error) {
	game := &Game{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Mode:      mode,
		Started:   time.Now(),
	}

	if err := s.writeJSON(gameKey(game.ID), game); err != nil {
		return "", err
	}
	return game.ID, nil
}

// RecordPosition stores a serialized position at the given move number.
func (s *Store) RecordPosition(ctx context.Context, gameID string, moveNumber int, position []byte, mover string) error {
	return s.writeJSON(posKey(gameID, moveNumber), &Position{
		MoveNumber: moveNumber,
		Position:   position,
		Mover:      mover,
		At:         time.Now(),
	})
}

// RecordMove stores a serialized move and its evaluation score.
func (s *Store) RecordMove(ctx context.Context, gameID string, moveNumber int, move []byte, evaluation int) error {
	return s.writeJSON(moveKey(gameID, moveNumber), &MoveRecord{
		MoveNumber: moveNumber,
		Move:       move,
		Evaluation: evaluation,
	})
}

// FinishGame closes a game record with its result and final position.
func (s *Store) FinishGame(ctx context.Context, gameID, result string, finalPosition []byte, totalMoves int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		game, err := readGame(txn, gameID)
		if err != nil {
			return err
		}
		game.Ended = time.Now()
		game.Result = result
		game.FinalPosition = finalPosition
		game.TotalMoves = totalMoves

		data, err := json.Marshal(game)
		if err != nil {
			return err
		}
		return txn.Set(gameKey(gameID), data)
	})
}

// LookupGame returns the complete game record, including all positions and
// moves in move order.
func (s *Store) LookupGame(ctx context.Context, gameID string) (*Game, error) {
	var game *Game
	err := s.db.View(func(txn *badger.Txn) error {
		g, err := readGame(txn, gameID)
		if err != nil {
			return err
		}

		if err := iteratePrefix(txn, posKeyPrefix(gameID), func(val []byte) error {
			var p Position
			if err := json.Unmarshal(val, &p); err != nil {
				return err
			}
			g.Positions = append(g.Positions, p)
			return nil
		}); err != nil {
			return err
		}
		if err := iteratePrefix(txn, moveKeyPrefix(gameID), func(val []byte) error {
			var m MoveRecord
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			g.Moves = append(g.Moves, m)
			return nil
		}); err != nil {
			return err
		}

		game = g
		return nil
	})
	return game, err
}

// RecentGames returns up to limit finished games, most recent first.
func (s *Store) RecentGames(ctx context.Context, limit int) ([]*Game, error) {
	var games []*Game
	err := s.db.View(func(txn *badger.Txn) error {
		return iterateGames(txn, func(g *Game) error {
			if g.Finished() {
				games = append(games, g)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].Started.After(games[j].Started)
	})
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

// Stats returns aggregate store statistics.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Results: map[string]int{}}
	err := s.db.View(func(txn *badger.Txn) error {
		if err := iterateGames(txn, func(g *Game) error {
			stats.TotalGames++
			if g.Finished() {
				stats.CompletedGames++
			}
			if g.Result != "" {
				stats.Results[g.Result]++
			}
			return nil
		}); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if strings.Contains(string(it.Item().Key()), posInfix) {
				stats.TotalPositions++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) writeJSON(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func readGame(txn *badger.Txn, gameID string) (*Game, error) {
	item, err := txn.Get(gameKey(gameID))
	if err != nil {
		return nil, fmt.Errorf("unknown game %v: %w", gameID, err)
	}

	game := &Game{}
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, game)
	}); err != nil {
		return nil, err
	}
	return game, nil
}

// iterateGames visits every game metadata record. Position and move keys
// share the game prefix and are skipped by shape.
func iterateGames(txn *badger.Txn, fn func(*Game) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(gamePrefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		key := string(it.Item().Key())
		if strings.Contains(key, posInfix) || strings.Contains(key, moveInfix) {
			continue
		}
		if err := it.Item().Value(func(val []byte) error {
			g := &Game{}
			if err := json.Unmarshal(val, g); err != nil {
				return err
			}
			return fn(g)
		}); err != nil {
			return err
		}
	}
	return nil
}

func iteratePrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func gameKey(gameID string) []byte {
	return []byte(gamePrefix + gameID)
}

func posKey(gameID string, moveNumber int) []byte {
	return []byte(fmt.Sprintf("%v%v%v%06d", gamePrefix, gameID, posInfix, moveNumber))
}

func posKeyPrefix(gameID string) []byte {
	return []byte(gamePrefix + gameID + posInfix)
}

func moveKey(gameID string, moveNumber int) []byte {
	return []byte(fmt.Sprintf("%v%v%v%06d", gamePrefix, gameID, moveInfix, moveNumber))
}

func moveKeyPrefix(gameID string) []byte {
	return []byte(gamePrefix + gameID + moveInfix)
}
