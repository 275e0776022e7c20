package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"postedit/internal/api"
)

const postKeyPrefix = "post:"

var ErrNoPost = errors.New("post not found")

// Store keeps posts in badger, on disk or in memory.
type Store struct {
	db *badger.DB
}

// OpenStore opens dir, or an in-memory database when dir is empty.
func OpenStore(dir string, log zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log: log.With().Str("component", "badger").Logger()})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open post store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func postKey(id string) []byte { return []byte(postKeyPrefix + id) }

func (s *Store) Get(id string) (api.Post, error) {
	var p api.Post
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(postKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoPost
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, &p) })
	})
	return p, err
}

func (s *Store) Put(p api.Post) error {
	if p.ID == "" {
		return errors.New("post id is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post %s: %w", p.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(postKey(p.ID), data)
	})
}

// List returns every post ordered by id.
func (s *Store) List() ([]api.Post, error) {
	var out []api.Post
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(postKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var p api.Post
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &p) }); err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// Seed writes a few sample posts when the store is empty.
func (s *Store) Seed() error {
	existing, err := s.List()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range samplePosts {
		if err := s.Put(p); err != nil {
			return err
		}
	}
	return nil
}

var samplePosts = []api.Post{
	{
		ID:       "1",
		Title:    "Getting started with terminal UIs",
		Content:  "Terminal interfaces are fast to build and pleasant to use.\n\nThis post walks through a first bubbletea program.",
		Tags:     []string{"go", "tui"},
		ImageURL: "https://images.example.com/tui.png",
	},
	{
		ID:      "2",
		Title:   "Notes on REST error bodies",
		Content: "Return a short `msg` field with every error so clients can show it directly.",
		Tags:    []string{"api", "design"},
	},
	{
		ID:      "3",
		Title:   "Draft",
		Content: "Too short.",
	},
}

// badgerLogger routes badger's logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.log.Error().Msgf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warn().Msgf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.log.Debug().Msgf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.log.Trace().Msgf(f, v...) }
