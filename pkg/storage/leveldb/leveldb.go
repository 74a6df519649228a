package leveldb

import (
	"context"
	"errors"

	goleveldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/c14220110/mediflow-backend/pkg/storage"
)

// Store menyimpan setiap koleksi sebagai satu value JSON di LevelDB lokal.
type Store struct {
	db *goleveldb.DB
}

// Open membuka (atau membuat) database LevelDB pada path yang diberikan.
func Open(path string) (*Store, error) {
	db, err := goleveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	v, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, goleveldb.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Save menulis payload dengan sync agar perubahan bertahan setelah crash.
func (s *Store) Save(_ context.Context, key string, payload []byte) error {
	return s.db.Put([]byte(key), payload, &opt.WriteOptions{Sync: true})
}

func (s *Store) Close() error {
	return s.db.Close()
}
