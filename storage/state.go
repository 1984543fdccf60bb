package storage

import (
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/triedb"
)

// StateDB backs the state trie with a go-ethereum key-value database and the
// matching trie database. It is separate from Database: trie nodes have their
// own storage format and lifecycle.
type StateDB struct {
	db     ethdb.Database
	trieDB *triedb.Database
}

// NewMemoryStateDB returns an in-memory state backend for tests and tooling.
func NewMemoryStateDB() *StateDB {
	db := rawdb.NewMemoryDatabase()
	return &StateDB{db: db, trieDB: triedb.NewDatabase(db, triedb.HashDefaults)}
}

// OpenStateDB opens (or creates) a persistent state backend at path.
func OpenStateDB(path string) (*StateDB, error) {
	kv, err := leveldb.New(path, 128, 512, "vebetterdao", false)
	if err != nil {
		return nil, err
	}
	db := rawdb.NewDatabase(kv)
	return &StateDB{db: db, trieDB: triedb.NewDatabase(db, triedb.HashDefaults)}, nil
}

var headRootKey = []byte("vebetterdao/head-root")

// WriteHeadRoot records the latest committed state root so the node can resume
// from it after a restart.
func (s *StateDB) WriteHeadRoot(root []byte) error {
	return s.db.Put(headRootKey, root)
}

// HeadRoot returns the recorded state root, or nil when the database is fresh.
func (s *StateDB) HeadRoot() ([]byte, error) {
	has, err := s.db.Has(headRootKey)
	if err != nil || !has {
		return nil, err
	}
	return s.db.Get(headRootKey)
}

// TrieDB exposes the trie database for trie construction and commits.
func (s *StateDB) TrieDB() *triedb.Database {
	return s.trieDB
}

// Close flushes and closes the underlying database.
func (s *StateDB) Close() {
	if s.trieDB != nil {
		s.trieDB.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}
