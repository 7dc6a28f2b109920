package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	gethleveldb "github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Database is a generic interface for a key-value store.
// This allows the ledger to use any database backend (in-memory or persistent).
// Every backend also exposes the trie node database layered on top of it so
// the state trie and the raw key space share one store.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	TrieDB() *triedb.Database
	Close() // A way to gracefully shut down the database connection.
}

// kvBackend carries the pieces shared by both implementations.
type kvBackend struct {
	kv     ethdb.KeyValueStore
	trieMu sync.Mutex
	trieDB *triedb.Database
}

func (b *kvBackend) put(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("storage: empty key")
	}
	return b.kv.Put(key, value)
}

func (b *kvBackend) get(key []byte) ([]byte, error) {
	ok, err := b.kv.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	value, err := b.kv.Get(key)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (b *kvBackend) trie() *triedb.Database {
	b.trieMu.Lock()
	defer b.trieMu.Unlock()
	if b.trieDB == nil {
		b.trieDB = triedb.NewDatabase(rawdb.NewDatabase(b.kv), triedb.HashDefaults)
	}
	return b.trieDB
}

// --- In-Memory DB (for testing) ---

type MemDB struct {
	backend kvBackend
}

func NewMemDB() *MemDB {
	return &MemDB{backend: kvBackend{kv: memorydb.New()}}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	return db.backend.put(key, value)
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	return db.backend.get(key)
}

// TrieDB returns the trie node database backed by this store.
func (db *MemDB) TrieDB() *triedb.Database {
	return db.backend.trie()
}

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() {
	// Nothing to close for an in-memory database.
}

// --- Persistent DB ---

// LevelDBOptions tunes the goleveldb instance underneath the store.
type LevelDBOptions struct {
	CacheMB int
	Handles int
}

// LevelDB is a persistent key-value store using LevelDB.
type LevelDB struct {
	db      *gethleveldb.Database
	backend kvBackend
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	return NewLevelDBWithOptions(path, LevelDBOptions{})
}

// NewLevelDBWithOptions opens a LevelDB database with explicit cache sizing.
func NewLevelDBWithOptions(path string, opts LevelDBOptions) (*LevelDB, error) {
	cache := opts.CacheMB
	if cache < 16 {
		cache = 16
	}
	handles := opts.Handles
	if handles < 16 {
		handles = 16
	}
	db, err := gethleveldb.NewCustom(path, "watch2give/db/", func(o *opt.Options) {
		o.OpenFilesCacheCapacity = handles
		o.BlockCacheCapacity = cache / 2 * opt.MiB
		o.WriteBuffer = cache / 4 * opt.MiB
	})
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db, backend: kvBackend{kv: db}}, nil
}

// Put inserts or updates a key-value pair.
func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.backend.put(key, value)
}

// Get retrieves a value for a given key.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.backend.get(key)
}

// TrieDB returns the trie node database backed by this store.
func (ldb *LevelDB) TrieDB() *triedb.Database {
	return ldb.backend.trie()
}

// Close closes the database connection.
func (ldb *LevelDB) Close() {
	if tdb := ldb.backend.trieDB; tdb != nil {
		_ = tdb.Close()
	}
	_ = ldb.db.Close()
}
