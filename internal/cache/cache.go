// Package cache stores per-file parse outputs in a Badger database so
// repeated reconciliations of unchanged log files skip parsing.
package cache

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// DB is a msgpack-over-Badger key/value store. It implements
// reconcile.Cache.
type DB struct {
	bdb *badger.DB
}

// Open opens or creates the cache database in dir. Badger's own log
// messages go to logger; a nil logger silences them.
func Open(dir string, logger *zerolog.Logger) (*DB, error) {
	opts := badger.DefaultOptions(dir).
		WithValueLogFileSize(64 << 20).
		WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open parse cache: %w", err)
	}
	return &DB{bdb: bdb}, nil
}

// Close closes the database. It is a NOP on a nil DB.
func (db *DB) Close() error {
	if db != nil && db.bdb != nil {
		return db.bdb.Close()
	}
	return nil
}

// Load decodes the value stored under key into v.
func (db *DB) Load(key string, v any) (bool, error) {
	found := false
	err := db.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, v)
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return found, nil
}

// Store encodes v under key, replacing any previous value.
func (db *DB) Store(key string, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Flush removes every entry.
func (db *DB) Flush() error {
	return db.bdb.DropAll()
}

// Size returns the LSM and value log sizes in bytes.
func (db *DB) Size() (int64, int64) {
	return db.bdb.Size()
}

type badgerLogger struct {
	log *zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug().Str("component", "badger").Msgf(format, args...)
}
