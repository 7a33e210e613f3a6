package wifidb

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

const (
	dbName           = "wifi.db"
	dbFilePermission = 0600
)

var (
	// configurationBucket maps interface names to their committed
	// configuration.
	configurationBucket = []byte("configuration")

	// authorizationBucket maps interface names to the token that authorized
	// their last commit.
	authorizationBucket = []byte("authorization")
)

// DB is the persistent store of committed interface configurations.
type DB struct {
	*bbolt.DB
	path string
}

// Open opens or creates wifi.db in dir.
func Open(dir string) (*DB, error) {
	path := filepath.Join(dir, dbName)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Errorf("could not create data directory %v: %v", dir, err)
	}

	bdb, err := bbolt.Open(path, dbFilePermission, &bbolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, errors.Errorf("could not open %v: %v", path, err)
	}

	db := &DB{
		DB:   bdb,
		path: path,
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{configurationBucket, authorizationBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, errors.Errorf("could not create buckets: %v", err)
	}

	return db, nil
}

// Path returns the location of the database file.
func (db *DB) Path() string {
	return db.path
}
