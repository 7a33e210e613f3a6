package wifidb

import (
	"bytes"
	"encoding/json"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

func (db *DB) setJSON(bucket []byte, key []byte, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Errorf("could not marshal data: %v", err)
	}

	return db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}

		return bucket.Put(key, payload)
	})
}

// getJSON decodes the value at key into v and reports whether it was found.
func (db *DB) getJSON(bucket []byte, key []byte, v interface{}) (bool, error) {
	found := false

	err := db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucket)
		if bucket == nil {
			return nil
		}

		payload := bucket.Get(key)
		if payload == nil || bytes.Equal(payload, []byte("null")) {
			return nil
		}

		err := json.Unmarshal(payload, v)
		if err != nil {
			return errors.Errorf("could not unmarshal data: %v", err)
		}

		found = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

func (db *DB) keys(bucket []byte) ([]string, error) {
	var keys []string

	err := db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucket)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}
