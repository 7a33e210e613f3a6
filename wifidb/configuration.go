package wifidb

import (
	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wlanctl/wifi"
	"go.etcd.io/bbolt"
)

// SetConfiguration stores the committed configuration of iface together with
// the authorization it was committed with.
func (db *DB) SetConfiguration(iface string, config wifi.Configuration, auth wifi.Authorization) error {
	err := db.setJSON(configurationBucket, []byte(iface), config)
	if err != nil {
		return errors.Errorf("could not store configuration of %v: %v", iface, err)
	}

	err = db.setJSON(authorizationBucket, []byte(iface), []byte(auth))
	if err != nil {
		return errors.Errorf("could not store authorization of %v: %v", iface, err)
	}

	return nil
}

// GetConfiguration returns the configuration committed for iface. An
// interface that never had one committed gets an empty configuration.
func (db *DB) GetConfiguration(iface string) (wifi.Configuration, error) {
	var config wifi.Configuration

	_, err := db.getJSON(configurationBucket, []byte(iface), &config)
	if err != nil {
		return wifi.Configuration{}, errors.Errorf("could not load configuration of %v: %v", iface, err)
	}

	return config, nil
}

// Authorization returns the token iface was last committed with.
func (db *DB) Authorization(iface string) (wifi.Authorization, error) {
	var auth []byte

	_, err := db.getJSON(authorizationBucket, []byte(iface), &auth)
	if err != nil {
		return nil, errors.Errorf("could not load authorization of %v: %v", iface, err)
	}

	return auth, nil
}

// ConfiguredInterfaces lists the interfaces with a committed configuration.
func (db *DB) ConfiguredInterfaces() ([]string, error) {
	return db.keys(configurationBucket)
}

// DeleteConfiguration forgets everything stored for iface.
func (db *DB) DeleteConfiguration(iface string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{configurationBucket, authorizationBucket} {
			bucket := tx.Bucket(name)
			if bucket == nil {
				continue
			}

			if err := bucket.Delete([]byte(iface)); err != nil {
				return err
			}
		}

		return nil
	})
}
