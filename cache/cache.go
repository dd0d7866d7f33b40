// Package cache stores the fingerprints of invocations that ran
// successfully, so unchanged invocations can be skipped by later builds.
package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/juju/errgo"
)

// TODO: delete the fingerprints of invocations no longer part of any build.

// ValueSize is the size of a fingerprint.
const ValueSize = 28

func Open(path string) (*Cache, error) {
	c := Cache{
		path: path,
	}
	return c.open()
}

var bkt = []byte("invocations")

type Cache struct {
	db   *bolt.DB
	path string
	err  error
}

// Get returns the value last set for key, or nil.
func (c *Cache) Get(key string) []byte {
	var value []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bkt).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		c.fail(err)
		return nil
	}
	return value
}

// Set sets the key to value, returning false if the last call to Set for this
// key provided an identical value, true otherwise. Note in particular that if
// an underlying error occures true will be returned.
func (c *Cache) Set(key string, value []byte) (changed bool) {
	if len(value) != ValueSize {
		// check done to enable future optimization with fixed sized records.
		panic("value with bad length provided")
	}

	// do as much work as possible outside a transaction
	k := []byte(key)
	changed = true

	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bkt)
		cv := b.Get(k)
		if bytes.Equal(value, cv) {
			changed = false
		}
		return b.Put(k, value)
	})
	if err != nil {
		changed = true
		c.fail(err)
	}
	return
}

// Delete forgets key, so the invocation it names runs again.
func (c *Cache) Delete(key string) {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bkt).Delete([]byte(key))
	})
	if err != nil {
		c.fail(err)
	}
}

// Err returns the first error of an operation on the cache.
func (c *Cache) Err() error {
	return c.err
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Cache) open() (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return nil, errgo.Notef(err, "cannot create cache directory")
	}
	db, err := bolt.Open(c.path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errgo.Notef(err, "cannot open cache %s", c.path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bkt)
		return err
	}); err != nil {
		db.Close()
		return nil, errgo.Notef(err, "cannot initialize cache %s", c.path)
	}
	c.db = db
	return c, nil
}

// Remove deletes the cache at path. A missing cache is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errgo.Mask(err, errgo.Any)
	}
	return nil
}
