// Package store connects to the data store and manages settings and
// recorded naps
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dozeapp/doze/internal/models"
	"github.com/dozeapp/doze/internal/timeutil"
)

const (
	settingsBucket = "settings"
	napsBucket     = "naps"

	settingsKey = "settings"
)

var pathToDB string

var errDozeRunning = errors.New(
	"is doze already running? Only one instance can be active at a time",
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

func (c *Client) LoadSettings() (*models.Settings, error) {
	var settings *models.Settings

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(settingsBucket)).Get([]byte(settingsKey))
		if len(b) == 0 {
			// nothing saved yet
			return nil
		}

		settings = &models.Settings{}

		return json.Unmarshal(b, settings)
	})

	return settings, err
}

func (c *Client) SaveSettings(settings *models.Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(settingsKey), value)
	})
}

func (c *Client) SaveNap(nap *models.Nap) error {
	key := timeutil.ToKey(nap.StartTime)

	value, err := json.Marshal(nap)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(napsBucket)).Put(key, value)
	})
}

func (c *Client) Naps(since, until time.Time) ([]*models.Nap, error) {
	var naps []*models.Nap

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(napsBucket)).Cursor()

		min := timeutil.ToKey(since)
		max := timeutil.ToKey(until)

		for k, v := cur.Seek(min); k != nil && bytes.Compare(k, max) <= 0; k, v = cur.Next() {
			nap := &models.Nap{}

			err := json.Unmarshal(v, nap)
			if err != nil {
				return err
			}

			naps = append(naps, nap)
		}

		return nil
	})

	return naps, err
}

func (c *Client) DeleteNaps(naps []*models.Nap) error {
	return c.Update(func(tx *bolt.Tx) error {
		for i := range naps {
			err := tx.Bucket([]byte(napsBucket)).
				Delete(timeutil.ToKey(naps[i].StartTime))
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (c *Client) Open() error {
	db, err := openDB(pathToDB)
	if err != nil {
		return err
	}

	*c = Client{
		db,
	}

	return nil
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errDozeRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	pathToDB = dbPath

	db, err := openDB(pathToDB)
	if err != nil {
		return nil, err
	}
	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(settingsBucket))
		if err != nil {
			return err
		}

		_, err = tx.CreateBucketIfNotExists([]byte(napsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
