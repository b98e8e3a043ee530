// Package station runs a terminal scanning station on top of a scan session
package station

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketName = "station"
	stateKey   = "state"
)

// State is the selection restored when a station starts
type State struct {
	Station      string    `json:"station"`
	ShipmentID   string    `json:"shipment_id,omitempty"`
	BoxID        string    `json:"box_id,omitempty"`
	RequiresCode bool      `json:"requires_marking_code"`
	SavedAt      time.Time `json:"saved_at"`
}

// Store keeps the station state in a local bolt file
type Store struct {
	db *bbolt.DB
}

// OpenStore opens or creates the bolt file at path
func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening station state: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating station bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the saved state, ok is false when nothing was saved yet
func (s *Store) Load() (st State, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(stateKey))
		if data == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(data, &st)
	})
	if err != nil {
		return State{}, false, fmt.Errorf("loading station state: %w", err)
	}
	return st, ok, nil
}

// Save replaces the saved state and stamps SavedAt
func (s *Store) Save(st State) error {
	st.SavedAt = time.Now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling station state: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(stateKey), data)
	})
}

// Close releases the bolt file lock
func (s *Store) Close() error { return s.db.Close() }
