// Package realtime keeps the live sensor values and the refill cooldown in an
// embedded bbolt file. Keys mirror the realtime paths used by the rig:
// sensors/<id>, sensorForRefill/distance and sensorForRefill/lastNotification.
package realtime

import (
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketSensors = []byte("sensors")
	bucketRefill  = []byte("sensorForRefill")

	keyDistance         = []byte("distance")
	keyLastNotification = []byte("lastNotification")
)

type Store struct {
	db *bolt.DB
}

var _ repository.SensorStore = (*Store)(nil)

// Open opens (or creates) the bbolt file at path and ensures the buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt at %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSensors, bucketRefill} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) SetReading(ctx context.Context, r models.SensorReading) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.SensorID == "" {
		return fmt.Errorf("empty sensor id")
	}
	b, err := json.Marshal(r.Value)
	if err != nil {
		return fmt.Errorf("encode %s reading: %w", r.SensorID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSensors).Put([]byte(r.SensorID), b)
	})
}

// Readings returns every current value, ordered ph, tds, temp, then the rest by id.
func (s *Store) Readings(ctx context.Context) ([]models.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.SensorReading
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSensors).ForEach(func(k, v []byte) error {
			var val float64
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("decode sensors/%s: %w", k, err)
			}
			out = append(out, models.SensorReading{SensorID: models.SensorID(k), Value: val})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	models.SortReadings(out)
	return out, nil
}

func (s *Store) SetDistance(ctx context.Context, distance float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return fmt.Errorf("distance must be finite")
	}
	b, _ := json.Marshal(distance)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRefill).Put(keyDistance, b)
	})
}

// Distance returns the last written distance; ok is false if none was written.
func (s *Store) Distance(ctx context.Context) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	var (
		d  float64
		ok bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRefill).Get(keyDistance)
		if v == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &d)
	})
	if err != nil {
		return 0, false, fmt.Errorf("read distance: %w", err)
	}
	return d, ok, nil
}

// cooldownRecord is the stored form: lastNotification in ms since epoch, null when never sent.
type cooldownRecord struct {
	LastNotification *int64 `json:"lastNotification"`
	Version          uint64 `json:"version"`
}

func decodeCooldown(v []byte) (models.CooldownState, error) {
	if v == nil {
		return models.CooldownState{}, nil
	}
	var rec cooldownRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		return models.CooldownState{}, err
	}
	st := models.CooldownState{Version: rec.Version}
	if rec.LastNotification != nil {
		st.LastNotification = time.UnixMilli(*rec.LastNotification).UTC()
	}
	return st, nil
}

func (s *Store) LoadCooldown(ctx context.Context) (models.CooldownState, error) {
	if err := ctx.Err(); err != nil {
		return models.CooldownState{}, err
	}
	var st models.CooldownState
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		st, err = decodeCooldown(tx.Bucket(bucketRefill).Get(keyLastNotification))
		return err
	})
	if err != nil {
		return models.CooldownState{}, fmt.Errorf("read cooldown: %w", err)
	}
	return st, nil
}

// SwapCooldown runs the version check and the write inside one write
// transaction; bbolt serializes writers, so at most one caller per version wins.
func (s *Store) SwapCooldown(ctx context.Context, expected uint64, at time.Time) (models.CooldownState, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.CooldownState{}, false, err
	}
	var (
		st models.CooldownState
		ok bool
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRefill)
		cur, err := decodeCooldown(b.Get(keyLastNotification))
		if err != nil {
			return err
		}
		if cur.Version != expected {
			st = cur
			return nil
		}
		ms := at.UnixMilli()
		raw, err := json.Marshal(cooldownRecord{LastNotification: &ms, Version: cur.Version + 1})
		if err != nil {
			return err
		}
		if err := b.Put(keyLastNotification, raw); err != nil {
			return err
		}
		st = models.CooldownState{LastNotification: time.UnixMilli(ms).UTC(), Version: cur.Version + 1}
		ok = true
		return nil
	})
	if err != nil {
		return models.CooldownState{}, false, fmt.Errorf("swap cooldown: %w", err)
	}
	return st, ok, nil
}
