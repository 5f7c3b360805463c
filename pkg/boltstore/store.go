// Package boltstore persists per-actor soul session state in bbolt.
package boltstore

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/crystal-mush/gosoul/pkg/soul"
	bbolt "go.etcd.io/bbolt"
)

// Store wraps a bbolt database holding pronoun state and the actor name
// index.
type Store struct {
	bolt *bbolt.DB
	now  func() time.Time
}

// Open opens or creates a bbolt database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketPronouns, bucketActors} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(keyVersion); v != nil && keyToInt(v) > schemaVersion {
			return fmt.Errorf("schema version %d is newer than %d", keyToInt(v), schemaVersion)
		}
		return meta.Put(keyVersion, intToKey(schemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}

	return &Store{bolt: db, now: time.Now}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

// LoadPronouns returns the stored pronoun state of an actor. An actor with
// nothing stored gets an unbound state and ok == false.
func (s *Store) LoadPronouns(actor soul.EntityID) (p soul.Pronouns, ok bool, err error) {
	p = soul.NewPronouns()
	err = s.bolt.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPronouns).Get(idToKey(actor))
		if data == nil {
			return nil
		}
		var derr error
		p, _, derr = decodePronouns(data)
		if derr != nil {
			return fmt.Errorf("boltstore: decode pronouns of #%d: %w", actor, derr)
		}
		ok = true
		return nil
	})
	return p, ok, err
}

// SavePronouns persists the pronoun state of an actor (write-through).
func (s *Store) SavePronouns(actor soul.EntityID, p soul.Pronouns) error {
	data, err := encodePronouns(p, s.now())
	if err != nil {
		return fmt.Errorf("boltstore: encode pronouns of #%d: %w", actor, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketPronouns).Put(idToKey(actor), data); err != nil {
			return err
		}
		meta := tx.Bucket(bucketMeta)
		saves := 0
		if v := meta.Get(keySaves); v != nil {
			saves = keyToInt(v)
		}
		return meta.Put(keySaves, intToKey(saves+1))
	})
}

// ForgetPronouns removes the stored state of an actor.
func (s *Store) ForgetPronouns(actor soul.EntityID) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPronouns).Delete(idToKey(actor))
	})
}

// PruneBefore removes pronoun state saved before cutoff and returns how
// many records were dropped.
func (s *Store) PruneBefore(cutoff time.Time) (int, error) {
	n := 0
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPronouns)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			_, saved, err := decodePronouns(v)
			if err != nil || saved.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		n = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("boltstore: prune: %w", err)
	}
	if n > 0 {
		log.Printf("boltstore: pruned %d stale pronoun records", n)
	}
	return n, nil
}

// LoadAll reads every stored pronoun state.
func (s *Store) LoadAll() (map[soul.EntityID]soul.Pronouns, error) {
	out := make(map[soul.EntityID]soul.Pronouns)
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPronouns).ForEach(func(k, v []byte) error {
			p, _, err := decodePronouns(v)
			if err != nil {
				return fmt.Errorf("decode #%d: %w", keyToID(k), err)
			}
			out[keyToID(k)] = p
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: load pronouns: %w", err)
	}
	log.Printf("boltstore: loaded pronoun state of %d actors", len(out))
	return out, nil
}

// PutActor records the id of an actor name, replacing oldName if set.
func (s *Store) PutActor(name string, id soul.EntityID, oldName string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketActors)
		if oldName != "" {
			if err := b.Delete([]byte(strings.ToLower(oldName))); err != nil {
				return err
			}
		}
		return b.Put([]byte(strings.ToLower(name)), idToKey(id))
	})
}

// LookupActor returns the id recorded for name.
func (s *Store) LookupActor(name string) (soul.EntityID, bool) {
	id, ok := soul.NoEntity, false
	s.bolt.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketActors).Get([]byte(strings.ToLower(name))); v != nil {
			id, ok = keyToID(v), true
		}
		return nil
	})
	return id, ok
}

// Saves returns the number of pronoun saves since the file was created.
func (s *Store) Saves() int {
	n := 0
	s.bolt.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(keySaves); v != nil {
			n = keyToInt(v)
		}
		return nil
	})
	return n
}

// HasData returns true if any pronoun state is stored.
func (s *Store) HasData() bool {
	hasData := false
	s.bolt.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketPronouns).Stats().KeyN > 0 {
			hasData = true
		}
		return nil
	})
	return hasData
}

// Backup creates a hot snapshot of the bbolt database using tx.WriteTo().
func (s *Store) Backup(path string) error {
	return s.bolt.View(func(tx *bbolt.Tx) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("boltstore: create backup %s: %w", path, err)
		}
		defer f.Close()
		_, err = tx.WriteTo(f)
		if err != nil {
			return fmt.Errorf("boltstore: write backup: %w", err)
		}
		log.Printf("boltstore: backup written to %s", path)
		return nil
	})
}
