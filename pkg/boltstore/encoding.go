package boltstore

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/crystal-mush/gosoul/pkg/soul"
)

// pronounRecord is the stored form of soul.Pronouns. Bound says which
// slots hold a referent, so an id of 0 that gob leaves out still decodes
// as entity 0.
type pronounRecord struct {
	He, She, It int64
	They        []int64
	Bound       uint8
	Saved       time.Time
}

// encodePronouns serializes pronoun state to bytes using gob.
func encodePronouns(p soul.Pronouns, saved time.Time) ([]byte, error) {
	rec := pronounRecord{He: int64(p.He), She: int64(p.She), It: int64(p.It), Bound: uint8(p.Bound), Saved: saved}
	for _, id := range p.They {
		rec.They = append(rec.They, int64(id))
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodePronouns deserializes bytes back into pronoun state. Unbound slots
// come back in their NewPronouns form.
func decodePronouns(data []byte) (soul.Pronouns, time.Time, error) {
	var rec pronounRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return soul.NewPronouns(), time.Time{}, err
	}
	p := soul.NewPronouns()
	bound := soul.SlotSet(rec.Bound)
	for _, slot := range []struct {
		slot soul.PronounSlot
		id   int64
	}{{soul.SlotHe, rec.He}, {soul.SlotShe, rec.She}, {soul.SlotIt, rec.It}} {
		if bound.Has(slot.slot) {
			p = p.With(slot.slot, soul.EntityID(slot.id))
		}
	}
	if bound.Has(soul.SlotThey) {
		ids := make([]soul.EntityID, len(rec.They))
		for i, v := range rec.They {
			ids[i] = soul.EntityID(v)
		}
		p = p.With(soul.SlotThey, ids...)
	}
	return p, rec.Saved, nil
}
