package boltstore

import (
	"encoding/binary"

	"github.com/crystal-mush/gosoul/pkg/soul"
)

// Bucket name constants for bbolt storage.
var (
	bucketMeta     = []byte("meta")
	bucketPronouns = []byte("pronouns")
	bucketActors   = []byte("actors")
)

// Meta key constants.
var (
	keyVersion = []byte("version")
	keySaves   = []byte("saves")
)

// schemaVersion is written to the meta bucket on open.
const schemaVersion = 1

// idToKey converts an EntityID to an 8-byte big-endian key.
// We offset by a large constant so negative ids (NoEntity) sort correctly.
func idToKey(id soul.EntityID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(id)+1<<32))
	return buf
}

// keyToID converts an 8-byte big-endian key back to an EntityID.
func keyToID(b []byte) soul.EntityID {
	v := binary.BigEndian.Uint64(b)
	return soul.EntityID(int64(v) - 1<<32)
}

// intToKey converts an int to an 8-byte big-endian value.
func intToKey(n int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

// keyToInt converts an 8-byte big-endian value back to an int.
func keyToInt(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}
