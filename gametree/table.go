package gametree

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/schafkopf/card"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const (
	entrySize       = 88
	minSizePowerOf2 = 12
	maxSizePowerOf2 = 26
)

type tableEntry struct {
	key        uint64
	generation uint32
	flag       uint8
	// scalar is the alpha-beta value; payouts hold the vectors of a full
	// minmax search.
	scalar  int32
	payouts PerStrategy[[card.NumPlayers]int32]
}

func (t tableEntry) valid(gen uint32) bool {
	return t.flag != 0 && t.generation == gen
}

// SnapshotTable memoizes positions at stich boundaries. A table belongs to
// one goroutine; every search starts a new generation so entries of earlier
// deals are ignored without clearing memory.
type SnapshotTable struct {
	table        []tableEntry
	sizePowerOf2 int
	sizeMask     uint64
	generation   uint32

	created    atomic.Uint64
	lookups    atomic.Uint64
	hits       atomic.Uint64
	collisions atomic.Uint64
}

// NewSnapshotTable sizes a table to roughly fractionOfMemory of the system
// memory, shared by the given number of tables.
func NewSnapshotTable(fractionOfMemory float64, tables int) *SnapshotTable {
	t := &SnapshotTable{}
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * float64(totalMem) / float64(entrySize) / float64(max(tables, 1))
	t.sizePowerOf2 = minSizePowerOf2
	if desiredNElems > 1 {
		t.sizePowerOf2 = min(max(int(math.Log2(desiredNElems)), minSizePowerOf2), maxSizePowerOf2)
	}
	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	t.table = make([]tableEntry, numElems)
	t.generation = 1
	log.Debug().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("snapshot-table-size")
	return t
}

// NextGeneration invalidates all entries.
func (t *SnapshotTable) NextGeneration() {
	t.generation++
	if t.generation == 0 {
		clear(t.table)
		t.generation = 1
	}
}

func (t *SnapshotTable) index(key uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return xxhash.Sum64(buf[:]) & t.sizeMask
}

func (t *SnapshotTable) lookup(key uint64) (tableEntry, bool) {
	t.lookups.Add(1)
	e := t.table[t.index(key)]
	if !e.valid(t.generation) {
		return tableEntry{}, false
	}
	if e.key != key {
		t.collisions.Add(1)
		return tableEntry{}, false
	}
	t.hits.Add(1)
	return e, true
}

func (t *SnapshotTable) store(key uint64, e tableEntry) {
	e.key = key
	e.generation = t.generation
	// just overwrite whatever is there.
	t.table[t.index(key)] = e
	t.created.Add(1)
}

type TableStats struct {
	Created, Lookups, Hits, Collisions uint64
}

func (t *SnapshotTable) Stats() TableStats {
	return TableStats{
		Created:    t.created.Load(),
		Lookups:    t.lookups.Load(),
		Hits:       t.hits.Load(),
		Collisions: t.collisions.Load(),
	}
}
