package rules

import (
	"fmt"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/statecache"
	"github.com/domino14/schafkopf/stich"
)

const (
	snapshotPlayerShift  = card.NumCards
	snapshotPayloadShift = snapshotPlayerShift + 2
	snapshotPayloadBits  = 64 - snapshotPayloadShift
)

type snapshotPayload uint8

const (
	payloadPrimary snapshotPayload = iota
	payloadRamsch
	payloadBettel
)

// SnapshotCache packs a position at a stich boundary into a 64-bit key: the
// played cards, the player to lead and a contract-specific payload. Two
// positions with equal keys reached from the same deal have equal payouts
// under every strategy.
type SnapshotCache struct {
	payload        snapshotPayload
	parties        PlayerParties
	rufspiel       *Rules
	cardsPerPlayer int
}

func (r *Rules) SnapshotCache(fixed *statecache.Fixed) SnapshotCache {
	sc := SnapshotCache{cardsPerPlayer: r.kurzlang.CardsPerPlayer()}
	switch r.kind {
	case KindRamsch:
		sc.payload = payloadRamsch
	case KindBettel:
		sc.payload = payloadBettel
	default:
		sc.payload = payloadPrimary
		sc.parties, _ = r.PlayerParties(fixed)
		if r.kind == KindRufspiel {
			sc.rufspiel = r
		}
	}
	return sc
}

// ContinueWithCache reports whether positions this deep are worth caching.
func (sc SnapshotCache) ContinueWithCache(seq *stich.Sequence) bool {
	return seq.CompletedCount() <= sc.cardsPerPlayer-3
}

// Key may only be called between stichs.
func (sc SnapshotCache) Key(seq *stich.Sequence, cache *statecache.Cache) uint64 {
	if !seq.CurrentStich().IsEmpty() {
		panic(fmt.Sprintf("snapshot key within stich %v", seq))
	}
	key := uint64(seq.Played())
	key |= uint64(seq.CurrentPlayer()) << snapshotPlayerShift
	var payload uint64
	switch sc.payload {
	case payloadPrimary:
		points, stichs := sc.parties.PrimaryPointsStichs(cache)
		payload = uint64(points) | uint64(stichs)<<7
		// Once the called suit was led, the partner may no longer keep the
		// Sau back; the played cards alone do not show this.
		if sc.rufspiel != nil && sc.rufspiel.gesucht(seq) {
			payload |= 1 << 11
		}
	case payloadRamsch:
		for epi := range card.NumPlayers - 1 {
			payload |= uint64(cache.Points(card.PlayerIndex(epi))) << (7 * epi)
		}
		for epi := range card.NumPlayers {
			if cache.Stichs(card.PlayerIndex(epi)) > 0 {
				payload |= 1 << (21 + epi)
			}
		}
	case payloadBettel:
		for epi := range card.NumPlayers - 1 {
			payload |= uint64(cache.Stichs(card.PlayerIndex(epi))) << (4 * epi)
		}
	}
	if payload>>snapshotPayloadBits != 0 {
		panic(fmt.Sprintf("snapshot payload %x overflows", payload))
	}
	return key | payload<<snapshotPayloadShift
}
