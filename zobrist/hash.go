// Package zobrist hashes card distributions so that identical deals can be
// recognized cheaply.
// https://en.wikipedia.org/wiki/Zobrist_hashing
package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/schafkopf/card"
)

const bignum = 1<<63 - 2

// Zobrist keeps one random key per card and holder. A card that was already
// played is held by nobody and has its own key.
type Zobrist struct {
	holderTable [card.NumCards][card.NumPlayers + 1]uint64
}

const played = card.NumPlayers

func (z *Zobrist) Initialize() {
	for c := range z.holderTable {
		for h := range z.holderTable[c] {
			z.holderTable[c][h] = frand.Uint64n(bignum) + 1
		}
	}
}

// Hash covers the held cards of ahand and the played cards.
func (z *Zobrist) Hash(ahand card.AHand, playedCards card.Set) uint64 {
	key := uint64(0)
	for epi, h := range ahand {
		for c := range h.Set().All() {
			key ^= z.holderTable[c][epi]
		}
	}
	for c := range playedCards.All() {
		key ^= z.holderTable[c][played]
	}
	return key
}

// PlayCard updates key for epi playing c. Playing the same card again
// restores the old key.
func (z *Zobrist) PlayCard(key uint64, epi card.PlayerIndex, c card.Card) uint64 {
	return key ^ z.holderTable[c][epi] ^ z.holderTable[c][played]
}

// MoveCard updates key for c changing hands.
func (z *Zobrist) MoveCard(key uint64, from, to card.PlayerIndex, c card.Card) uint64 {
	return key ^ z.holderTable[c][from] ^ z.holderTable[c][to]
}
