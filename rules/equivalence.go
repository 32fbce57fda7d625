package rules

import (
	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/partition"
	"github.com/domino14/schafkopf/statecache"
)

// categoryChains returns the decider's categories restricted to the deck,
// every chain in descending order.
func (r *Rules) categoryChains() [][]card.Card {
	var ret [][]card.Card
	for _, chain := range r.decider.Categories() {
		var kept []card.Card
		for _, c := range chain {
			if r.kurzlang.Contains(c) {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			ret = append(ret, kept)
		}
	}
	return ret
}

// splitByPoints cuts every chain wherever neighbouring cards differ in
// points.
func splitByPoints(chains [][]card.Card) [][]card.Card {
	var ret [][]card.Card
	for _, chain := range chains {
		start := 0
		for i := 1; i <= len(chain); i++ {
			if i == len(chain) || chain[i].Points() != chain[i-1].Points() {
				ret = append(ret, chain[start:i])
				start = i
			}
		}
	}
	return ret
}

// payoutIgnoresPoints is true for contracts decided by stichs or by the deal
// alone.
func (r *Rules) payoutIgnoresPoints() bool {
	switch r.kind {
	case KindBettel:
		return true
	case KindSolo:
		return r.solo.Mode != PointBased
	}
	return false
}

// EquivalentWhenOnSameHand returns chains of cards that can be swapped
// without changing the outcome as long as one player holds all of them.
// Neighbours are merged only if their points agree, unless points do not
// matter for the payout.
func (r *Rules) EquivalentWhenOnSameHand() *partition.Partition {
	chains := r.categoryChains()
	if !r.payoutIgnoresPoints() {
		chains = splitByPoints(chains)
	}
	return partition.New(chains)
}

// OnlyMinMaxPointsWhenOnSameHand returns whole category chains together with
// the parties for contracts where a player only ever wants to give away the
// most or the fewest points within a chain. Ramsch has no parties and
// reports false.
func (r *Rules) OnlyMinMaxPointsWhenOnSameHand(fixed *statecache.Fixed) (*partition.Partition, PlayerParties, bool) {
	parties, ok := r.PlayerParties(fixed)
	if !ok {
		return nil, PlayerParties{}, false
	}
	return partition.New(r.categoryChains()), parties, true
}
