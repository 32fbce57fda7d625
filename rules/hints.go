package rules

import (
	"fmt"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/statecache"
	"github.com/domino14/schafkopf/stich"
)

// Interval bounds a payout. Either side may be missing.
type Interval struct {
	lo, hi       int
	hasLo, hasHi bool
}

func Unbounded() Interval {
	return Interval{}
}

func Bounded(lo, hi int) Interval {
	if lo > hi {
		panic(fmt.Sprintf("empty interval [%d, %d]", lo, hi))
	}
	return Interval{lo: lo, hi: hi, hasLo: true, hasHi: true}
}

func (iv Interval) Lo() (int, bool) {
	return iv.lo, iv.hasLo
}

func (iv Interval) Hi() (int, bool) {
	return iv.hi, iv.hasHi
}

// Exact reports whether the interval pins down a single value.
func (iv Interval) Exact() (int, bool) {
	if iv.hasLo && iv.hasHi && iv.lo == iv.hi {
		return iv.lo, true
	}
	return 0, false
}

func (iv Interval) Contains(v int) bool {
	return (!iv.hasLo || iv.lo <= v) && (!iv.hasHi || v <= iv.hi)
}

// Within reports whether iv is a sub-interval of outer.
func (iv Interval) Within(outer Interval) bool {
	if outer.hasLo && (!iv.hasLo || iv.lo < outer.lo) {
		return false
	}
	if outer.hasHi && (!iv.hasHi || iv.hi > outer.hi) {
		return false
	}
	return true
}

func (iv Interval) String() string {
	lo, hi := "-inf", "+inf"
	if iv.hasLo {
		lo = fmt.Sprint(iv.lo)
	}
	if iv.hasHi {
		hi = fmt.Sprint(iv.hi)
	}
	return "[" + lo + ", " + hi + "]"
}

// PayoutHints bounds every player's final payout given the stichs completed
// so far. Any legal completion of the round pays within the returned
// intervals.
func (r *Rules) PayoutHints(seq *stich.Sequence, exp Expensifiers, cache *statecache.Cache) [card.NumPlayers]Interval {
	var ret [card.NumPlayers]Interval
	if r.kind == KindRamsch {
		return ret
	}
	if seq.IsFinished() {
		payout := r.Payout(seq, exp, cache)
		for epi, v := range payout {
			ret[epi] = Bounded(v, v)
		}
		return ret
	}
	parties, _ := r.PlayerParties(&cache.Fixed)
	points, stichs := parties.PrimaryPointsStichs(cache)
	assignedPoints := 0
	for _, p := range cache.Changing.Players {
		assignedPoints += p.Points
	}
	openPoints := r.kurzlang.Set().Points() - assignedPoints
	openStichs := r.kurzlang.CardsPerPlayer() - seq.CompletedCount()

	low := r.payoutForOutcome(cache, parties, exp, points, stichs)
	high := r.payoutForOutcome(cache, parties, exp, points+openPoints, stichs+openStichs)
	for epi := range ret {
		ret[epi] = Bounded(min(low[epi], high[epi]), max(low[epi], high[epi]))
	}
	return ret
}

func (r *Rules) payoutForOutcome(cache *statecache.Cache, parties PlayerParties, exp Expensifiers, points, stichs int) [card.NumPlayers]int {
	n := r.primaryPayout(&cache.Fixed, parties, points, stichs)
	core := parties.InternalPayout(n)
	var ret [card.NumPlayers]int
	for epi := range ret {
		ret[epi] = r.expensifyFor(parties, card.PlayerIndex(epi), core[epi], exp)
	}
	return ret
}

// Expensify turns the payout of epi computed with empty expensifiers into
// the payout under exp. It is strictly increasing in core, so searching
// with empty expensifiers and expensifying the result is the same as
// searching with exp.
func (r *Rules) Expensify(fixed *statecache.Fixed, epi card.PlayerIndex, core int, exp Expensifiers) int {
	parties, _ := r.PlayerParties(fixed)
	return r.expensifyFor(parties, epi, core, exp)
}

func (r *Rules) expensifyFor(parties PlayerParties, epi card.PlayerIndex, core int, exp Expensifiers) int {
	if r.pointsAsPayout {
		return core
	}
	v := core * exp.StossDoublingFactor()
	if r.kind == KindRufspiel && r.rufspiel.Stock == StockHalf && parties.IsPrimary(epi) {
		half := exp.Stock / 2
		if core < 0 {
			half = -half
		}
		v += half
	}
	return v
}
